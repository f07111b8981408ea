package llm

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

// Schema names an embedded JSON schema for a model response.
type Schema string

const (
	// SchemaJDAnalysis validates a JDAnalysis response.
	SchemaJDAnalysis Schema = "jd_analysis"
	// SchemaMatchResponse validates a MatchResponse.
	SchemaMatchResponse Schema = "match_response"
	// SchemaPosition validates an extracted repository position.
	SchemaPosition Schema = "position"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var fencedBlockPattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// ExtractJSON returns the contents of the first fenced code block in text,
// trimmed, or the whole text trimmed when there is no fenced block.
func ExtractJSON(text string) (extracted string) {
	match := fencedBlockPattern.FindStringSubmatch(text)
	if match != nil {
		extracted = strings.TrimSpace(match[1])
		return extracted
	}
	extracted = strings.TrimSpace(text)
	return extracted
}

// DecodeJSON extracts the JSON payload from a model response, validates it
// against the named schema and unmarshals it into target. Every failure is a
// *MalformedResponseError carrying the raw text.
func DecodeJSON(raw string, schema Schema, target interface{}) (err error) {
	payload := ExtractJSON(raw)

	if !gjson.Valid(payload) {
		err = &MalformedResponseError{Target: string(schema), Raw: raw, Cause: errors.New("response is not valid JSON")}
		return err
	}

	if !gjson.Parse(payload).IsObject() {
		err = &MalformedResponseError{Target: string(schema), Raw: raw, Cause: errors.New("response is not a JSON object")}
		return err
	}

	err = ValidateSchema(schema, payload)
	if err != nil {
		err = &MalformedResponseError{Target: string(schema), Raw: raw, Cause: err}
		return err
	}

	err = json.Unmarshal([]byte(payload), target)
	if err != nil {
		err = &MalformedResponseError{Target: string(schema), Raw: raw, Cause: errors.Wrap(err, "failed to decode response")}
		return err
	}

	return err
}

// ValidateSchema checks a JSON document against an embedded schema.
func ValidateSchema(schema Schema, document string) (err error) {
	var schemaData []byte
	schemaData, err = schemaFS.ReadFile("schemas/" + string(schema) + ".json")
	if err != nil {
		err = errors.Wrapf(err, "unknown schema %s", schema)
		return err
	}

	var result *gojsonschema.Result
	result, err = gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaData),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		err = errors.Wrapf(err, "failed to validate against schema %s", schema)
		return err
	}

	if result.Valid() {
		return err
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	err = errors.Errorf("schema %s validation failed: %s", schema, strings.Join(problems, "; "))
	return err
}
