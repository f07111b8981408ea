package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json fence with preamble",
			input:    "Here you go:\n```json\n{\"a\":1}\n```",
			expected: `{"a":1}`,
		},
		{
			name:     "untagged fence",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "fence with trailing commentary",
			input:    "```json\n{\"a\":1}\n```\nHope this helps!",
			expected: `{"a":1}`,
		},
		{
			name:     "first fenced block wins",
			input:    "```json\n{\"first\":1}\n```\n```json\n{\"second\":2}\n```",
			expected: `{"first":1}`,
		},
		{
			name:     "no fence",
			input:    "  {\"a\":1}  \n",
			expected: `{"a":1}`,
		},
		{
			name:     "no fence, prose",
			input:    "\nnot json at all\n",
			expected: "not json at all",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
		{
			name:     "unterminated fence",
			input:    "```json\n{\"a\":1}",
			expected: "```json\n{\"a\":1}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.input
			assert.Equal(t, tt.expected, ExtractJSON(tt.input))
			assert.Equal(t, original, tt.input)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var analysis JDAnalysis
	err := DecodeJSON("```json\n"+analysisJSON+"\n```", SchemaJDAnalysis, &analysis)
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", analysis.RoleTitle)
}

func TestDecodeJSONMalformed(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		schema Schema
	}{
		{"invalid json", `{"role_title": `, SchemaJDAnalysis},
		{"schema violation", `{"matched_blocks": [{"position_id": "p"}], "summary": ""}`, SchemaMatchResponse},
		{"negative score", `{"matched_blocks": [{"position_id": "p", "statement_text": "t", "relevance_score": -1}], "summary": ""}`, SchemaMatchResponse},
		{"fractional score", `{"matched_blocks": [{"position_id": "p", "statement_text": "t", "relevance_score": 55.5}], "summary": ""}`, SchemaMatchResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var target map[string]interface{}
			err := DecodeJSON(tt.raw, tt.schema, &target)

			var malformed *MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.raw, malformed.Raw)
		})
	}
}

func TestValidateSchemaUnknown(t *testing.T) {
	assert.Error(t, ValidateSchema(Schema("nope"), `{}`))
}
