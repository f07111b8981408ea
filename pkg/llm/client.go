package llm

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/nikogura/career-tailor/pkg/repository"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Client runs the structured model operations over a Gateway.
type Client struct {
	gateway Gateway
	logger  *logrus.Logger
}

// NewClient creates a client. A nil logger uses the logrus standard logger.
func NewClient(gateway Gateway, logger *logrus.Logger) (client *Client) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	client = &Client{
		gateway: gateway,
		logger:  logger,
	}
	return client
}

// AnalyzeJD derives a JDAnalysis from job description text.
func (c *Client) AnalyzeJD(ctx context.Context, jobDescription string) (analysis JDAnalysis, err error) {
	err = requireText("job_description", jobDescription)
	if err != nil {
		return analysis, err
	}

	var raw string
	raw, err = c.complete(ctx, "analyze", BuildAnalyzePrompt(jobDescription))
	if err != nil {
		return analysis, err
	}

	err = c.decode(raw, SchemaJDAnalysis, &analysis)
	if err != nil {
		return analysis, err
	}

	analysis.RoleLevel = NormalizeRoleLevel(analysis.RoleLevel)

	err = validator.New().Struct(&analysis)
	if err != nil {
		err = c.malformed(SchemaJDAnalysis, raw, err)
		return analysis, err
	}

	return analysis, err
}

// MatchRepository selects impact statements relevant to a JDAnalysis.
func (c *Client) MatchRepository(ctx context.Context, analysis JDAnalysis, repo repository.Repository) (response MatchResponse, err error) {
	err = requireText("jd_analysis.role_title", analysis.RoleTitle)
	if err != nil {
		return response, err
	}
	if len(repo.Positions) == 0 {
		err = &InvalidInputError{Field: "repository.positions"}
		return response, err
	}

	var raw string
	raw, err = c.complete(ctx, "match", BuildMatchPrompt(analysis, repo))
	if err != nil {
		return response, err
	}

	err = c.decode(raw, SchemaMatchResponse, &response)
	if err != nil {
		return response, err
	}

	err = validator.New().Struct(&response)
	if err != nil {
		err = c.malformed(SchemaMatchResponse, raw, err)
		return response, err
	}

	c.logger.WithFields(logrus.Fields{
		"matched_blocks": gjson.Get(ExtractJSON(raw), "matched_blocks.#").Int(),
		"positions":      len(repo.Positions),
	}).Debug("Repository matched")

	return response, err
}

// GenerateDocument produces markdown for one document type.
func (c *Client) GenerateDocument(ctx context.Context, docType DocumentType, analysis JDAnalysis, blocks []MatchedBlock, repo repository.Repository) (text string, err error) {
	err = requireText("jd_analysis.role_title", analysis.RoleTitle)
	if err != nil {
		return text, err
	}
	if len(blocks) == 0 {
		err = &InvalidInputError{Field: "matched_blocks"}
		return text, err
	}

	var prompt string
	prompt, err = BuildGeneratePrompt(docType, analysis, blocks, repo)
	if err != nil {
		return text, err
	}

	text, err = c.complete(ctx, string(docType), prompt)
	return text, err
}

// ExtractExperience turns a spoken transcript into a repository position.
func (c *Client) ExtractExperience(ctx context.Context, transcript string) (position repository.Position, err error) {
	err = requireText("transcript", transcript)
	if err != nil {
		return position, err
	}

	var raw string
	raw, err = c.complete(ctx, "extract_experience", BuildExtractExperiencePrompt(transcript))
	if err != nil {
		return position, err
	}

	err = c.decode(raw, SchemaPosition, &position)
	if err != nil {
		return position, err
	}

	err = position.Validate()
	if err != nil {
		err = c.malformed(SchemaPosition, raw, err)
		return position, err
	}

	return position, err
}

func (c *Client) complete(ctx context.Context, op string, prompt string) (raw string, err error) {
	raw, err = c.gateway.Complete(ctx, prompt)
	if err != nil {
		var modelErr *ModelError
		if !errors.As(err, &modelErr) {
			err = &ModelError{Op: op, Cause: err}
		}
		c.logger.WithFields(logrus.Fields{
			"operation": op,
			"error":     err.Error(),
		}).Error("Model call failed")
		return raw, err
	}
	return raw, err
}

func (c *Client) decode(raw string, schema Schema, target interface{}) (err error) {
	err = DecodeJSON(raw, schema, target)
	if err != nil {
		c.logMalformed(schema, raw, err)
	}
	return err
}

func (c *Client) malformed(schema Schema, raw string, cause error) (err error) {
	err = &MalformedResponseError{Target: string(schema), Raw: raw, Cause: cause}
	c.logMalformed(schema, raw, err)
	return err
}

func (c *Client) logMalformed(schema Schema, raw string, err error) {
	c.logger.WithFields(logrus.Fields{
		"schema":   string(schema),
		"error":    err.Error(),
		"raw_text": raw,
	}).Warn("Malformed model response")
}
