// Package store persists completed tailoring sessions and positions staged
// from transcripts.
package store

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nikogura/career-tailor/pkg/llm"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when no record matches the requested id.
var ErrNotFound = errors.New("not found")

// ErrExists is returned when appending a record whose id is already stored.
var ErrExists = errors.New("already exists")

// Analysis is a completed session: the job text, its analysis, the matched
// statements and all three generated documents.
type Analysis struct {
	ID             string             `json:"id" validate:"required"`
	Date           time.Time          `json:"date" validate:"required"`
	JobTitle       string             `json:"job_title"`
	Company        string             `json:"company"`
	JobDescription string             `json:"jd_text" validate:"required"`
	JDAnalysis     llm.JDAnalysis     `json:"jd_analysis"`
	MatchedBlocks  []llm.MatchedBlock `json:"matched_blocks" validate:"required,min=1,dive"`
	MatchSummary   string             `json:"match_summary,omitempty"`
	Resume         string             `json:"resume" validate:"required"`
	CoverLetter    string             `json:"cover_letter" validate:"required"`
	StrategyBrief  string             `json:"strategy_brief" validate:"required"`
}

// Validate rejects partial records. Only complete sessions are persisted.
func (a *Analysis) Validate() (err error) {
	err = validator.New().Struct(a)
	if err != nil {
		err = errors.Wrapf(err, "invalid analysis %q", a.ID)
		return err
	}
	return err
}

// Document returns the generated text for docType.
func (a *Analysis) Document(docType llm.DocumentType) (text string, err error) {
	switch docType {
	case llm.DocumentResume:
		text = a.Resume
	case llm.DocumentCoverLetter:
		text = a.CoverLetter
	case llm.DocumentStrategyBrief:
		text = a.StrategyBrief
	default:
		err = errors.Errorf("unknown document type %q", docType)
	}
	return text, err
}

// AnalysisStore holds the most-recent-first list of completed analyses.
// There is no update operation; replace a record by deleting and appending.
type AnalysisStore interface {
	Append(ctx context.Context, analysis Analysis) (err error)
	List(ctx context.Context) (analyses []Analysis, err error)
	Delete(ctx context.Context, id string) (err error)
}

// Find returns the stored analysis with the given id.
func Find(ctx context.Context, s AnalysisStore, id string) (analysis Analysis, err error) {
	var analyses []Analysis
	analyses, err = s.List(ctx)
	if err != nil {
		return analysis, err
	}

	for _, a := range analyses {
		if a.ID == id {
			analysis = a
			return analysis, err
		}
	}

	err = errors.Wrapf(ErrNotFound, "analysis %q", id)
	return analysis, err
}
