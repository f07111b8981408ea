package llm

import (
	"github.com/pkg/errors"
)

// JDAnalysis holds the structured requirements derived from a job description.
type JDAnalysis struct {
	RoleTitle       string   `json:"role_title" validate:"required"`
	RoleLevel       string   `json:"role_level" validate:"oneof=entry mid senior director executive"`
	Company         string   `json:"company,omitempty"`
	Industry        string   `json:"industry,omitempty"`
	RequiredSkills  []string `json:"required_skills"`
	PreferredSkills []string `json:"preferred_skills"`
	KeyThemes       []string `json:"key_themes"`
	CulturalSignals []string `json:"cultural_signals"`
}

// MatchedBlock is one impact statement judged relevant to a JDAnalysis.
// StatementText is a verbatim copy, not a reference.
type MatchedBlock struct {
	PositionID     string   `json:"position_id" validate:"required"`
	PositionTitle  string   `json:"position_title"`
	Company        string   `json:"company"`
	StatementID    string   `json:"statement_id,omitempty"`
	StatementText  string   `json:"statement_text" validate:"required"`
	MatchReason    string   `json:"match_reason"`
	RelevanceScore int      `json:"relevance_score" validate:"min=0,max=100"`
	Tags           []string `json:"tags"`
}

// MatchResponse is the result of matching a JDAnalysis against a repository.
type MatchResponse struct {
	MatchedBlocks []MatchedBlock `json:"matched_blocks" validate:"dive"`
	Summary       string         `json:"summary"`
}

// DocumentType selects a generation prompt.
type DocumentType string

const (
	// DocumentResume is the tailored resume.
	DocumentResume DocumentType = "resume"
	// DocumentCoverLetter is the cover letter body.
	DocumentCoverLetter DocumentType = "cover_letter"
	// DocumentStrategyBrief is the interview preparation brief.
	DocumentStrategyBrief DocumentType = "strategy_brief"
)

// DocumentTypes lists every generated document in output order.
func DocumentTypes() (types []DocumentType) {
	types = []DocumentType{DocumentResume, DocumentCoverLetter, DocumentStrategyBrief}
	return types
}

// ParseDocumentType validates a document type name.
func ParseDocumentType(value string) (docType DocumentType, err error) {
	for _, t := range DocumentTypes() {
		if string(t) == value {
			docType = t
			return docType, err
		}
	}
	err = errors.Errorf("unknown document type %q", value)
	return docType, err
}
