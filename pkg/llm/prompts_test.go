package llm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAnalyzePrompt(t *testing.T) {
	jd := "We are looking for a Staff Engineer with Go experience at Acme Corp."

	prompt := BuildAnalyzePrompt(jd)

	assert.Contains(t, prompt, jd)
	for _, field := range []string{"role_title", "role_level", "required_skills", "preferred_skills", "key_themes", "cultural_signals"} {
		assert.Contains(t, prompt, field)
	}
	assert.Contains(t, prompt, "entry, mid, senior, director, executive")
}

func TestBuildAnalyzePromptIsPure(t *testing.T) {
	assert.Equal(t, BuildAnalyzePrompt("same input"), BuildAnalyzePrompt("same input"))
}

func TestBuildMatchPrompt(t *testing.T) {
	analysis := JDAnalysis{RoleTitle: "Staff Engineer", RequiredSkills: []string{"Kubernetes"}}

	prompt := BuildMatchPrompt(analysis, testRepository())

	assert.Contains(t, prompt, "Kubernetes")
	assert.Contains(t, prompt, "acme-staff")
	assert.Contains(t, prompt, "globex-senior")
	assert.Contains(t, prompt, "EVERY position", "coverage policy")
	assert.Contains(t, prompt, fmt.Sprintf("%d-%d statements", MinMatchedStatements, MaxMatchedStatements))
	assert.Contains(t, prompt, "matched_blocks")
}

func TestBuildResumePrompt(t *testing.T) {
	blocks := []MatchedBlock{{PositionID: "acme-staff", StatementText: "Led migration of 40 services"}}

	prompt := BuildResumePrompt(JDAnalysis{RoleTitle: "Staff Engineer"}, blocks, testRepository())

	assert.Contains(t, prompt, "Led migration of 40 services")
	assert.Contains(t, prompt, "### Job Title | Company Name | Start Date - End Date")
	assert.Contains(t, prompt, "em dashes")
	assert.Contains(t, prompt, "## Professional Summary")
	assert.Contains(t, prompt, `"start_date": "2017-03"`)
}

func TestBuildCoverLetterPrompt(t *testing.T) {
	repo := testRepository()
	prompt := BuildCoverLetterPrompt(JDAnalysis{RoleTitle: "Staff Engineer"}, nil, repo.Meta)

	assert.Contains(t, prompt, "Name: Test User")
	assert.Contains(t, prompt, "400 words")
	assert.Contains(t, prompt, "signature block")
}

func TestBuildStrategyBriefPrompt(t *testing.T) {
	prompt := BuildStrategyBriefPrompt(JDAnalysis{RoleTitle: "Staff Engineer"}, nil, testRepository())

	sections := []string{
		"## Key Positioning Points",
		"## Likely Interview Questions",
		"## Potential Gaps/Challenges",
		"## Questions to Ask the Interviewer",
	}
	for _, section := range sections {
		assert.Contains(t, prompt, section)
	}
	assert.Contains(t, prompt, "STAR")
}

func TestBuildExtractExperiencePrompt(t *testing.T) {
	transcript := "I ran product at Initech for three years."

	prompt := BuildExtractExperiencePrompt(transcript)

	assert.Contains(t, prompt, transcript)
	assert.Contains(t, prompt, "impact_statements")
	assert.Contains(t, prompt, "unique ID")
}

func TestBuildGeneratePromptSelectsTemplate(t *testing.T) {
	for _, docType := range DocumentTypes() {
		prompt, err := BuildGeneratePrompt(docType, JDAnalysis{RoleTitle: "X"}, nil, testRepository())
		require.NoError(t, err, docType)
		assert.NotEmpty(t, prompt, docType)
	}

	_, err := BuildGeneratePrompt(DocumentType("memo"), JDAnalysis{}, nil, testRepository())
	assert.Error(t, err)
}

func TestParseDocumentType(t *testing.T) {
	docType, err := ParseDocumentType("cover_letter")
	require.NoError(t, err)
	assert.Equal(t, DocumentCoverLetter, docType)

	_, err = ParseDocumentType("resume.pdf")
	assert.Error(t, err)
}
