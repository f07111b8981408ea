package llm

import (
	"encoding/json"
	"fmt"

	"github.com/nikogura/career-tailor/pkg/repository"
)

// Statement selection targets encoded in the match prompt.
const (
	MinMatchedStatements = 18
	MaxMatchedStatements = 25
)

func toJSON(v interface{}) (text string) {
	data, _ := json.MarshalIndent(v, "", "  ")
	text = string(data)
	return text
}

// BuildAnalyzePrompt requests a JDAnalysis for a job description.
func BuildAnalyzePrompt(jobDescription string) (prompt string) {
	prompt = fmt.Sprintf(`Analyze the following job description and extract structured information.

JOB DESCRIPTION:
%s

Return a JSON object with the following structure:
{
  "role_title": "the job title",
  "role_level": "one of: entry, mid, senior, director, executive",
  "company": "company name if mentioned",
  "industry": "industry if mentioned",
  "required_skills": ["hard requirements and must-have skills"],
  "preferred_skills": ["nice-to-have or preferred skills"],
  "key_themes": ["key themes like 'leadership', 'technical depth', 'client-facing'"],
  "cultural_signals": ["signals about company culture like 'startup', 'fast-paced', 'collaborative'"]
}

Return ONLY the JSON object, no additional text.`, jobDescription)

	return prompt
}

// BuildMatchPrompt requests matched impact statements covering every position.
func BuildMatchPrompt(analysis JDAnalysis, repo repository.Repository) (prompt string) {
	prompt = fmt.Sprintf(`You are a resume optimization expert. Given a job analysis and a candidate's career repository, select the most relevant impact statements.

JOB ANALYSIS:
%s

CANDIDATE REPOSITORY:
%s

Your task:
1. Review EVERY position and impact statement in the repository
2. Select the statements that best match the job requirements
3. For each selected statement, explain WHY it is relevant
4. Prioritize:
   - Direct skill and experience matches
   - Quantifiable outcomes
   - Statements that address key themes
   - Transferable experience
5. Include statements from ALL positions in the repository, including early career roles. Even if a position is older, include 1-2 statements that demonstrate foundational skills or relevant domain expertise.
6. Copy statement_text verbatim from the repository. Use the repository's position_id and statement_id values exactly.

Return a JSON object with this structure:
{
  "matched_blocks": [
    {
      "position_id": "position id from repository",
      "position_title": "position title",
      "company": "company name",
      "statement_id": "impact statement id",
      "statement_text": "the full impact statement text",
      "match_reason": "clear explanation of why this matches the job",
      "relevance_score": 0-100 integer,
      "tags": ["relevant tags from the statement"]
    }
  ],
  "summary": "1-2 paragraph summary of the candidate's overall fit for this role"
}

Select %d-%d statements total, ensuring EVERY position in the repository is represented with at least 1-2 statements. Positions held within the last 5 years should have 4-5 statements each, older positions should have 2-3 statements each.

Return ONLY the JSON object, no additional text.`,
		toJSON(analysis), toJSON(repo), MinMatchedStatements, MaxMatchedStatements)

	return prompt
}

// BuildGeneratePrompt selects the generation prompt for a document type.
func BuildGeneratePrompt(docType DocumentType, analysis JDAnalysis, blocks []MatchedBlock, repo repository.Repository) (prompt string, err error) {
	switch docType {
	case DocumentResume:
		prompt = BuildResumePrompt(analysis, blocks, repo)
	case DocumentCoverLetter:
		prompt = BuildCoverLetterPrompt(analysis, blocks, repo.Meta)
	case DocumentStrategyBrief:
		prompt = BuildStrategyBriefPrompt(analysis, blocks, repo)
	default:
		err = &InvalidInputError{Field: "type", Message: fmt.Sprintf("unknown document type %q", docType)}
	}
	return prompt, err
}

// BuildResumePrompt requests a tailored markdown resume.
func BuildResumePrompt(analysis JDAnalysis, blocks []MatchedBlock, repo repository.Repository) (prompt string) {
	prompt = fmt.Sprintf(`You are a professional resume writer. Generate a tailored resume using ONLY the provided information.

JOB ANALYSIS:
%s

CANDIDATE META:
%s

POSITION DATES (start and end as YYYY-MM, null end means current):
%s

MATCHED IMPACT STATEMENTS (use these and only these):
%s

Requirements:
1. Format as a clean, professional resume in markdown
2. Use ONLY the provided impact statements. Do not invent or embellish.
3. Structure: Professional Summary (2-3 sentences), Experience (by position, most recent first), Education
4. Include ALL positions from the matched blocks. Do not skip any positions.
5. Bullets per position:
   - Recent positions (last 5 years): 4-5 bullets each
   - Mid-career positions: 3-4 bullets each
   - Early career positions: 2-3 bullets each
6. Keep to 1-2 pages worth of content
7. The PROFESSIONAL SUMMARY is a 2-3 sentence tailored summary. When mentioning years of experience, calculate from the earliest position start date to present.
8. Do not use em dashes or en dashes anywhere in the output. Use regular hyphens (-), commas, semicolons, or rewrite the sentence.
9. For position headers, use this EXACT format: ### Job Title | Company Name | Start Date - End Date

Format:
- Use ## for section headers (## Professional Summary, ## Experience, ## Education)
- For positions, use ### followed by: Job Title | Company Name | Start Date - End Date
- Use bullet points (-) for impact statements
- Do NOT use bold markers (**) anywhere except in section headers
- Dates must be in "Month YYYY - Month YYYY" or "Month YYYY - Present" format
- Do NOT include standalone date lines or company name lines outside of the position header
- Write numeric ranges with a regular hyphen, for example "4-5 months" or "10,000-50,000"

Return the resume content in markdown format.`,
		toJSON(analysis), toJSON(repo.Meta), toJSON(positionDates(repo)), toJSON(blocks))

	return prompt
}

// BuildCoverLetterPrompt requests the body of a cover letter.
func BuildCoverLetterPrompt(analysis JDAnalysis, blocks []MatchedBlock, meta repository.Meta) (prompt string) {
	prompt = fmt.Sprintf(`You are a professional cover letter writer. Write a compelling cover letter that connects the candidate's experience to this specific role.

JOB ANALYSIS:
%s

CANDIDATE INFORMATION:
Name: %s
Location: %s

MATCHED IMPACT STATEMENTS (reference these):
%s

Requirements:
1. Use a confident, professional tone
2. Reference 2-3 specific achievements that directly address the job requirements
3. Explain WHY the candidate is uniquely positioned for this role
4. Keep to about 400 words (3-4 paragraphs)
5. Structure: Opening (express interest), Body (2-3 key matches), Closing (call to action)
6. Do NOT use generic phrases like "I am writing to express my interest"
7. Start with a compelling opening that demonstrates understanding of the role
8. Do not use em dashes or en dashes anywhere in the output. Use commas, semicolons, periods, or rewrite the sentence.

Do NOT include:
- Address block or date
- "Sincerely" or a signature block
Return just the body of the letter.

Return the cover letter text in markdown format.`,
		toJSON(analysis), meta.Name, meta.Location, toJSON(blocks))

	return prompt
}

// BuildStrategyBriefPrompt requests an interview preparation brief.
func BuildStrategyBriefPrompt(analysis JDAnalysis, blocks []MatchedBlock, repo repository.Repository) (prompt string) {
	prompt = fmt.Sprintf(`You are an interview coach. Create a comprehensive interview preparation brief for this candidate.

JOB ANALYSIS:
%s

CANDIDATE REPOSITORY:
%s

MATCHED IMPACT STATEMENTS:
%s

Create an interview strategy brief with the following sections:

## Key Positioning Points
2-3 bullet points on what to emphasize about this candidacy

## Likely Interview Questions
5-7 likely interview questions based on the job requirements

For each question, provide:
- **Question:** the question
- **Recommended Approach:** brief guidance on how to answer
- **Example STAR Response:** a specific example from the repository formatted as:
  - **Situation:** context
  - **Task:** challenge or goal
  - **Action:** what they did
  - **Result:** outcome

## Potential Gaps/Challenges
1-2 areas where the candidate might be questioned or have gaps relative to the job requirements, with suggested approaches to address them

## Questions to Ask the Interviewer
4-5 thoughtful questions tailored to this specific role and company

Do not use em dashes or en dashes anywhere in the output.

Return the strategy brief in markdown format with clear section headers.`,
		toJSON(analysis), toJSON(repo), toJSON(blocks))

	return prompt
}

// BuildExtractExperiencePrompt requests a repository position from a spoken transcript.
func BuildExtractExperiencePrompt(transcript string) (prompt string) {
	prompt = fmt.Sprintf(`You are extracting structured work experience data from a spoken transcript. The speaker is describing a position they held. Return JSON matching this exact schema:

{
  "id": "short-kebab-case-id",
  "title": "Job Title",
  "company": "Company Name",
  "location": "City, State",
  "start_date": "YYYY-MM",
  "end_date": "YYYY-MM or null if current",
  "context": "Brief context about the role",
  "categories": [
    {
      "name": "Category Name",
      "blocks": ["Detailed description of what they did"]
    }
  ],
  "impact_statements": [
    {
      "id": "short-id",
      "text": "Concise, action-oriented achievement statement",
      "tags": ["relevant", "tags"]
    }
  ],
  "tags": ["position-level", "tags"]
}

Rules:
- Do NOT use em dashes anywhere in the output
- Impact statements should be concise (1-2 sentences), start with action verbs, and include quantifiable outcomes where the speaker mentioned them
- Do not invent or embellish anything not stated by the speaker
- If the speaker was vague about dates, use your best estimate and flag it in the context
- Categorize blocks using themes like "Leadership", "Technical Delivery", "Client Management", "Product Development", "Process Improvement", "Domain Expertise"
- Generate relevant tags for keyword matching (skills, technologies, domains)
- Generate a short unique ID for the position (for example "acme-product-manager") and for each impact statement (for example "pm-1", "pm-2")

TRANSCRIPT:
%s

Return ONLY the JSON object, no additional text.`, transcript)

	return prompt
}

type positionDate struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Company   string  `json:"company"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

func positionDates(repo repository.Repository) (dates []positionDate) {
	dates = make([]positionDate, 0, len(repo.Positions))
	for _, p := range repo.Positions {
		dates = append(dates, positionDate{
			ID:        p.ID,
			Title:     p.Title,
			Company:   p.Company,
			StartDate: p.StartDate,
			EndDate:   p.EndDate,
		})
	}
	return dates
}
