// Package renderer assembles final documents from parsed resumes, candidate
// metadata and matched statements, and converts them to PDF with pandoc.
package renderer

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nikogura/career-tailor/pkg/llm"
	"github.com/nikogura/career-tailor/pkg/repository"
	"github.com/nikogura/career-tailor/pkg/resume"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Section headings used in assembled resumes.
const (
	HeadingSummary    = "Professional Summary"
	HeadingExperience = "Experience"
	HeadingEducation  = "Education"
)

// upper returns s in English upper case. A Caser is stateful, so one is made per call.
func upper(s string) (upperCased string) {
	upperCased = cases.Upper(language.English).String(s)
	return upperCased
}

// ContactLine joins the non-empty contact fields of meta with " | ".
func ContactLine(meta repository.Meta) (line string) {
	fields := make([]string, 0, 5)
	for _, f := range []string{meta.Location, meta.Email, meta.Phone, meta.LinkedIn, meta.Website} {
		f = strings.TrimSpace(f)
		if f != "" {
			fields = append(fields, f)
		}
	}
	line = strings.Join(fields, " | ")
	return line
}

// EnrichPositions fills a missing company from the first matched statement
// whose position title contains, or is contained in, the parsed title.
func EnrichPositions(positions []resume.ParsedPosition, blocks []llm.MatchedBlock) (enriched []resume.ParsedPosition) {
	enriched = make([]resume.ParsedPosition, 0, len(positions))
	for _, position := range positions {
		if position.Company == "" {
			if block, ok := blockForTitle(position.Title, blocks); ok {
				position.Company = block.Company
			}
		}
		enriched = append(enriched, position)
	}
	return enriched
}

func blockForTitle(title string, blocks []llm.MatchedBlock) (block llm.MatchedBlock, ok bool) {
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" {
		return block, ok
	}

	for _, b := range blocks {
		candidate := strings.ToLower(strings.TrimSpace(b.PositionTitle))
		if candidate == "" || b.Company == "" {
			continue
		}
		if strings.Contains(candidate, title) || strings.Contains(title, candidate) {
			block = b
			ok = true
			return block, ok
		}
	}

	return block, ok
}

// ResumeMarkdown assembles the final resume. The output parses back to the
// same summary and positions.
func ResumeMarkdown(parsed resume.ParsedResume, meta repository.Meta, blocks []llm.MatchedBlock) (markdown string) {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n", meta.Name)
	if contact := ContactLine(meta); contact != "" {
		fmt.Fprintf(&b, "%s\n", contact)
	}

	fmt.Fprintf(&b, "\n## %s\n\n%s\n", upper(HeadingSummary), parsed.Summary)

	fmt.Fprintf(&b, "\n## %s\n", upper(HeadingExperience))
	for _, position := range EnrichPositions(parsed.Positions, blocks) {
		fmt.Fprintf(&b, "\n### %s\n", positionHeader(position))
		for _, bullet := range position.Bullets {
			fmt.Fprintf(&b, "- %s\n", bullet)
		}
	}

	if len(meta.Education) > 0 {
		fmt.Fprintf(&b, "\n## %s\n\n", upper(HeadingEducation))
		for _, edu := range meta.Education {
			fmt.Fprintf(&b, "%s\n\n", educationLine(edu, true))
		}
	}

	markdown = strings.TrimRight(b.String(), "\n") + "\n"
	return markdown
}

// ResumeText assembles a plain-text resume for pasting into application forms.
func ResumeText(parsed resume.ParsedResume, meta repository.Meta, blocks []llm.MatchedBlock) (text string) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", upper(meta.Name))
	if contact := ContactLine(meta); contact != "" {
		fmt.Fprintf(&b, "%s\n", contact)
	}

	fmt.Fprintf(&b, "\n%s\n\n%s\n", upper(HeadingSummary), parsed.Summary)

	fmt.Fprintf(&b, "\n%s\n", upper(HeadingExperience))
	for _, position := range EnrichPositions(parsed.Positions, blocks) {
		b.WriteString("\n")
		companyLine := joinNonEmpty(" | ", position.Company, position.Dates)
		if companyLine != "" {
			fmt.Fprintf(&b, "%s\n", companyLine)
		}
		if position.Title != "" {
			fmt.Fprintf(&b, "%s\n", position.Title)
		}
		for _, bullet := range position.Bullets {
			fmt.Fprintf(&b, "• %s\n", bullet)
		}
	}

	if len(meta.Education) > 0 {
		fmt.Fprintf(&b, "\n%s\n\n", upper(HeadingEducation))
		for _, edu := range meta.Education {
			fmt.Fprintf(&b, "%s\n", educationLine(edu, false))
		}
	}

	text = strings.TrimRight(b.String(), "\n") + "\n"
	return text
}

func positionHeader(position resume.ParsedPosition) (header string) {
	switch {
	case position.Dates != "":
		header = fmt.Sprintf("%s | %s | %s", position.Title, position.Company, position.Dates)
	case position.Company != "":
		header = fmt.Sprintf("%s | %s", position.Title, position.Company)
	default:
		header = position.Title
	}
	return header
}

func educationLine(edu repository.Education, bold bool) (line string) {
	degree := edu.Degree
	if bold {
		degree = "**" + degree + "**"
	}
	line = joinNonEmpty(", ", degree, edu.School, edu.Location)
	if edu.Year != "" {
		line += " (" + edu.Year + ")"
	}
	return line
}

func joinNonEmpty(sep string, parts ...string) (joined string) {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	joined = strings.Join(kept, sep)
	return joined
}

//nolint:gochecknoglobals // compiled once
var (
	headingMarker  = regexp.MustCompile(`(?m)^#+\s+`)
	boldMarker     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicMarker   = regexp.MustCompile(`\*([^*]+)\*`)
	listMarker     = regexp.MustCompile(`(?m)^[-*]\s+`)
	paragraphBreak = regexp.MustCompile(`\n\s*\n+`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
	greetingLine   = regexp.MustCompile(`(?i)^dear\b`)
	closingLine    = regexp.MustCompile(`(?i)^(sincerely|best regards|kind regards|warm regards|regards|respectfully)\b`)
)

// CoverLetterParagraphs splits generated cover letter markdown into plain
// paragraphs. Any greeting and closing the model wrote are dropped.
func CoverLetterParagraphs(markdown string) (paragraphs []string) {
	paragraphs = make([]string, 0)
	text := strings.ReplaceAll(markdown, "\r\n", "\n")

	for _, chunk := range paragraphBreak.Split(text, -1) {
		chunk = strings.TrimSpace(chunk)
		first, rest, _ := strings.Cut(chunk, "\n")
		if closingLine.MatchString(first) {
			break
		}
		if greetingLine.MatchString(first) {
			chunk = rest
		}

		cleaned := headingMarker.ReplaceAllString(chunk, "")
		cleaned = boldMarker.ReplaceAllString(cleaned, "$1")
		cleaned = italicMarker.ReplaceAllString(cleaned, "$1")
		cleaned = listMarker.ReplaceAllString(cleaned, "")
		cleaned = resume.NormalizeDashes(cleaned)
		cleaned = strings.TrimSpace(whitespaceRun.ReplaceAllString(cleaned, " "))

		if cleaned != "" {
			paragraphs = append(paragraphs, cleaned)
		}
	}

	return paragraphs
}

// Greeting addresses the hiring team at company, or a hiring manager when the
// company is unknown.
func Greeting(company string) (greeting string) {
	company = strings.TrimSpace(company)
	if company == "" {
		greeting = "Dear Hiring Manager,"
		return greeting
	}
	greeting = fmt.Sprintf("Dear %s Hiring Team,", company)
	return greeting
}

// CoverLetterMarkdown assembles a cover letter with the candidate header,
// date, greeting and signature around the generated body.
func CoverLetterMarkdown(body string, meta repository.Meta, company string, date time.Time) (markdown string) {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n", meta.Name)
	if contact := ContactLine(meta); contact != "" {
		fmt.Fprintf(&b, "%s\n", contact)
	}

	fmt.Fprintf(&b, "\n%s\n\n%s\n", date.Format("January 2, 2006"), Greeting(company))

	for _, paragraph := range CoverLetterParagraphs(body) {
		fmt.Fprintf(&b, "\n%s\n", paragraph)
	}

	fmt.Fprintf(&b, "\nSincerely,\n\n%s\n", meta.Name)

	markdown = b.String()
	return markdown
}
