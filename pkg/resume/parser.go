// Package resume recovers structured positions and a summary from generated
// resume markdown. Parsing never fails; lines that cannot be classified are
// dropped.
package resume

import (
	"strings"
)

// FallbackSummary is used when the input has no summary content.
const FallbackSummary = "Experienced professional with a track record of delivering measurable results."

// ParsedResume is the structured form of a generated resume.
type ParsedResume struct {
	Summary   string           `json:"summary"`
	Positions []ParsedPosition `json:"positions"`
}

// ParsedPosition is one position recovered from a resume.
type ParsedPosition struct {
	Title   string   `json:"title"`
	Company string   `json:"company"`
	Dates   string   `json:"dates"`
	Bullets []string `json:"bullets"`
}

type parser struct {
	state        section
	summaryLines []string
	summary      string
	current      *ParsedPosition
	seen         map[string]bool
	positions    []ParsedPosition
}

// Parse converts resume markdown into a ParsedResume. The result depends only
// on the input text.
func Parse(markdown string) (parsed ParsedResume) {
	p := &parser{
		state:     sectionNone,
		positions: make([]ParsedPosition, 0),
	}

	text := strings.ReplaceAll(markdown, "\r\n", "\n")
	for _, raw := range strings.Split(text, "\n") {
		if p.state == sectionEducation {
			break
		}
		p.handle(classify(raw))
	}

	p.flushPosition()
	p.flushSummary()

	parsed.Summary = p.summary
	if parsed.Summary == "" {
		parsed.Summary = FallbackSummary
	}
	parsed.Positions = p.positions

	return parsed
}

func (p *parser) handle(line classifiedLine) {
	switch line.kind {
	case kindBlank:
		return
	case kindSectionHeading:
		p.enterSection(line.section)
	case kindPositionHeader:
		p.handleHeader(line)
	case kindBullet:
		p.handleBullet(line.text)
	case kindText:
		p.handleText(line.text)
	}
}

func (p *parser) enterSection(s section) {
	switch s {
	case sectionSummary:
		p.flushPosition()
	case sectionExperience:
		p.flushSummary()
	case sectionEducation, sectionOther:
		p.flushPosition()
	}
	p.state = s
}

func (p *parser) handleHeader(line classifiedLine) {
	switch p.state {
	case sectionExperience:
		p.startPosition(line.text)
	case sectionNone, sectionSummary, sectionOther:
		// A piped header outside Experience means the heading was omitted or unrecognized.
		if line.piped {
			p.enterSection(sectionExperience)
			p.startPosition(line.text)
		}
	}
}

func (p *parser) handleBullet(text string) {
	switch p.state {
	case sectionExperience:
		p.addBullet(text)
	case sectionSummary:
		p.addSummaryLine(text)
	}
}

func (p *parser) handleText(text string) {
	// Stray lines inside Experience are restated company names or dates and are dropped.
	if p.state == sectionSummary {
		p.addSummaryLine(text)
	}
}

func (p *parser) startPosition(headerText string) {
	p.flushPosition()

	title, company, dates := splitHeader(headerText)
	if title == "" && company == "" && dates == "" {
		return
	}

	p.current = &ParsedPosition{
		Title:   title,
		Company: company,
		Dates:   dates,
		Bullets: make([]string, 0),
	}
	p.seen = make(map[string]bool)
}

func (p *parser) addBullet(text string) {
	if p.current == nil {
		return
	}

	bullet := strings.TrimSpace(NormalizeDashes(text))
	if bullet == "" || !significantBullet(bullet) {
		return
	}

	if p.seen[bullet] {
		return
	}
	p.seen[bullet] = true
	p.current.Bullets = append(p.current.Bullets, bullet)
}

func (p *parser) addSummaryLine(text string) {
	line := strings.TrimSpace(NormalizeDashes(text))
	if summaryLine(line) {
		p.summaryLines = append(p.summaryLines, line)
	}
}

func (p *parser) flushPosition() {
	if p.current == nil {
		return
	}
	p.positions = append(p.positions, *p.current)
	p.current = nil
	p.seen = nil
}

func (p *parser) flushSummary() {
	if len(p.summaryLines) == 0 {
		return
	}
	joined := strings.Join(p.summaryLines, " ")
	if p.summary == "" {
		p.summary = joined
	} else {
		p.summary += " " + joined
	}
	p.summaryLines = nil
}
