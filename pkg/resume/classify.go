package resume

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MinBulletLength is the rune count a bullet must exceed to be kept.
const MinBulletLength = 5

// MinSummaryLineLength is the rune count a summary line must exceed to be kept.
const MinSummaryLineLength = 10

type section int

const (
	sectionNone section = iota
	sectionSummary
	sectionExperience
	sectionEducation
	sectionOther
)

type lineKind int

const (
	kindBlank lineKind = iota
	kindSectionHeading
	kindPositionHeader
	kindBullet
	kindText
)

// classifiedLine is one input line after cleanup and classification.
type classifiedLine struct {
	kind    lineKind
	section section // set for kindSectionHeading
	text    string  // emphasis stripped, marker removed
	piped   bool    // position header text contains a field separator
}

var (
	summaryHeadingPattern    = regexp.MustCompile(`(?i)^(professional|executive|career)?\s*summary$`)
	experienceHeadingPattern = regexp.MustCompile(`(?i)^((professional|work|relevant)\s+)?experience$|^(employment|work|career)\s+history$`)
	experienceKeywordPattern = regexp.MustCompile(`(?i)\b(experience|employment|(career|work)\s+history)\b`)
	educationHeadingPattern  = regexp.MustCompile(`(?i)^education(\s*(and|&)\s*(certifications?|training))?$`)

	monthPattern        = `(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?`
	datePointPattern    = `((` + monthPattern + `\s+)?\d{4}|\d{1,2}/\d{4}|\d{4}-\d{2}|present|current|now)`
	yearRangePattern    = regexp.MustCompile(`(?i)^\(?\s*\d{4}\s*(-|to)\s*(\d{4}|present|current|now)\s*\)?$`)
	dateFragmentPattern = regexp.MustCompile(`(?i)^\(?\s*` + datePointPattern + `(\s*(-|to)\s*` + datePointPattern + `)?\s*\)?$`)

	dashReplacer = strings.NewReplacer(
		"\u2014", "-", // em dash
		"\u2013", "-", // en dash
		"\u2012", "-", // figure dash
		"\u2015", "-", // horizontal bar
		"\u2010", "-", // hyphen
		"\u2011", "-", // non-breaking hyphen
		"\u2212", "-", // minus sign
		"\ufe58", "-", // small em dash
		"\ufe63", "-", // small hyphen-minus
	)
)

// NormalizeDashes replaces em, en and other dash characters with a plain hyphen.
func NormalizeDashes(s string) (normalized string) {
	normalized = dashReplacer.Replace(s)
	return normalized
}

// StripEmphasis removes bold and italic markers.
func StripEmphasis(s string) (stripped string) {
	stripped = strings.ReplaceAll(s, "**", "")
	stripped = strings.ReplaceAll(stripped, "__", "")
	stripped = strings.TrimSpace(stripped)

	for _, marker := range []string{"*", "_"} {
		if len(stripped) >= 2 && strings.HasPrefix(stripped, marker) && strings.HasSuffix(stripped, marker) {
			stripped = strings.TrimSpace(stripped[1 : len(stripped)-1])
		}
	}

	return stripped
}

// cleanLine trims surrounding whitespace. Content is not otherwise rewritten.
func cleanLine(raw string) (line string) {
	line = strings.TrimSpace(raw)
	return line
}

// headingLevel returns the markdown heading level and its text, or 0.
func headingLevel(line string) (level int, text string) {
	for level < len(line) && level < 7 && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		level = 0
		return level, text
	}
	rest := line[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		level = 0
		return level, text
	}
	text = strings.TrimSpace(rest)
	return level, text
}

// bulletText returns the text after a bullet marker.
func bulletText(line string) (text string, ok bool) {
	for _, marker := range []string{"-", "*", "+", "•"} {
		if !strings.HasPrefix(line, marker) {
			continue
		}
		rest := line[len(marker):]
		if rest == "" {
			ok = true
			return text, ok
		}
		if rest[0] == ' ' || rest[0] == '\t' {
			text = strings.TrimSpace(rest)
			ok = true
			return text, ok
		}
	}
	return text, ok
}

// sectionFor matches heading text against the known section names. Names are
// compatibility folded before matching. With marked set the text came from a
// top-level markdown or bold heading, and any unpiped name mentioning experience,
// employment or career history counts as Experience.
func sectionFor(text string, marked bool) (s section) {
	name := norm.NFKC.String(StripEmphasis(text))
	name = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(name), ":"))
	switch {
	case summaryHeadingPattern.MatchString(name):
		s = sectionSummary
	case experienceHeadingPattern.MatchString(name):
		s = sectionExperience
	case educationHeadingPattern.MatchString(name):
		s = sectionEducation
	case marked && !strings.Contains(name, "|") && experienceKeywordPattern.MatchString(name):
		s = sectionExperience
	default:
		s = sectionOther
	}
	return s
}

// isBoldLine reports whether the whole line is wrapped in bold markers.
func isBoldLine(line string) (bold bool) {
	bold = len(line) > 4 && strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**")
	return bold
}

// classify applies the line rules in precedence order: section heading,
// position header, bullet, then plain text.
func classify(raw string) (cl classifiedLine) {
	line := cleanLine(raw)
	if line == "" {
		cl.kind = kindBlank
		return cl
	}

	if level, text := headingLevel(line); level > 0 {
		s := sectionFor(text, level <= 2)
		if s != sectionOther || level <= 2 {
			cl.kind = kindSectionHeading
			cl.section = s
			cl.text = StripEmphasis(text)
			return cl
		}
		cl.kind = kindPositionHeader
		cl.text = StripEmphasis(text)
		cl.piped = strings.Contains(cl.text, "|")
		return cl
	}

	if strings.HasPrefix(line, "**") && strings.Contains(line, "|") {
		cl.kind = kindPositionHeader
		cl.text = StripEmphasis(line)
		cl.piped = true
		return cl
	}

	if isBoldLine(line) {
		text := StripEmphasis(line)
		if s := sectionFor(text, true); s != sectionOther {
			cl.kind = kindSectionHeading
			cl.section = s
			cl.text = text
			return cl
		}
	}

	if text, ok := bulletText(line); ok {
		cl.kind = kindBullet
		cl.text = StripEmphasis(text)
		return cl
	}

	if s := sectionFor(line, false); s != sectionOther {
		cl.kind = kindSectionHeading
		cl.section = s
		cl.text = StripEmphasis(line)
		return cl
	}

	cl.kind = kindText
	cl.text = StripEmphasis(line)
	return cl
}

// splitHeader maps "Title | Company | Dates" onto its fields. Missing fields
// are empty; fields past the third are ignored.
func splitHeader(text string) (title, company, dates string) {
	parts := strings.Split(text, "|")
	fields := make([]string, 3)
	for i := 0; i < len(parts) && i < 3; i++ {
		fields[i] = strings.TrimSpace(NormalizeDashes(parts[i]))
	}
	title, company, dates = fields[0], fields[1], fields[2]
	return title, company, dates
}

// significantBullet reports whether bullet text is long enough to keep.
func significantBullet(text string) (ok bool) {
	ok = utf8.RuneCountInString(text) > MinBulletLength
	return ok
}

// isDateFragment reports whether a line is only a date or date range.
func isDateFragment(text string) (ok bool) {
	t := strings.TrimSpace(NormalizeDashes(text))
	ok = yearRangePattern.MatchString(t) || dateFragmentPattern.MatchString(t)
	return ok
}

// summaryLine reports whether a summary-section line should be kept.
func summaryLine(text string) (ok bool) {
	if isDateFragment(text) {
		return ok
	}
	ok = utf8.RuneCountInString(text) > MinSummaryLineLength
	return ok
}
