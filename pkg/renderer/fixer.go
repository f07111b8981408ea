package renderer

import (
	"regexp"
	"strings"

	"github.com/nikogura/career-tailor/pkg/resume"
)

// FixPattern defines a search-and-fix pattern applied to generated text.
type FixPattern struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// Fixer cleans generated documents before they are written.
type Fixer struct {
	patterns []FixPattern
}

// NewFixer creates a fixer with the default patterns.
func NewFixer() (fixer *Fixer) {
	fixer = &Fixer{
		patterns: buildPatterns(),
	}
	return fixer
}

// Apply unescapes literal newlines, strips emoji, replaces em and en dashes,
// and runs every pattern. It returns the names of the fixes that changed the text.
func (f *Fixer) Apply(text string) (fixed string, applied []string) {
	applied = []string{}
	fixed = text

	if unescaped := unescapeNewlines(fixed); unescaped != fixed {
		fixed = unescaped
		applied = append(applied, "Literal newlines")
	}

	if stripped := stripEmoji(fixed); stripped != fixed {
		fixed = stripped
		applied = append(applied, "Emoji")
	}

	if normalized := resume.NormalizeDashes(fixed); normalized != fixed {
		fixed = normalized
		applied = append(applied, "Dashes")
	}

	for _, pattern := range f.patterns {
		if pattern.Pattern.MatchString(fixed) {
			replaced := pattern.Pattern.ReplaceAllString(fixed, pattern.Replacement)
			if replaced != fixed {
				fixed = replaced
				applied = append(applied, pattern.Name)
			}
		}
	}

	return fixed, applied
}

// unescapeNewlines turns the two-character sequence \n into a newline.
func unescapeNewlines(text string) (unescaped string) {
	unescaped = strings.ReplaceAll(text, "\\n", "\n")
	return unescaped
}

// stripEmoji removes pictographs. LaTeX can't typeset them.
func stripEmoji(text string) (stripped string) {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		if r >= 0x1F300 && r <= 0x1FAFF { // pictographs, emoticons, transport, supplemental
			continue
		}
		if r >= 0x2600 && r <= 0x26FF { // miscellaneous symbols
			continue
		}
		if r >= 0x2700 && r <= 0x27BF { // dingbats
			continue
		}
		if r == 0xFE0F || r == 0x200D { // variation selector, zero-width joiner
			continue
		}
		b.WriteRune(r)
	}

	stripped = b.String()
	return stripped
}

func buildPatterns() (patterns []FixPattern) {
	patterns = []FixPattern{
		{
			Name:        "Wrapping code fence",
			Pattern:     regexp.MustCompile("(?s)^\\s*```(?:markdown|md)?[ \\t]*\\n(.*?)\\n```\\s*$"),
			Replacement: "$1",
		},
		{
			Name:        "Preamble",
			Pattern:     regexp.MustCompile(`(?i)\A\s*here(?: is|'s) (?:the|your|a) [^\n]*:[ \t]*\n+`),
			Replacement: "",
		},
		{
			Name:        "Targeted resume wording",
			Pattern:     regexp.MustCompile(`This is a targeted resume highlighting`),
			Replacement: `The resume submitted for this role highlights`,
		},
		{
			Name:        "Repeated spaces",
			Pattern:     regexp.MustCompile(`(\S)[ \t]{2,}`),
			Replacement: "$1 ",
		},
		{
			Name:        "Trailing whitespace",
			Pattern:     regexp.MustCompile(`(?m)[ \t]+$`),
			Replacement: "",
		},
	}

	return patterns
}
