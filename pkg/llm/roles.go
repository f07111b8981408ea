package llm

import (
	"strings"
	"unicode"
)

// Role levels accepted in a JDAnalysis.
const (
	RoleLevelEntry     = "entry"
	RoleLevelMid       = "mid"
	RoleLevelSenior    = "senior"
	RoleLevelDirector  = "director"
	RoleLevelExecutive = "executive"
)

// Checked in order; the first level with a matching word wins.
var roleLevelWords = []struct {
	level string
	words []string
}{
	{RoleLevelExecutive, []string{"executive", "exec", "cto", "ceo", "cio", "chief", "vp", "svp", "evp", "vice", "c-level"}},
	{RoleLevelDirector, []string{"director", "head"}},
	{RoleLevelSenior, []string{"senior", "sr", "staff", "principal", "lead"}},
	{RoleLevelEntry, []string{"entry", "junior", "jr", "intern", "graduate", "associate"}},
	{RoleLevelMid, []string{"mid", "intermediate"}},
}

// NormalizeRoleLevel maps a free-form level onto the fixed vocabulary.
// Unrecognized values fall back to mid.
func NormalizeRoleLevel(level string) (normalized string) {
	lower := strings.ToLower(strings.TrimSpace(level))

	words := make(map[string]bool)
	for _, word := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	}) {
		words[word] = true
	}

	for _, candidate := range roleLevelWords {
		for _, word := range candidate.words {
			if words[word] {
				normalized = candidate.level
				return normalized
			}
		}
	}

	normalized = RoleLevelMid
	return normalized
}
