package scorer

// Rule represents a scoring rule.
type Rule struct {
	Name        string
	Category    string // anti_fabrication, accuracy
	Severity    string // critical, major, minor
	Description string
	Weight      int // Points deducted per violation
}

// Rule names.
const (
	RuleAlteredStatement = "ALTERED_STATEMENT"
	RuleUnknownPosition  = "UNKNOWN_POSITION"
	RuleNumberNotInRepo  = "NUMBER_NOT_IN_REPOSITORY"
	RuleUnknownCompany   = "UNKNOWN_COMPANY"
	RuleTitleMismatch    = "TITLE_MISMATCH"
)

//nolint:gochecknoglobals // Scoring configuration constants
var ScoringRules = map[string]Rule{
	// Anti-Fabrication Rules
	RuleAlteredStatement: {
		Name:        RuleAlteredStatement,
		Category:    "anti_fabrication",
		Severity:    "critical",
		Description: "Matched statement text is not a verbatim copy of a repository statement",
		Weight:      20,
	},
	RuleNumberNotInRepo: {
		Name:        RuleNumberNotInRepo,
		Category:    "anti_fabrication",
		Severity:    "critical",
		Description: "Resume bullet cites a number that appears nowhere in the repository",
		Weight:      25,
	},

	// Accuracy Rules
	RuleUnknownPosition: {
		Name:        RuleUnknownPosition,
		Category:    "accuracy",
		Severity:    "major",
		Description: "Matched statement references a position id missing from the repository",
		Weight:      15,
	},
	RuleUnknownCompany: {
		Name:        RuleUnknownCompany,
		Category:    "accuracy",
		Severity:    "major",
		Description: "Resume position names a company not in the repository",
		Weight:      15,
	},
	RuleTitleMismatch: {
		Name:        RuleTitleMismatch,
		Category:    "accuracy",
		Severity:    "minor",
		Description: "Resume position title differs from every repository title",
		Weight:      5,
	},
}
