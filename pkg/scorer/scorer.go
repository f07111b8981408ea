// Package scorer checks generated output against the experience repository
// and scores how faithfully it sticks to recorded facts.
package scorer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/nikogura/career-tailor/pkg/llm"
	"github.com/nikogura/career-tailor/pkg/repository"
	"github.com/nikogura/career-tailor/pkg/resume"
)

// PassingScore is the lowest score considered acceptable.
const PassingScore = 70

//nolint:gochecknoglobals // compiled once
var numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)*`)

// Violation is one broken rule.
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// Report is the fidelity score of one run.
type Report struct {
	AntiFabrication int         `json:"anti_fabrication"`
	Accuracy        int         `json:"accuracy"`
	Overall         int         `json:"overall"`
	Violations      []Violation `json:"violations"`
}

// Passed reports whether the overall score meets PassingScore.
func (r *Report) Passed() (ok bool) {
	ok = r.Overall >= PassingScore
	return ok
}

// Scorer calculates fidelity scores against one repository.
type Scorer struct {
	repo    repository.Repository
	numbers map[string]bool
}

// NewScorer creates a scorer for repo.
func NewScorer(repo repository.Repository) (scorer *Scorer) {
	scorer = &Scorer{
		repo:    repo,
		numbers: repositoryNumbers(repo),
	}
	return scorer
}

// Score checks matched blocks and the parsed resume. Anti-fabrication weighs
// 70% of the overall score and accuracy 30%.
func (s *Scorer) Score(parsed resume.ParsedResume, blocks []llm.MatchedBlock) (report Report) {
	violations := make([]Violation, 0)
	violations = append(violations, s.checkBlocks(blocks)...)
	violations = append(violations, s.checkPositions(parsed.Positions)...)

	antiFab := 100
	accuracy := 100
	for _, v := range violations {
		rule := ScoringRules[v.Rule]
		switch rule.Category {
		case "anti_fabrication":
			antiFab -= rule.Weight
		case "accuracy":
			accuracy -= rule.Weight
		}
	}
	antiFab = floor(antiFab)
	accuracy = floor(accuracy)

	report = Report{
		AntiFabrication: antiFab,
		Accuracy:        accuracy,
		Overall:         int(float64(antiFab)*0.70 + float64(accuracy)*0.30),
		Violations:      violations,
	}
	return report
}

func (s *Scorer) checkBlocks(blocks []llm.MatchedBlock) (violations []Violation) {
	for _, b := range blocks {
		position, ok := s.repo.PositionByID(b.PositionID)
		if !ok {
			violations = append(violations, newViolation(RuleUnknownPosition, fmt.Sprintf("position %q", b.PositionID)))
			continue
		}

		if !hasStatement(position, b) {
			violations = append(violations, newViolation(RuleAlteredStatement, fmt.Sprintf("%s: %q", b.PositionID, b.StatementText)))
		}
	}
	return violations
}

func (s *Scorer) checkPositions(positions []resume.ParsedPosition) (violations []Violation) {
	for _, p := range positions {
		if p.Company != "" && !s.knownCompany(p.Company) {
			violations = append(violations, newViolation(RuleUnknownCompany, p.Company))
		}
		if _, ok := s.repo.PositionByTitle(p.Title); !ok && !s.titleContained(p.Title) {
			violations = append(violations, newViolation(RuleTitleMismatch, p.Title))
		}

		for _, bullet := range p.Bullets {
			missing := s.unknownNumbers(bullet)
			if len(missing) > 0 {
				violations = append(violations, newViolation(RuleNumberNotInRepo, fmt.Sprintf("%s in %q", strings.Join(missing, ", "), bullet)))
			}
		}
	}
	return violations
}

func (s *Scorer) knownCompany(company string) (ok bool) {
	want := strings.ToLower(strings.TrimSpace(company))
	for _, p := range s.repo.Positions {
		have := strings.ToLower(p.Company)
		if strings.Contains(have, want) || strings.Contains(want, have) {
			ok = true
			return ok
		}
	}
	return ok
}

func (s *Scorer) titleContained(title string) (ok bool) {
	want := strings.ToLower(strings.TrimSpace(title))
	if want == "" {
		return ok
	}
	for _, p := range s.repo.Positions {
		have := strings.ToLower(p.Title)
		if strings.Contains(have, want) || strings.Contains(want, have) {
			ok = true
			return ok
		}
	}
	return ok
}

func (s *Scorer) unknownNumbers(text string) (missing []string) {
	for _, n := range numberPattern.FindAllString(text, -1) {
		if !s.numbers[normalizeNumber(n)] {
			missing = append(missing, n)
		}
	}
	return missing
}

// Lessons summarizes a report for the user.
func Lessons(report Report) (lessons []string) {
	lessons = []string{}

	counts := make(map[string]int)
	for _, v := range report.Violations {
		counts[v.Rule]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rule := ScoringRules[name]
		lessons = append(lessons, fmt.Sprintf("%s (%d): %s", name, counts[name], rule.Description))
	}

	if !report.Passed() {
		lessons = append(lessons, "Overall fidelity below acceptable threshold - review the documents before sending")
	}

	return lessons
}

func newViolation(rule, detail string) (v Violation) {
	v = Violation{
		Rule:     rule,
		Severity: ScoringRules[rule].Severity,
		Detail:   detail,
	}
	return v
}

func hasStatement(position repository.Position, block llm.MatchedBlock) (ok bool) {
	want := normalizeText(block.StatementText)
	for _, st := range position.ImpactStatements {
		if block.StatementID != "" && st.ID != block.StatementID {
			continue
		}
		if normalizeText(st.Text) == want {
			ok = true
			return ok
		}
	}
	return ok
}

func repositoryNumbers(repo repository.Repository) (numbers map[string]bool) {
	numbers = make(map[string]bool)
	add := func(text string) {
		for _, n := range numberPattern.FindAllString(text, -1) {
			numbers[normalizeNumber(n)] = true
		}
	}

	for _, p := range repo.Positions {
		add(p.Title)
		add(p.Company)
		add(p.Context)
		add(p.StartDate)
		if p.EndDate != nil {
			add(*p.EndDate)
		}
		for _, c := range p.Categories {
			for _, b := range c.Blocks {
				add(b)
			}
		}
		for _, st := range p.ImpactStatements {
			add(st.Text)
		}
	}
	return numbers
}

func normalizeNumber(n string) (normalized string) {
	normalized = strings.ReplaceAll(n, ",", "")
	normalized = strings.TrimLeft(normalized, "0")
	if normalized == "" || strings.HasPrefix(normalized, ".") {
		normalized = "0" + normalized
	}
	return normalized
}

func normalizeText(text string) (normalized string) {
	normalized = strings.Join(strings.Fields(resume.NormalizeDashes(text)), " ")
	return normalized
}

func floor(score int) (floored int) {
	floored = score
	if floored < 0 {
		floored = 0
	}
	return floored
}
