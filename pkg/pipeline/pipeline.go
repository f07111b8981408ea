// Package pipeline runs the staged tailoring flow: analyze, match, generate,
// parse and persist. No stage runs on a failed predecessor and nothing is
// persisted unless every document was generated.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikogura/career-tailor/pkg/llm"
	"github.com/nikogura/career-tailor/pkg/matching"
	"github.com/nikogura/career-tailor/pkg/repository"
	"github.com/nikogura/career-tailor/pkg/resume"
	"github.com/nikogura/career-tailor/pkg/scorer"
	"github.com/nikogura/career-tailor/pkg/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Assistant is the model-backed half of the pipeline. *llm.Client satisfies it.
type Assistant interface {
	AnalyzeJD(ctx context.Context, jobDescription string) (analysis llm.JDAnalysis, err error)
	MatchRepository(ctx context.Context, analysis llm.JDAnalysis, repo repository.Repository) (response llm.MatchResponse, err error)
	GenerateDocument(ctx context.Context, docType llm.DocumentType, analysis llm.JDAnalysis, blocks []llm.MatchedBlock, repo repository.Repository) (text string, err error)
}

// Options tune matching and make runs reproducible in tests.
type Options struct {
	// MinRelevance drops matched statements scoring below it. Zero keeps all.
	MinRelevance int
	// RepairCoverage adds statements for positions the model skipped.
	RepairCoverage bool
	// StatementsPerMissingPosition bounds what RepairCoverage adds per position.
	StatementsPerMissingPosition int
	// OnStage is called as each stage starts.
	OnStage func(stage Stage)
	Now     func() time.Time
	NewID   func() string
}

// Pipeline runs tailoring sessions against one repository.
type Pipeline struct {
	assistant Assistant
	repo      repository.Repository
	analyses  store.AnalysisStore
	checker   *scorer.Scorer
	logger    *logrus.Logger
	opts      Options
}

// MatchResult is the output of the match stage.
type MatchResult struct {
	Blocks   []llm.MatchedBlock `json:"matched_blocks"`
	Summary  string             `json:"summary"`
	Coverage matching.Report    `json:"coverage"`
}

// Documents holds the three generated documents.
type Documents struct {
	Resume        string `json:"resume"`
	CoverLetter   string `json:"cover_letter"`
	StrategyBrief string `json:"strategy_brief"`
}

// Result is a completed run.
type Result struct {
	Analysis store.Analysis      `json:"analysis"`
	Parsed   resume.ParsedResume `json:"parsed_resume"`
	Coverage matching.Report     `json:"coverage"`
	Fidelity scorer.Report       `json:"fidelity"`
	Saved    bool                `json:"saved"`
}

// New creates a pipeline. analyses may be nil, in which case Run does not persist.
func New(assistant Assistant, repo repository.Repository, analyses store.AnalysisStore, logger *logrus.Logger, opts Options) (p *Pipeline) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.OnStage == nil {
		opts.OnStage = func(Stage) {}
	}

	p = &Pipeline{
		assistant: assistant,
		repo:      repo,
		analyses:  analyses,
		checker:   scorer.NewScorer(repo),
		logger:    logger,
		opts:      opts,
	}

	return p
}

// Repository returns the repository the pipeline matches against.
func (p *Pipeline) Repository() (repo repository.Repository) {
	return p.repo
}

// Analyze derives a JDAnalysis from jobDescription.
func (p *Pipeline) Analyze(ctx context.Context, jobDescription string) (analysis llm.JDAnalysis, err error) {
	p.opts.OnStage(StageAnalyze)
	started := time.Now()

	analysis, err = p.assistant.AnalyzeJD(ctx, jobDescription)
	if err != nil {
		err = stageError(StageAnalyze, err)
		analysis = llm.JDAnalysis{}
		return analysis, err
	}

	p.logger.WithFields(logrus.Fields{
		"stage":      StageAnalyze,
		"role_title": analysis.RoleTitle,
		"role_level": analysis.RoleLevel,
		"duration":   time.Since(started).String(),
	}).Debug("stage complete")

	return analysis, err
}

// Match selects impact statements for analysis and applies the configured
// relevance filter and coverage repair.
func (p *Pipeline) Match(ctx context.Context, analysis llm.JDAnalysis) (result MatchResult, err error) {
	p.opts.OnStage(StageMatch)
	started := time.Now()

	var response llm.MatchResponse
	response, err = p.assistant.MatchRepository(ctx, analysis, p.repo)
	if err != nil {
		err = stageError(StageMatch, err)
		return result, err
	}

	blocks := response.MatchedBlocks
	if p.opts.MinRelevance > 0 {
		blocks = matching.FilterByScore(blocks, p.opts.MinRelevance)
	}

	var report matching.Report
	if p.opts.RepairCoverage {
		blocks, report = matching.Repair(blocks, p.repo, p.opts.StatementsPerMissingPosition)
	} else {
		report = matching.Check(blocks, p.repo)
	}

	if len(blocks) == 0 {
		err = stageError(StageMatch, errors.New("no impact statements matched the job description"))
		return result, err
	}

	fields := logrus.Fields{
		"stage":    StageMatch,
		"matched":  len(blocks),
		"duration": time.Since(started).String(),
	}
	if !report.Complete() {
		fields["missing_positions"] = strings.Join(report.MissingPositions, ",")
		fields["unknown_positions"] = strings.Join(report.UnknownPositions, ",")
		p.logger.WithFields(fields).Warn("matched statements do not cover the repository")
	} else {
		p.logger.WithFields(fields).Debug("stage complete")
	}

	result = MatchResult{
		Blocks:   blocks,
		Summary:  response.Summary,
		Coverage: report,
	}

	return result, err
}

// Generate produces the three documents concurrently. Either all three are
// returned or none are.
func (p *Pipeline) Generate(ctx context.Context, analysis llm.JDAnalysis, blocks []llm.MatchedBlock) (docs Documents, err error) {
	p.opts.OnStage(StageGenerate)
	started := time.Now()

	types := llm.DocumentTypes()
	texts := make([]string, len(types))

	g, gCtx := errgroup.WithContext(ctx)
	for i, docType := range types {
		i, docType := i, docType
		g.Go(func() (genErr error) {
			var text string
			text, genErr = p.assistant.GenerateDocument(gCtx, docType, analysis, blocks, p.repo)
			if genErr != nil {
				genErr = errors.Wrapf(genErr, "%s generation failed", docType)
				return genErr
			}
			texts[i] = text
			return genErr
		})
	}

	err = g.Wait()
	if err != nil {
		err = stageError(StageGenerate, err)
		return docs, err
	}

	docs = Documents{
		Resume:        texts[0],
		CoverLetter:   texts[1],
		StrategyBrief: texts[2],
	}

	p.logger.WithFields(logrus.Fields{
		"stage":    StageGenerate,
		"duration": time.Since(started).String(),
	}).Debug("stage complete")

	return docs, err
}

// GenerateOne produces a single document, for regenerating one output of an
// earlier run.
func (p *Pipeline) GenerateOne(ctx context.Context, docType llm.DocumentType, analysis llm.JDAnalysis, blocks []llm.MatchedBlock) (text string, err error) {
	p.opts.OnStage(StageGenerate)

	text, err = p.assistant.GenerateDocument(ctx, docType, analysis, blocks, p.repo)
	if err != nil {
		err = stageError(StageGenerate, err)
		text = ""
		return text, err
	}

	return text, err
}

// Parse recovers the structure of a generated resume. It never fails.
func (p *Pipeline) Parse(resumeMarkdown string) (parsed resume.ParsedResume) {
	p.opts.OnStage(StageParse)
	parsed = resume.Parse(resumeMarkdown)
	return parsed
}

// Score checks the parsed resume and matched statements against the
// repository. A low score is logged, never fatal.
func (p *Pipeline) Score(parsed resume.ParsedResume, blocks []llm.MatchedBlock) (report scorer.Report) {
	report = p.checker.Score(parsed, blocks)

	fields := logrus.Fields{
		"overall":    report.Overall,
		"violations": len(report.Violations),
	}
	if !report.Passed() {
		p.logger.WithFields(fields).Warn("generated resume strays from the repository")
		return report
	}
	p.logger.WithFields(fields).Debug("fidelity scored")

	return report
}

// Persist stores a completed analysis. It is a no-op without a store.
func (p *Pipeline) Persist(ctx context.Context, analysis store.Analysis) (saved bool, err error) {
	if p.analyses == nil {
		return saved, err
	}

	p.opts.OnStage(StagePersist)

	err = p.analyses.Append(ctx, analysis)
	if err != nil {
		err = stageError(StagePersist, err)
		return saved, err
	}

	p.logger.WithFields(logrus.Fields{
		"stage": StagePersist,
		"id":    analysis.ID,
	}).Debug("stage complete")

	saved = true
	return saved, err
}

// Assemble builds the Analysis record for a finished session.
func (p *Pipeline) Assemble(jobDescription string, analysis llm.JDAnalysis, match MatchResult, docs Documents) (record store.Analysis) {
	record = store.Analysis{
		ID:             p.opts.NewID(),
		Date:           p.opts.Now().UTC(),
		JobTitle:       analysis.RoleTitle,
		Company:        analysis.Company,
		JobDescription: jobDescription,
		JDAnalysis:     analysis,
		MatchedBlocks:  match.Blocks,
		MatchSummary:   match.Summary,
		Resume:         docs.Resume,
		CoverLetter:    docs.CoverLetter,
		StrategyBrief:  docs.StrategyBrief,
	}
	return record
}

// Run executes every stage in order and stops at the first failure.
func (p *Pipeline) Run(ctx context.Context, jobDescription string) (result Result, err error) {
	var analysis llm.JDAnalysis
	analysis, err = p.Analyze(ctx, jobDescription)
	if err != nil {
		return result, err
	}

	var match MatchResult
	match, err = p.Match(ctx, analysis)
	if err != nil {
		return result, err
	}

	var docs Documents
	docs, err = p.Generate(ctx, analysis, match.Blocks)
	if err != nil {
		return result, err
	}

	parsed := p.Parse(docs.Resume)
	fidelity := p.Score(parsed, match.Blocks)
	record := p.Assemble(jobDescription, analysis, match, docs)

	var saved bool
	saved, err = p.Persist(ctx, record)
	if err != nil {
		return result, err
	}

	result = Result{
		Analysis: record,
		Parsed:   parsed,
		Coverage: match.Coverage,
		Fidelity: fidelity,
		Saved:    saved,
	}

	return result, err
}
