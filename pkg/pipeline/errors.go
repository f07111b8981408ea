package pipeline

import "fmt"

// Stage names one step of a tailoring run.
type Stage string

const (
	// StageAnalyze derives a JDAnalysis from the job description.
	StageAnalyze Stage = "analyze"
	// StageMatch selects impact statements for the analysis.
	StageMatch Stage = "match"
	// StageGenerate produces the three documents.
	StageGenerate Stage = "generate"
	// StageParse recovers structure from the generated resume.
	StageParse Stage = "parse"
	// StagePersist stores the completed analysis.
	StagePersist Stage = "persist"
)

// Stages lists every stage in execution order.
func Stages() (stages []Stage) {
	stages = []Stage{StageAnalyze, StageMatch, StageGenerate, StageParse, StagePersist}
	return stages
}

// StageError reports which stage failed. The underlying error is one of the
// llm error types, a store error, or a context error.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Message is the generic retry text shown to users for a failed stage.
func (e *StageError) Message() (message string) {
	switch e.Stage {
	case StageAnalyze:
		message = "Failed to analyze the job description. Please try again."
	case StageMatch:
		message = "Failed to match your experience. Please try again."
	case StageGenerate:
		message = "Failed to generate documents. Please try again."
	case StagePersist:
		message = "Failed to save the analysis. Please try again."
	default:
		message = "Something went wrong. Please try again."
	}
	return message
}

func stageError(stage Stage, err error) (wrapped error) {
	if err == nil {
		return wrapped
	}
	wrapped = &StageError{Stage: stage, Err: err}
	return wrapped
}
