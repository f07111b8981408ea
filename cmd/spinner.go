package cmd

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nikogura/career-tailor/pkg/pipeline"
)

// spinner provides a simple text-based progress indicator.
type spinner struct {
	message string
	stop    chan bool
	done    chan bool
	mu      sync.Mutex
	active  bool
}

func newSpinner(message string) (s *spinner) {
	s = &spinner{
		message: message,
		stop:    make(chan bool),
		done:    make(chan bool),
	}
	return s
}

func (s *spinner) start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	go func() {
		chars := []string{"|", "/", "-", "\\"}
		i := 0
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		fmt.Printf("%s ", s.message)
		for {
			select {
			case <-s.stop:
				fmt.Printf("\r%s\r", strings.Repeat(" ", len(s.message)+2))
				s.done <- true
				return
			case <-ticker.C:
				fmt.Printf("\r%s %s", s.message, chars[i%len(chars)])
				i++
			}
		}
	}()
}

func (s *spinner) stopSpinner() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.stop <- true
	<-s.done

	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// stageProgress reports pipeline stages on the terminal: a spinner per model
// stage, or plain lines in verbose mode.
type stageProgress struct {
	current *spinner
	last    pipeline.Stage
}

func stageMessage(stage pipeline.Stage) (message string) {
	switch stage {
	case pipeline.StageAnalyze:
		message = "Analyzing job description with Claude API..."
	case pipeline.StageMatch:
		message = "Matching your experience..."
	case pipeline.StageGenerate:
		message = "Generating resume, cover letter and strategy brief..."
	case pipeline.StageParse:
		message = "Parsing generated resume..."
	case pipeline.StagePersist:
		message = "Saving analysis..."
	default:
		message = string(stage) + "..."
	}
	return message
}

// onStage is passed to pipeline.Options.OnStage.
func (p *stageProgress) onStage(stage pipeline.Stage) {
	p.finish(true)
	p.last = stage

	if getVerbose() {
		fmt.Println(stageMessage(stage))
		return
	}

	p.current = newSpinner(stageMessage(stage))
	p.current.start()
}

// finish stops the spinner for the running stage and marks it complete when ok.
func (p *stageProgress) finish(ok bool) {
	if p.current == nil {
		return
	}

	p.current.stopSpinner()
	p.current = nil

	if ok {
		fmt.Printf("✓ %s complete\n", strings.ToUpper(string(p.last[:1]))+string(p.last[1:]))
	}
}
