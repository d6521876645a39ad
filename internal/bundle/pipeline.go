// Package bundle implements the artifact pipeline that packs the agent
// runtime and third-party tooling into nested installer outputs.
//
// Stages run strictly in order. A stage runs only when every declared
// input exists; the first missing input or failed action aborts the
// whole pipeline with no later stage attempted.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"time"
)

// Action produces the stage's output from its inputs.
type Action func(ctx context.Context, stage Stage) error

// Stage is one bundling step. Stages own no state beyond the files they
// declare.
type Stage struct {
	Name   string
	Inputs []string
	Output string
	Action Action
}

// MissingInputError reports a precondition failure: a declared input was
// absent when the stage was about to run.
type MissingInputError struct {
	Stage string
	Path  string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("stage %s: required input %s does not exist", e.Stage, e.Path)
}

// StageError reports a bundling action that ran and failed.
type StageError struct {
	Stage    string
	ExitCode int
	Err      error
}

func (e *StageError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("stage %s failed with exit code %d: %v", e.Stage, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Run executes stages in order, fail-fast. Each stage's inputs are
// checked immediately before its action; a prior stage's output thereby
// becomes an available input to the next.
func Run(ctx context.Context, stages []Stage) error {
	start := time.Now()
	log.Printf("[Build] Running %d stages...", len(stages))

	for i, stage := range stages {
		for _, input := range stage.Inputs {
			if _, err := os.Stat(input); err != nil {
				return &MissingInputError{Stage: stage.Name, Path: input}
			}
		}

		stageStart := time.Now()
		log.Printf("[Build] (%d/%d) %s -> %s", i+1, len(stages), stage.Name, stage.Output)

		if err := stage.Action(ctx, stage); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return &StageError{Stage: stage.Name, ExitCode: exitErr.ExitCode(), Err: err}
			}
			return &StageError{Stage: stage.Name, Err: err}
		}

		log.Printf("[Build] (%d/%d) %s completed in %v", i+1, len(stages), stage.Name,
			time.Since(stageStart).Round(time.Millisecond))
	}

	log.Printf("[Build] Pipeline completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

// ValidateChain checks that every stage after the first consumes some
// prior stage's output, so the dependency between the chains is encoded
// in the stage declarations rather than implied by ordering alone.
func ValidateChain(stages []Stage) error {
	produced := map[string]bool{}
	for i, stage := range stages {
		if i > 0 {
			consumesPrior := false
			for _, input := range stage.Inputs {
				if produced[input] {
					consumesPrior = true
					break
				}
			}
			if !consumesPrior {
				return fmt.Errorf("stage %s does not consume any prior stage's output", stage.Name)
			}
		}
		produced[stage.Output] = true
	}
	return nil
}
