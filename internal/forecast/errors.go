package forecast

import (
	"errors"
	"fmt"
)

// ErrKind classifies where a forecast run failed.
type ErrKind string

const (
	ErrUpstream   ErrKind = "upstream_data_unavailable"
	ErrFeature    ErrKind = "feature_derivation"
	ErrPrediction ErrKind = "prediction"
	ErrScaling    ErrKind = "scaling"
)

// StepError is returned by Engine.Run when a step of the recursive loop
// fails. It carries the failing step name and iteration so callers can
// log and count failures precisely. A run never returns partial results.
type StepError struct {
	Kind      ErrKind
	Step      string
	Iteration int
	Err       error
}

func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("forecast %s at step %q iteration %d: %v", e.Kind, e.Step, e.Iteration, e.Err)
	}
	return fmt.Sprintf("forecast %s at step %q iteration %d", e.Kind, e.Step, e.Iteration)
}

func (e *StepError) Unwrap() error { return e.Err }

// IsKind reports whether err wraps a StepError of the given kind.
func IsKind(err error, kind ErrKind) bool {
	var se *StepError
	return errors.As(err, &se) && se.Kind == kind
}

func upstreamErr(step string, err error) *StepError {
	return &StepError{Kind: ErrUpstream, Step: step, Err: err}
}

func featureErr(step string, iter int, err error) *StepError {
	return &StepError{Kind: ErrFeature, Step: step, Iteration: iter, Err: err}
}

func predictionErr(step string, iter int, err error) *StepError {
	return &StepError{Kind: ErrPrediction, Step: step, Iteration: iter, Err: err}
}

func scalingErr(step string, iter int, err error) *StepError {
	return &StepError{Kind: ErrScaling, Step: step, Iteration: iter, Err: err}
}
