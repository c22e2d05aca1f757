package pipeline

import "fmt"

// PipelineError is the marker interface for pipeline errors.
type PipelineError interface {
	error
	IsPipelineError()
}

// ValidationError is returned by an operator constructor when its options
// are out of range. No element has been pulled from the source.
type ValidationError struct {
	Field string
	Value int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %d", e.Field, e.Value)
}

func (e *ValidationError) IsPipelineError() {}

// StageError is returned when a transform or predicate fails. Index is the
// 0-based position of the failing element in the stage's input.
type StageError struct {
	Index int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("element %d: %v", e.Index, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func (e *StageError) IsPipelineError() {}

// WorkerError is returned when a parallel worker fails on a chunk.
type WorkerError struct {
	Chunk int
	Err   error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker failed on chunk %d: %v", e.Chunk, e.Err)
}

func (e *WorkerError) Unwrap() error { return e.Err }

func (e *WorkerError) IsPipelineError() {}
