package inventory

import "fmt"

// Stage names a pipeline stage for error reporting.
type Stage string

const (
	StageUpload     Stage = "upload"
	StageExtraction Stage = "extraction"
	StageValidation Stage = "validation"
	StagePricing    Stage = "pricing"
	StageSink       Stage = "sink"
)

// UploadError wraps a blob store failure.
type UploadError struct {
	Name  string
	Cause error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %q failed: %v", e.Name, e.Cause)
}

func (e *UploadError) Unwrap() error { return e.Cause }

// ExtractionError wraps a failure of the vision capability.
type ExtractionError struct {
	URI   string
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction for %s failed: %v", e.URI, e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// ValidationKind discriminates validation failures.
type ValidationKind string

const (
	// MalformedJSON means the extractor output was not parseable JSON.
	MalformedJSON ValidationKind = "malformed_json"
	// WrongShape means the JSON was not an array of objects.
	WrongShape ValidationKind = "wrong_shape"
	// BadItem means one element violated a per-field invariant.
	BadItem ValidationKind = "bad_item"
)

// ValidationError rejects extractor output with a precise diagnostic. A
// single bad element rejects the whole batch: a partial inventory would
// misrepresent total contents.
type ValidationError struct {
	Kind    ValidationKind
	Offset  int64  // byte offset for MalformedJSON
	Index   int    // element index for BadItem
	Field   string // offending field for BadItem
	Message string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MalformedJSON:
		return fmt.Sprintf("malformed JSON at offset %d: %s", e.Offset, e.Message)
	case WrongShape:
		return fmt.Sprintf("wrong shape: %s", e.Message)
	case BadItem:
		return fmt.Sprintf("bad item at index %d: %s %s", e.Index, e.Field, e.Message)
	default:
		return e.Message
	}
}

// SinkError wraps a tabular sink failure. It is reported alongside the table
// rather than discarding computed rows.
type SinkError struct {
	Cause error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink append failed: %v", e.Cause)
}

func (e *SinkError) Unwrap() error { return e.Cause }

// PipelineError is the typed result of an aborted run: the stage that failed
// plus the underlying cause.
type PipelineError struct {
	Stage Stage
	Cause error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline aborted at %s: %v", e.Stage, e.Cause)
}

func (e *PipelineError) Unwrap() error { return e.Cause }
