package dedup

import "fmt"

// InputShapeError reports input that is not a record list: a top-level
// argument or a batch element that does not decode to a JSON array of
// objects. It is surfaced immediately and never retried.
type InputShapeError struct {
	// Index is the offending batch element, or -1 for a top-level input.
	Index int

	Msg string
}

func (e *InputShapeError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("batch element %d: %s", e.Index, e.Msg)
	}
	return e.Msg
}

// ModelResponseError reports a failure of the model-assisted path: the
// external call failed, or the response was not JSON, not an array, or
// contained malformed records. Hybrid mode recovers from it locally by
// falling back to rules; model-only mode propagates it to the caller.
type ModelResponseError struct {
	Reason string
	Err    error
}

func (e *ModelResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model dedup failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("model dedup failed: %s", e.Reason)
}

func (e *ModelResponseError) Unwrap() error { return e.Err }
