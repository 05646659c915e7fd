package model

import "fmt"

// The three error classes are terminal for the operation in progress.
// None are retried automatically; retry policy belongs to the caller.

// IngestionError reports a document that could not be decoded into
// pages or rows. Ingestion of that document is aborted as a whole;
// other documents are unaffected.
type IngestionError struct {
	Filename string
	Reason   string
	Err      error
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingest %s: %s: %v", e.Filename, e.Reason, e.Err)
	}
	return fmt.Sprintf("ingest %s: %s", e.Filename, e.Reason)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// RetrievalError reports a modality store that was unreachable or
// corrupted during a query. The turn fails rather than silently
// returning partial results, so callers can tell "no relevant content"
// apart from "retrieval broken".
type RetrievalError struct {
	Store SourceStore
	Err   error
}

func (e *RetrievalError) Error() string {
	if e.Store == "" {
		return fmt.Sprintf("retrieval failed: %v", e.Err)
	}
	return fmt.Sprintf("retrieval failed on %s store: %v", e.Store, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// CompositionError reports a failure of the answer-composition
// service. The turn ends with no partial answer surfaced.
type CompositionError struct {
	State string // reasoning-loop state in which the failure occurred
	Err   error
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("answer composition failed in %s: %v", e.State, e.Err)
}

func (e *CompositionError) Unwrap() error { return e.Err }
