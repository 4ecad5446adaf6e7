package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCandidates means collection produced nothing to curate.
	ErrNoCandidates = errors.New("no candidates collected")
	// ErrNotFound is returned by stores for absent documents.
	ErrNotFound = errors.New("document not found")
	// ErrTaskTimeout marks a task stopped at the time ceiling.
	ErrTaskTimeout = errors.New("task exceeded time ceiling")
	// ErrTaskCrash marks a task that terminated abnormally.
	ErrTaskCrash = errors.New("task crashed")
	// ErrRunInProgress is returned when a run is requested while another is active.
	ErrRunInProgress = errors.New("daily run already in progress")
	// ErrMissingQuote is returned when a symbol lacks a price or previous close.
	ErrMissingQuote = errors.New("quote data missing")
)

// SourceFetchError reports a source that could not be read. It is absorbed by collection.
type SourceFetchError struct {
	Source string
	Err    error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("fetch source %s: %v", e.Source, e.Err)
}

func (e *SourceFetchError) Unwrap() error { return e.Err }

// JudgeError reports an unusable judge response. It fails the section.
type JudgeError struct {
	Section string
	Reason  string
	Err     error
}

func (e *JudgeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("judge %s: %s: %v", e.Section, e.Reason, e.Err)
	}
	return fmt.Sprintf("judge %s: %s", e.Section, e.Reason)
}

func (e *JudgeError) Unwrap() error { return e.Err }

// EnrichmentError reports a failed enrichment attempt for one item.
type EnrichmentError struct {
	Field    string
	Strategy string
	Err      error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enrich %s via %s: %v", e.Field, e.Strategy, e.Err)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }

// StoreError reports a failed write or read against the document store.
type StoreError struct {
	Path DocumentPath
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
