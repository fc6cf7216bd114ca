package model

import "fmt"

// ParsingError means one free-text mention could not be matched to any known
// reference pattern. Recovered by skipping the item; the raw text is
// preserved in the normalized state for audit.
type ParsingError struct {
	RawText string
	Reason  string
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("cannot parse reference from %q: %s", e.RawText, e.Reason)
}

// LookupError means an unknown requirement id was passed to the catalog.
// Recovered by marking the reference unresolved rather than crashing.
type LookupError struct {
	Ref string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("unknown requirement reference %q", e.Ref)
}

// ArbitrationError means the oracle failed or timed out for one requirement.
// Recovered via the deterministic fallback after bounded retries.
type ArbitrationError struct {
	RequirementID string
	Err           error
}

func (e *ArbitrationError) Error() string {
	return fmt.Sprintf("arbitration failed for %s: %v", e.RequirementID, e.Err)
}

func (e *ArbitrationError) Unwrap() error { return e.Err }

// PersistenceError means the state store failed after bounded retries.
// Surfaced as a pipeline failure for the affected contract only.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// PipelineError means a stage failed unexpectedly. The contract is marked
// failed; partial results up to the last completed stage are preserved.
type PipelineError struct {
	ContractID string
	Stage      string
	Err        error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed for contract %s at stage %s: %v", e.ContractID, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
