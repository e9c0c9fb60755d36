package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrLLMUnavailable = errors.New("llm: not configured")
)

// ResolutionError means a location or date could not be normalized.
type ResolutionError struct {
	What  string // "IATA code" | "date"
	Role  string // e.g. "origin city", "check-in date"
	Input string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("Could not find %s for %s: %s", e.What, e.Role, e.Input)
}

// ValidationError is a resolved request that is still unusable (bad range, bad count).
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// UpstreamError is a fault or an empty required dataset from a travel-data provider.
type UpstreamError struct {
	Provider string
	Detail   string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Provider == "" {
		return e.Detail
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Detail)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// EmptyDatasetError is an upstream success that lacks data the operation requires.
type EmptyDatasetError struct{ Msg string }

func (e *EmptyDatasetError) Error() string { return e.Msg }

func (e *EmptyDatasetError) Is(target error) bool { return target == ErrNotFound }
