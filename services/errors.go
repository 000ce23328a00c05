package services

import (
	"errors"
	"fmt"
)

var (
	ErrUploadInProgress = errors.New("an upload is already running for this session")
	ErrSessionNotFound  = errors.New("dashboard session not found")
	ErrEmptyQuestion    = errors.New("question is empty")
)

// FetchError reports a failed read from the record access layer.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.Source, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports upload content that could not be decoded.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s upload: %v", e.Format, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// FormatError reports an upload whose extension has no parser.
type FormatError struct {
	FileName string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported training file %q: expected .json or .csv", e.FileName)
}

// InsertError reports the record that stopped an ingestion batch. Records
// before Index were persisted and stay persisted.
type InsertError struct {
	Index     int
	Persisted int
	Err       error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("insert record %d (%d persisted): %v", e.Index, e.Persisted, e.Err)
}
func (e *InsertError) Unwrap() error { return e.Err }
