package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/viewdb/internal/metrics"
	"github.com/roach88/viewdb/internal/record"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Selection rejected or update failed
	ExitCommandError = 2 // Command error (bad flags, unreadable input, etc.)
)

// Error codes reported in CLI responses.
const (
	ErrCodeGeneric   = "E001" // Generic/unknown error
	ErrCodeUsage     = "E002" // Bad flag or argument
	ErrCodeLoad      = "E003" // Record set could not be loaded
	ErrCodeCondition = "E004" // Condition could not be parsed or compiled
	ErrCodeBorrow    = "E005" // Selection rejected by the aliasing rules
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose and diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// RecordsResult is the JSON payload for commands that print records.
type RecordsResult struct {
	Count   int               `json:"count"`
	Total   int               `json:"total"`
	Updated *int              `json:"updated,omitempty"`
	Records []json.RawMessage `json:"records,omitempty"`
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Records prints records as canonical JSON, one per line in text mode,
// followed by summary. In JSON mode result.Records is filled in.
func (f *OutputFormatter) Records(records []record.Object, result RecordsResult, summary string, countOnly bool) error {
	encoded := make([]json.RawMessage, 0, len(records))
	if !countOnly {
		for _, r := range records {
			line, err := record.MarshalCanonical(r)
			if err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
			encoded = append(encoded, line)
		}
	}

	if f.Format == "json" {
		if !countOnly {
			result.Records = encoded
		}
		return f.Success(result)
	}

	for _, line := range encoded {
		if _, err := fmt.Fprintf(f.Writer, "%s\n", line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(f.Writer, summary)
	return err
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// printMetrics writes every gathered sample as `name{labels} value`, sorted.
func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	snap, err := metrics.Snapshot(g)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to gather metrics", err)
	}
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s %g\n", k, snap[k])
	}
	return nil
}
