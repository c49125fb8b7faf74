package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Check failure (invariant violations, invalid dataset, failed scenario)
	ExitCommandError = 2 // Command error (bad config, unreadable file, SQL error)
)

// Error codes reported in CLI responses.
const (
	ErrCodeGeneric   = "E001" // Generic/unknown error
	ErrCodeConfig    = "E002" // Config file invalid or unreadable
	ErrCodeDataset   = "E003" // Dataset invalid or unreadable
	ErrCodeStore     = "E004" // Assignment store failure
	ErrCodeQuery     = "E005" // SQL query failed
	ErrCodeViolation = "E006" // Assignment invariants violated
	ErrCodeScenario  = "E007" // One or more check scenarios failed
)

// ExitError carries the process exit code for a failed command. main
// prints nothing for it: the command has already reported the failure.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError caused by err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps err to a process exit code. Errors that are not
// ExitErrors count as failures.
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

// OutputFormatter writes command results as text or as a JSON CLIResponse.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; falls back to Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error half of a CLIResponse.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (f *OutputFormatter) json() bool { return f.Format == "json" }

func (f *OutputFormatter) respond(resp CLIResponse) error {
	return json.NewEncoder(f.Writer).Encode(resp)
}

// Result writes data. In text mode text renders it; a nil text prints data
// with fmt.Println.
func (f *OutputFormatter) Result(data any, text func(w io.Writer) error) error {
	switch {
	case f.json():
		return f.respond(CLIResponse{Status: "ok", Data: data})
	case text != nil:
		return text(f.Writer)
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes an error response. Text mode shows details only with -v.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.json() {
		return f.respond(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	if _, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message); err != nil {
		return err
	}
	if f.Verbose && details != nil {
		_, err := fmt.Fprintf(f.Writer, "Details: %v\n", details)
		return err
	}
	return nil
}

// Fail writes err through Error and returns the ExitError for it, so a
// command can end with `return f.Fail(...)`.
func (f *OutputFormatter) Fail(exitCode int, code string, err error, details any) error {
	if writeErr := f.Error(code, err.Error(), details); writeErr != nil {
		return writeErr
	}
	return WrapExitError(exitCode, code, err)
}

// VerboseLog writes a diagnostic line when -v is set. It goes to
// ErrWriter so JSON on Writer stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
	}
}

// GetErrWriter returns ErrWriter, or Writer when it is unset.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
