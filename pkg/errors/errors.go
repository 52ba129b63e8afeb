// Package errors provides coded errors for profilectl.
//
// Every failure surfaced to the operator carries a Code that identifies the
// failure class. Codes are stable, machine-parsable tokens: the CLI prints
// them on the final error line and maps them to process exit codes.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies a failure.
type Code string

const (
	// ErrCodeValidation indicates a bad input profile. Recoverable by fixing
	// the profile; never retried automatically.
	ErrCodeValidation Code = "VALIDATION_ERROR"

	// ErrCodeTemplate indicates a renderer/template mismatch. Always fatal;
	// points at an internal consistency bug, not at operator input.
	ErrCodeTemplate Code = "TEMPLATE_ERROR"

	// ErrCodeIO indicates a filesystem failure while writing artifacts.
	ErrCodeIO Code = "IO_ERROR"

	// ErrCodePatch indicates the values placeholder was missing after render.
	// Fatal: silently deploying an unpatched image reference would be worse.
	ErrCodePatch Code = "PATCH_ERROR"

	// ErrCodeMissingTool indicates a required external tool is absent.
	ErrCodeMissingTool Code = "MISSING_TOOL"

	// ErrCodeClusterStart indicates the local cluster failed to start.
	ErrCodeClusterStart Code = "CLUSTER_START_FAILED"

	// ErrCodeBuild indicates the external image build exited non-zero.
	ErrCodeBuild Code = "BUILD_FAILED"

	// ErrCodePush indicates the external image publish exited non-zero.
	// Kept distinct from ErrCodeBuild: the common causes differ (registry
	// auth vs. build context) and the operator self-serves different fixes.
	ErrCodePush Code = "PUSH_FAILED"

	// ErrCodeInstall indicates the chart install exited non-zero.
	ErrCodeInstall Code = "INSTALL_FAILED"

	// ErrCodeInterrupted indicates the run was aborted by an external signal
	// while an external process was in flight.
	ErrCodeInterrupted Code = "INTERRUPTED"

	// ErrCodeInternal indicates a bug in profilectl itself.
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Process exit codes for the CLI surface.
const (
	// ExitOK covers success and user-chosen abort.
	ExitOK = 0
	// ExitGeneration covers validation, render and write failures.
	ExitGeneration = 1
	// ExitMissingTool covers absent required external tools.
	ExitMissingTool = 2
	// ExitPipeline covers any pipeline-stage failure.
	ExitPipeline = 3
)

// Error is a coded error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message. Returns nil if err is nil.
func Wrap(code Code, message string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the Code from err, unwrapping as needed.
// Errors without a code report ErrCodeInternal.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// ExitCode maps err to the process exit code contract of the CLI.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch CodeOf(err) {
	case ErrCodeMissingTool:
		return ExitMissingTool
	case ErrCodeClusterStart, ErrCodeBuild, ErrCodePush, ErrCodeInstall, ErrCodeInterrupted:
		return ExitPipeline
	default:
		return ExitGeneration
	}
}
