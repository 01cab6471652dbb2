package domain

import (
	"errors"
	"strconv"
	"strings"
)

// Phase names the stage of a run in which an error was raised.
type Phase string

const (
	PhaseConfig  Phase = "config"
	PhaseScan    Phase = "scan"
	PhaseRecords Phase = "records"
	PhaseExplore Phase = "explore"
	PhaseReport  Phase = "report"
)

// SpecError is an error annotated with the phase and, when known, the file
// position it concerns.
type SpecError struct {
	Phase   Phase
	File    string
	Line    int
	Message string
	Cause   error
}

func (e *SpecError) Error() string {
	var b strings.Builder
	b.WriteString("[" + string(e.Phase) + "]")
	if e.File != "" {
		b.WriteString(" " + e.File)
		if e.Line > 0 {
			b.WriteString(":" + strconv.Itoa(e.Line))
		}
	}
	b.WriteString(": " + e.Message)
	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	return b.String()
}

func (e *SpecError) Unwrap() error {
	return e.Cause
}

// NewError creates a new SpecError.
func NewError(phase Phase, file string, line int, message string, cause error) *SpecError {
	return &SpecError{
		Phase:   phase,
		File:    file,
		Line:    line,
		Message: message,
		Cause:   cause,
	}
}

// PhaseOf returns the phase of the outermost SpecError in err's chain.
func PhaseOf(err error) (Phase, bool) {
	var se *SpecError
	if errors.As(err, &se) {
		return se.Phase, true
	}
	return "", false
}
