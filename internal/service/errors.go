package service

import (
	"errors"
	"strings"

	"github.com/goliatone/go-kafkaforms/pkg/validation"
)

var (
	// ErrInvalidRequest marks malformed requests: missing fields, bad
	// base64, unknown engines.
	ErrInvalidRequest = errors.New("service: invalid request")
	// ErrValidation marks schema or input validation failures. The concrete
	// error is a *ValidationError.
	ErrValidation = errors.New("service: validation failed")
	// ErrRender marks a template that failed to render the input.
	ErrRender = errors.New("service: render failed")
)

// ValidationError carries the issues behind ErrValidation.
type ValidationError struct {
	Issues []validation.Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Field != "" {
			parts = append(parts, issue.Field+": "+issue.Message)
			continue
		}
		parts = append(parts, issue.Message)
	}
	return "service: validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Errors groups the issue messages by pointer.
func (e *ValidationError) Errors() map[string][]string {
	return validation.Result{Issues: e.Issues}.Errors()
}
