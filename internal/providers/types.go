// Package providers sends diffs to a chat-completion endpoint for review.
package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrReviewRequest is wrapped by every failure to obtain a review.
	ErrReviewRequest = errors.New("review request failed")

	// ErrMissingAPIKey is returned by Review when no credential is configured.
	ErrMissingAPIKey = errors.New("OpenAI API key required")
)

// Provider turns a diff into review text.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Review sends the diff and returns the model's reply verbatim.
	Review(ctx context.Context, diff string) (string, error)
}

// ReviewConfig is the immutable review configuration: which model to ask
// and what to ask it.
type ReviewConfig struct {
	Model string

	// Instruction follows the diff in the prompt. Empty means
	// DefaultInstruction.
	Instruction string

	// JSONSchema appends the structured-response instruction.
	JSONSchema bool
}

// APIError is a non-2xx response from the endpoint. Message, Type and Code
// come from the OpenAI-style {"error": {...}} body when present.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Code       string
	Body       string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: status %d", ErrReviewRequest, e.StatusCode)
	switch {
	case e.Message != "":
		b.WriteString(": " + e.Message)
	case e.Body != "":
		b.WriteString(": " + e.Body)
	}
	var meta []string
	if e.Type != "" {
		meta = append(meta, "type="+e.Type)
	}
	if e.Code != "" {
		meta = append(meta, "code="+e.Code)
	}
	if len(meta) > 0 {
		b.WriteString(" (" + strings.Join(meta, ", ") + ")")
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return ErrReviewRequest }
