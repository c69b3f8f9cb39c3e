package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
)

// ErrorKind classifies a provider failure for display; no retry decisions
// are made here.
type ErrorKind string

const (
	ErrKindConnection ErrorKind = "connection"
	ErrKindAuth       ErrorKind = "authentication"
	ErrKindForbidden  ErrorKind = "forbidden"
	ErrKindRateLimit  ErrorKind = "rate_limit"
	ErrKindCancelled  ErrorKind = "cancelled"
	ErrKindAPI        ErrorKind = "api"
)

// Error wraps a provider failure with its classification.
type Error struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Classify wraps err in an *Error with the best-effort kind. Already
// classified errors pass through unchanged.
func Classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	var already *Error
	if errors.As(err, &already) {
		return err
	}

	kind := ErrKindAPI
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		kind = ErrKindCancelled
	default:
		kind = classifyKind(err)
	}

	return &Error{Kind: kind, Provider: provider, Err: err}
}

func classifyKind(err error) ErrorKind {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return kindFromStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode > 0 {
			return kindFromStatus(reqErr.HTTPStatusCode)
		}
		return ErrKindConnection
	}

	var antErr *anthropic.APIError
	if errors.As(err, &antErr) {
		switch string(antErr.Type) {
		case "authentication_error":
			return ErrKindAuth
		case "permission_error":
			return ErrKindForbidden
		case "rate_limit_error":
			return ErrKindRateLimit
		default:
			return ErrKindAPI
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrKindConnection
	}

	return ErrKindAPI
}

func kindFromStatus(status int) ErrorKind {
	switch status {
	case 401:
		return ErrKindAuth
	case 403:
		return ErrKindForbidden
	case 429:
		return ErrKindRateLimit
	default:
		return ErrKindAPI
	}
}
