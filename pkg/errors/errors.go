package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/store"
)

// Category groups failures by what the user can do about them.
type Category string

const (
	CategoryNetwork    Category = "network"
	CategoryTimeout    Category = "timeout"
	CategoryAuth       Category = "auth"
	CategoryForbidden  Category = "forbidden"
	CategoryValidation Category = "validation"
	CategoryNotFound   Category = "not_found"
	CategoryConflict   Category = "conflict"
	CategoryRateLimit  Category = "rate_limit"
	CategoryServer     Category = "server"
	CategoryRolledBack Category = "rolled_back"
	CategoryStale      Category = "stale"
	CategoryUnknown    Category = "unknown"
)

// rateLimitWait is used when the server does not say how long to back off.
const rateLimitWait = 60

var hints = map[Category]string{
	CategoryNetwork:    "Check your connection and api.base_url, then try again.",
	CategoryTimeout:    "The server is slow to answer. Try again in a moment.",
	CategoryAuth:       "Sign in with 'inkwell auth login'.",
	CategoryForbidden:  "You can only change content you own.",
	CategoryConflict:   "Someone else changed this first. Refresh and try again.",
	CategoryServer:     "The server failed. Try again in a few moments.",
	CategoryRolledBack: "Your change was undone locally. The display shows the server's state.",
}

// CLIError is what commands report to the user.
type CLIError struct {
	Category   Category
	Message    string
	Suggestion string
	StatusCode int
	RetryAfter int
	Cause      error
}

func (e *CLIError) Error() string { return e.Message }

func (e *CLIError) Unwrap() error { return e.Cause }

// New builds a CLIError with the category's default hint.
func New(cat Category, message string, cause error) *CLIError {
	return &CLIError{Category: cat, Message: message, Suggestion: hints[cat], Cause: cause}
}

// Hint replaces the suggestion.
func (e *CLIError) Hint(s string) *CLIError {
	e.Suggestion = s
	return e
}

func rateLimited(cause error) *CLIError {
	e := New(CategoryRateLimit, "Too many requests", cause)
	e.RetryAfter = rateLimitWait
	e.Suggestion = fmt.Sprintf("Wait %d seconds before trying again.", rateLimitWait)
	return e
}

// rule maps one family of errors. The first match wins.
type rule func(err error) *CLIError

var rules = []rule{
	func(err error) *CLIError {
		if errors.Is(err, optimistic.ErrUnauthenticated) {
			return New(CategoryAuth, "You must be logged in", err)
		}
		return nil
	},
	func(err error) *CLIError {
		var v *optimistic.ValidationError
		if errors.As(err, &v) {
			return New(CategoryValidation, fmt.Sprintf("Invalid %s: %s", v.Field, v.Reason), err)
		}
		return nil
	},
	func(err error) *CLIError {
		switch {
		case errors.Is(err, optimistic.ErrSuperseded):
			return New(CategoryStale, "Dropped because an earlier change to the same item failed", err)
		case errors.Is(err, optimistic.ErrPendingComment):
			return New(CategoryValidation, "That comment is still being posted", err).
				Hint("Wait for it to sync, then try again.")
		case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrCommentNotFound):
			return New(CategoryNotFound, "Not loaded: fetch it first", err)
		case errors.Is(err, optimistic.ErrInvalidIntent), errors.Is(err, optimistic.ErrUnknownKind),
			errors.Is(err, store.ErrNestedReply), errors.Is(err, store.ErrParentNotFound):
			return New(CategoryValidation, err.Error(), err)
		}
		return nil
	},
	func(err error) *CLIError {
		var rb *optimistic.RollbackError
		if !errors.As(err, &rb) {
			return nil
		}
		e := New(CategoryRolledBack, rb.Message(), rb)
		var apiErr *api.APIError
		if errors.As(rb.Cause, &apiErr) {
			e.StatusCode = apiErr.StatusCode
		}
		return e
	},
	func(err error) *CLIError {
		var apiErr *api.APIError
		if !errors.As(err, &apiErr) {
			return nil
		}
		var e *CLIError
		switch code := apiErr.StatusCode; {
		case code == http.StatusTooManyRequests:
			e = rateLimited(err)
		case code >= 500:
			e = New(CategoryServer, apiErr.Message, err)
		default:
			e = New(statusCategory(code), apiErr.Message, err)
		}
		e.StatusCode = apiErr.StatusCode
		return e
	},
	func(err error) *CLIError {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return New(CategoryTimeout, "Request timed out", err)
		}
		msg := err.Error()
		switch {
		case strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"):
			return New(CategoryNetwork, "Could not reach the server", err)
		case strings.Contains(msg, "timeout"):
			return New(CategoryTimeout, "Request timed out", err)
		}
		return nil
	},
}

func statusCategory(code int) Category {
	switch code {
	case http.StatusUnauthorized:
		return CategoryAuth
	case http.StatusForbidden:
		return CategoryForbidden
	case http.StatusNotFound:
		return CategoryNotFound
	case http.StatusConflict:
		return CategoryConflict
	}
	if code >= 400 {
		return CategoryValidation
	}
	return CategoryUnknown
}

// Categorize returns err as a CLIError. Existing CLIErrors pass through.
func Categorize(err error) *CLIError {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}
	for _, r := range rules {
		if e := r(err); e != nil {
			return e
		}
	}
	return New(CategoryUnknown, err.Error(), err)
}

// Format renders err for stderr.
func Format(err error) string {
	e := Categorize(err)
	if e == nil {
		return ""
	}

	var sb strings.Builder
	if e.Category == CategoryUnknown {
		fmt.Fprintf(&sb, "Error: %s\n", e.Message)
	} else {
		fmt.Fprintf(&sb, "Error (%s): %s\n", e.Category, e.Message)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&sb, "\nSuggestion: %s\n", e.Suggestion)
	}
	if e.RetryAfter > 0 {
		fmt.Fprintf(&sb, "\nRetry in: %d seconds\n", e.RetryAfter)
	}
	return sb.String()
}
