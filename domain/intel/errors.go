package intel

import (
	"errors"
	"fmt"

	"github.com/Sportinger/argus/pkg/apperror"
)

// ErrorKind classifies a domain error the way the original implementation's
// error enum did, independent of any HTTP concern.
type ErrorKind string

const (
	ErrKindTransport     ErrorKind = "transport"
	ErrKindProtocol      ErrorKind = "protocol"
	ErrKindParse         ErrorKind = "parse"
	ErrKindGraph         ErrorKind = "graph"
	ErrKindExtraction    ErrorKind = "extraction"
	ErrKindReasoning     ErrorKind = "reasoning"
	ErrKindConfiguration ErrorKind = "configuration"
	ErrKindNotFound      ErrorKind = "not_found"
	ErrKindInternal      ErrorKind = "internal"
	ErrKindAgent         ErrorKind = "agent"
)

// Error is the domain-level error type every package in this module
// returns. It carries a Kind for classification, an optional Agent name
// for agent-sourced failures, and wraps the underlying cause.
type Error struct {
	Kind    ErrorKind
	Agent   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Kind == ErrKindAgent {
		return fmt.Sprintf("agent error (%s): %s", e.Agent, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds a domain error of the given kind.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NewAgentError builds the Agent{agent, message} variant.
func NewAgentError(agent, message string) *Error {
	return &Error{Kind: ErrKindAgent, Agent: agent, Message: message}
}

// NewNotFoundError builds the NotFound variant.
func NewNotFoundError(message string) *Error {
	return &Error{Kind: ErrKindNotFound, Message: message}
}

// ToAppError bridges a domain error to the HTTP-facing apperror.Error at
// the service boundary. Every kind maps to 500 except NotFound (404); an
// unrecognized agent name reaching the handler layer is expected to have
// already been turned into a NotFound error by the caller, per the agent
// lookup contract.
func ToAppError(err error) *apperror.Error {
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		return apperror.NewInternal("An internal error occurred", err)
	}

	switch domainErr.Kind {
	case ErrKindNotFound:
		return apperror.ErrNotFound.WithMessage(domainErr.Message).WithInternal(domainErr)
	default:
		return apperror.NewInternal(domainErr.Error(), domainErr)
	}
}
