package services

import (
	"context"
	"errors"
	"fmt"

	"alfredoptarigan/mock-interviewer/internal/models"
)

// SentinelReply is returned in place of model text when a successful response
// cannot be parsed. The conversation continues with it.
const SentinelReply = "Failed to get a valid response from the language model."

// ModelGateway sends a message sequence to a chat-completion service and
// returns the text of the top choice.
type ModelGateway interface {
	Complete(ctx context.Context, messages []models.Turn) (string, error)
}

type GatewayErrorKind string

const (
	TransportFailure  GatewayErrorKind = "transport_failure"
	MalformedResponse GatewayErrorKind = "malformed_response"
)

var ErrTransportFailure = errors.New("model gateway transport failure")

type GatewayError struct {
	Kind       GatewayErrorKind
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func (e *GatewayError) Is(target error) bool {
	return target == ErrTransportFailure && e.Kind == TransportFailure
}

func transportError(status int, err error) error {
	return &GatewayError{Kind: TransportFailure, StatusCode: status, Err: err}
}
