package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeAlreadyJoined    = "already_joined"
	ErrCodeNotInGroup       = "not_in_group"
	ErrCodePeerNotFound     = "peer_not_found"
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeProtocolMismatch = "protocol_mismatch"
)

var (
	ErrAlreadyJoined = errors.New("already joined")
	ErrNotInGroup    = errors.New("not in group")
	ErrPeerNotFound  = errors.New("peer not found")
	ErrBadRequest    = errors.New("bad request")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
