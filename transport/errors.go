package transport

import "errors"

var (
	ErrClosed         = errors.New("transport is closed")
	ErrInvalidTopic   = errors.New("topic must not be empty")
	ErrInvalidPayload = errors.New("payload must be valid UTF-8")
	ErrInvalidAddress = errors.New("address must be host:port")
)
