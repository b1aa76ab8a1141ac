package game

import "errors"

var (
	ErrMalformedMove    = errors.New("malformed scripted move")
	ErrMalformedPayload = errors.New("malformed peer state payload")
	ErrMalformedScript  = errors.New("malformed move script")
	ErrUnknownPeer      = errors.New("peer is not in the roster")
)
