package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
)

/*
Wire format of a PeerState, one JSON object per published message:

	{"id": 3, "loc": {"x": 1, "y": 0}, "power": 1, "status": 1}

Decoding fails closed. Every field must be present, unknown fields and
trailing data are rejected, the turn id cannot be below -1 and the status must
be 0 or 1. Fields are pointers on the wire struct so that a missing field can
be told apart from a zero value.
*/

var validate = validator.New()

type wireLocation struct {
	X *int `json:"x" validate:"required"`
	Y *int `json:"y" validate:"required"`
}

type wireState struct {
	ID     *int          `json:"id" validate:"required,gte=-1"`
	Loc    *wireLocation `json:"loc" validate:"required"`
	Power  *int          `json:"power" validate:"required"`
	Status *int          `json:"status" validate:"required,oneof=0 1"`
}

// EncodeState serialises a state for publishing
func EncodeState(s PeerState) ([]byte, error) {
	w := wireState{
		ID:     &s.TurnID,
		Loc:    &wireLocation{X: &s.Location.X, Y: &s.Location.Y},
		Power:  &s.Power,
		Status: &s.Status,
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to encode peer state: %w", err)
	}
	return data, nil
}

// DecodeState parses and validates a received payload. Any failure wraps
// ErrMalformedPayload.
func DecodeState(data []byte) (PeerState, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var w wireState
	if err := dec.Decode(&w); err != nil {
		return PeerState{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return PeerState{}, fmt.Errorf("%w: trailing data after state", ErrMalformedPayload)
	}
	if err := validate.Struct(w); err != nil {
		return PeerState{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return PeerState{
		TurnID:   *w.ID,
		Location: Location{X: *w.Loc.X, Y: *w.Loc.Y},
		Power:    *w.Power,
		Status:   *w.Status,
	}, nil
}
