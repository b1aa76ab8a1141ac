package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeState(t *testing.T) {
	states := []PeerState{
		InitialState(),
		{TurnID: 7, Location: Location{X: -3, Y: 12}, Power: 1, Status: StatusAlive},
		{TurnID: 2, Location: Location{X: 1, Y: 0}, Power: 0, Status: StatusDead},
	}

	for _, s := range states {
		data, err := EncodeState(s)
		require.NoError(t, err)

		got, err := DecodeState(data)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestEncodeStateSchema(t *testing.T) {
	data, err := EncodeState(PeerState{TurnID: 3, Location: Location{X: 1, Y: 2}, Power: 1, Status: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"loc":{"x":1,"y":2},"power":1,"status":1}`, string(data))
}

func TestDecodeStateRejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty", ``},
		{"not json", `{'id': 0, 'loc': {'x': 0, 'y': 0}, 'power': 0, 'status': 1}`},
		{"missing id", `{"loc":{"x":0,"y":0},"power":0,"status":1}`},
		{"missing loc", `{"id":0,"power":0,"status":1}`},
		{"missing y", `{"id":0,"loc":{"x":0},"power":0,"status":1}`},
		{"missing power", `{"id":0,"loc":{"x":0,"y":0},"status":1}`},
		{"missing status", `{"id":0,"loc":{"x":0,"y":0},"power":0}`},
		{"null loc", `{"id":0,"loc":null,"power":0,"status":1}`},
		{"string id", `{"id":"0","loc":{"x":0,"y":0},"power":0,"status":1}`},
		{"float power", `{"id":0,"loc":{"x":0,"y":0},"power":0.5,"status":1}`},
		{"turn below initial", `{"id":-2,"loc":{"x":0,"y":0},"power":0,"status":1}`},
		{"bad status", `{"id":0,"loc":{"x":0,"y":0},"power":0,"status":2}`},
		{"unknown field", `{"id":0,"loc":{"x":0,"y":0},"power":0,"status":1,"extra":true}`},
		{"unknown loc field", `{"id":0,"loc":{"x":0,"y":0,"z":0},"power":0,"status":1}`},
		{"trailing data", `{"id":0,"loc":{"x":0,"y":0},"power":0,"status":1}{}`},
		{"array", `[0,0,0,0]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeState([]byte(tt.payload))
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestDecodeStateAcceptsZeroValues(t *testing.T) {
	got, err := DecodeState([]byte(` {"status":0,"power":0,"loc":{"y":0,"x":0},"id":0} `))
	require.NoError(t, err)
	assert.Equal(t, PeerState{TurnID: 0, Status: StatusDead}, got)
}
