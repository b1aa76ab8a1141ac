package game

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScript(t *testing.T) {
	s, err := ParseScript(strings.NewReader("2\n1 0 1\n0 -1 0\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, s.Peers())
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, Move{Location: Location{1, 0}, Power: 1}, s.Resolve(0))
	assert.Equal(t, Move{Location: Location{0, -1}, Power: 0}, s.Resolve(1))
}

func TestScriptMalformedEntriesResolveToDefault(t *testing.T) {
	input := strings.Join([]string{
		"3",
		"1 1 0",
		"1 2",
		"",
		"a b c",
		"1 2 3 4",
		"4 4 1",
	}, "\n")

	s, err := ParseScript(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 6, s.Len(), "malformed lines keep their turn index")

	for _, turn := range []int{1, 2, 3, 4} {
		move, err := s.Move(turn)
		assert.ErrorIs(t, err, ErrMalformedMove, "turn %d", turn)
		assert.Equal(t, DefaultMove, move)
		assert.Equal(t, DefaultMove, s.Resolve(turn))
	}

	assert.Equal(t, Move{Location: Location{4, 4}, Power: 1}, s.Resolve(5))
}

func TestScriptOutOfRange(t *testing.T) {
	s := NewScript(2, []Move{{Location: Location{1, 0}, Power: 1}})

	_, err := s.Move(1)
	assert.ErrorIs(t, err, ErrMalformedMove)
	assert.Equal(t, DefaultMove, s.Resolve(1))
	assert.Equal(t, DefaultMove, s.Resolve(100))
	assert.Equal(t, DefaultMove, s.Resolve(-1))
}

func TestParseScriptHeaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not a number", "two\n1 0 0\n"},
		{"zero players", "0\n"},
		{"negative players", "-3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrMalformedScript)
		})
	}
}

func TestLoadScript(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "player-1.txt", []byte("2\n1 0 1\n"), 0o644))

	s, err := LoadScript(fs, "player-1.txt")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Peers())
	assert.Equal(t, Move{Location: Location{1, 0}, Power: 1}, s.Resolve(0))

	_, err = LoadScript(fs, "player-9.txt")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "bad.txt", []byte("x\n"), 0o644))
	_, err = LoadScript(fs, "bad.txt")
	assert.ErrorIs(t, err, ErrMalformedScript)
}
