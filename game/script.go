package game

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

/*
Move Script

Each peer plays a fixed list of moves read once at startup. The file format is

	N
	x y power
	x y power
	...

where the first line is the total number of players in the match and every
following line is the move for turn 0, 1, 2, ... in order. A line that is not
exactly three integers is kept as a malformed entry so later lines keep their
turn index; it resolves to the default move like a turn past the end of the
script does.
*/

// Move is one scripted move: where the peer goes and whether it attacks
type Move struct {
	Location Location
	Power    int
}

// DefaultMove is played for turns with no valid scripted move:
// back to the origin, no attack.
var DefaultMove = Move{}

type scriptEntry struct {
	move Move
	err  error
}

// Script is the immutable move list of one peer
type Script struct {
	peers   int
	entries []scriptEntry
}

// NewScript builds a script from already-validated moves
func NewScript(peers int, moves []Move) *Script {
	entries := make([]scriptEntry, len(moves))
	for i, m := range moves {
		entries[i] = scriptEntry{move: m}
	}
	return &Script{peers: peers, entries: entries}
}

// ParseScript reads a move script. Only the player count line is mandatory;
// malformed move lines are recorded and resolved later.
func ParseScript(r io.Reader) (*Script, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read player count: %w", err)
		}
		return nil, fmt.Errorf("%w: missing player count", ErrMalformedScript)
	}
	header := strings.TrimSpace(scanner.Text())
	peers, err := strconv.Atoi(header)
	if err != nil {
		return nil, fmt.Errorf("%w: player count %q is not an integer", ErrMalformedScript, header)
	}
	if peers < 1 {
		return nil, fmt.Errorf("%w: player count must be at least 1, got %d", ErrMalformedScript, peers)
	}

	s := &Script{peers: peers}
	line := 1
	for scanner.Scan() {
		line++
		move, err := parseMove(scanner.Text())
		if err != nil {
			err = fmt.Errorf("line %d: %w", line, err)
		}
		s.entries = append(s.entries, scriptEntry{move: move, err: err})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read moves: %w", err)
	}
	return s, nil
}

// LoadScript opens path on fs and parses it
func LoadScript(fs afero.Fs, path string) (*Script, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open move script: %w", err)
	}
	defer f.Close()

	s, err := ParseScript(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func parseMove(text string) (Move, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return DefaultMove, fmt.Errorf("%w: want 3 fields, got %d", ErrMalformedMove, len(fields))
	}
	var values [3]int
	for i, field := range fields {
		v, err := strconv.Atoi(field)
		if err != nil {
			return DefaultMove, fmt.Errorf("%w: %q is not an integer", ErrMalformedMove, field)
		}
		values[i] = v
	}
	return Move{Location: Location{X: values[0], Y: values[1]}, Power: values[2]}, nil
}

// Peers returns the total number of players declared by the script
func (s *Script) Peers() int {
	return s.peers
}

// Len returns the number of scripted turns, malformed ones included
func (s *Script) Len() int {
	return len(s.entries)
}

// Move returns the scripted move for turnID. Turns outside the script and
// malformed entries return DefaultMove with an error wrapping ErrMalformedMove.
func (s *Script) Move(turnID int) (Move, error) {
	if turnID < 0 || turnID >= len(s.entries) {
		return DefaultMove, fmt.Errorf("%w: no move for turn %d", ErrMalformedMove, turnID)
	}
	e := s.entries[turnID]
	if e.err != nil {
		return DefaultMove, e.err
	}
	return e.move, nil
}

// Resolve returns the move to play on turnID, falling back to DefaultMove
func (s *Script) Resolve(turnID int) Move {
	move, err := s.Move(turnID)
	if err != nil {
		return DefaultMove
	}
	return move
}
