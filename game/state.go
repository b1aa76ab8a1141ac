package game

/*
Game State

Every peer in a match reports a sequence of snapshots of itself, one per turn.
The snapshot carries everything another peer needs to apply the kill rule:

	TurnID   - -1 for the pre-game (presence) report, otherwise the 0-based turn.
	           Strictly increasing per peer.
	Location - the cell the peer occupies after its move for that turn.
	Power    - 0 for a passive move, anything else means the move is an attack.
	Status   - 1 while alive, 0 once the peer is dead or withdrawing.

A peer is killed on turn j when another peer that is still in the roster
attacks (non-zero power) from a cell exactly one step away (Manhattan
distance 1) from where it stands on turn j.

File Organization:
	state.go   - PeerID, Location, PeerState and the adjacency rule
	history.go - per-peer ordered history of reported states
	roster.go  - the locked map of histories shared by the receive path and the turn loop
	script.go  - the scripted move list of the local peer
	codec.go   - the wire schema for PeerState
	errors.go  - sentinel errors
*/

// InitialTurn is the turn id of the pre-game presence report.
const InitialTurn = -1

// Status values carried in PeerState.Status
const (
	StatusDead  = 0
	StatusAlive = 1
)

// PeerID identifies a player. Ids are 1-based and stable for the whole match.
type PeerID int

// Location is a cell on the board
type Location struct {
	X int
	Y int
}

// PeerState is one reported snapshot of a peer at a point in the game
type PeerState struct {
	TurnID   int
	Location Location
	Power    int
	Status   int
}

// InitialState returns the state every peer starts the match with
func InitialState() PeerState {
	return PeerState{
		TurnID:   InitialTurn,
		Location: Location{X: 0, Y: 0},
		Power:    0,
		Status:   StatusAlive,
	}
}

// Alive reports whether the state marks its peer as alive
func (s PeerState) Alive() bool {
	return s.Status != StatusDead
}

// Attacking reports whether the move recorded in the state is an attack
func (s PeerState) Attacking() bool {
	return s.Power != 0
}

// Withdrawn returns a copy of the state with its status set to dead.
// The turn id is kept so receivers treat it as the same turn.
func (s PeerState) Withdrawn() PeerState {
	s.Status = StatusDead
	return s
}

// Adjacent reports whether two cells are exactly one orthogonal step apart.
// Diagonal neighbours and the same cell are not adjacent.
func Adjacent(a, b Location) bool {
	return abs(a.X-b.X)+abs(a.Y-b.Y) == 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
