package game

import (
	"sort"
	"sync"
)

/*
Roster

The roster is the set of peers still considered part of the match, each with
its History. It is written by the transport's receiving goroutines
(RecordIncoming) and read/pruned by the turn loop (PruneTo, PresenceSum,
SettleTurn, FindAttacker). Every operation takes the same mutex; N is small
and the critical sections are a handful of slice operations, so one coarse
lock is enough.

Membership only ever shrinks: a peer is removed the first time a state with
Status 0 is observed for it and is never added back.
*/

// RecordResult tells the caller what RecordIncoming did with a state
type RecordResult int

const (
	// RecordUnknown means the peer is not (or no longer) in the roster
	RecordUnknown RecordResult = iota
	// RecordStale means the state was not newer than the newest retained one
	RecordStale
	// RecordAppended means the state was appended to the peer's history
	RecordAppended
	// RecordRemoved means the state reported the peer dead and it was removed
	RecordRemoved
)

func (r RecordResult) String() string {
	switch r {
	case RecordUnknown:
		return "unknown"
	case RecordStale:
		return "stale"
	case RecordAppended:
		return "appended"
	case RecordRemoved:
		return "removed"
	default:
		return "invalid"
	}
}

// Roster maps each tracked peer to its history
type Roster struct {
	mu        sync.Mutex
	histories map[PeerID]*History
}

// NewRoster tracks every id in ids. The history of self is seeded with the
// initial state; every other history starts empty and is filled by that
// peer's own presence report.
func NewRoster(ids []PeerID, self PeerID) *Roster {
	histories := make(map[PeerID]*History, len(ids))
	for _, id := range ids {
		histories[id] = &History{}
	}
	if h, ok := histories[self]; ok {
		h.Accept(InitialState())
	}
	return &Roster{histories: histories}
}

// RecordIncoming applies a state received from peer id.
//
// States for peers that are not tracked are ignored. A dead status removes
// the peer. Otherwise the state is appended only when it is newer than what
// is already held, which makes redelivery and reordering harmless.
func (r *Roster) RecordIncoming(id PeerID, state PeerState) RecordResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.histories[id]
	if !ok {
		return RecordUnknown
	}
	if !state.Alive() {
		delete(r.histories, id)
		return RecordRemoved
	}
	if !h.Accept(state) {
		return RecordStale
	}
	return RecordAppended
}

// AppendLocal appends a state the local peer produced for itself.
// Same acceptance rule as RecordIncoming, without the removal branch.
func (r *Roster) AppendLocal(id PeerID, state PeerState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.histories[id]
	if !ok {
		return false
	}
	return h.Accept(state)
}

// ReplaceLast overwrites the newest state held for id
func (r *Roster) ReplaceLast(id PeerID, state PeerState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.histories[id]
	if !ok {
		return false
	}
	return h.replaceLast(state)
}

// PruneTo drops the front of id's history while its TurnID is below turnID
func (r *Roster) PruneTo(id PeerID, turnID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.histories[id]
	if !ok {
		return 0
	}
	return h.PruneTo(turnID)
}

// Front returns the oldest state held for id
func (r *Roster) Front(id PeerID) (PeerState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.histories[id]
	if !ok {
		return PeerState{}, false
	}
	return h.Front()
}

// Last returns the newest state held for id
func (r *Roster) Last(id PeerID) (PeerState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.histories[id]
	if !ok {
		return PeerState{}, false
	}
	return h.Last()
}

// Contains reports whether id is still tracked
func (r *Roster) Contains(id PeerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.histories[id]
	return ok
}

// Len returns the number of tracked peers, self included
func (r *Roster) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.histories)
}

// IDs returns the tracked peer ids in ascending order
func (r *Roster) IDs() []PeerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedIDs()
}

// sortedIDs must be called with r.mu held
func (r *Roster) sortedIDs() []PeerID {
	ids := make([]PeerID, 0, len(r.histories))
	for id := range r.histories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// PresenceSum prunes every history to the presence turn and sums the status
// of the front entries. Peers that have not reported anything count 0.
// Fronts past the presence turn count too, so a player that already moved on
// to turn 0 is not missed.
func (r *Roster) PresenceSum() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	sum := 0
	for _, h := range r.histories {
		h.PruneTo(InitialTurn)
		if front, ok := h.Front(); ok {
			sum += front.Status
		}
	}
	return sum
}

// SettleTurn prunes every history so its front is at turnID or later, then
// counts the peers whose front is exactly turnID. The turn barrier releases
// when reported == tracked.
func (r *Roster) SettleTurn(turnID int) (reported, tracked int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range r.histories {
		h.PruneTo(turnID)
		if front, ok := h.Front(); ok && front.TurnID == turnID {
			reported++
		}
	}
	return reported, len(r.histories)
}

// Snapshot returns a copy of every tracked history
func (r *Roster) Snapshot() map[PeerID][]PeerState {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[PeerID][]PeerState, len(r.histories))
	for id, h := range r.histories {
		out[id] = h.States()
	}
	return out
}
