package game

// History is the ordered list of states reported by one peer.
// Entries are strictly increasing in TurnID. The receiving side appends at the
// back, the turn loop prunes from the front.
//
// History is not safe for concurrent use on its own; Roster guards it.
type History struct {
	states []PeerState
}

// Len returns the number of retained states
func (h *History) Len() int {
	return len(h.states)
}

// Empty reports whether no state is retained
func (h *History) Empty() bool {
	return len(h.states) == 0
}

// Front returns the oldest retained state
func (h *History) Front() (PeerState, bool) {
	if len(h.states) == 0 {
		return PeerState{}, false
	}
	return h.states[0], true
}

// Last returns the newest retained state
func (h *History) Last() (PeerState, bool) {
	if len(h.states) == 0 {
		return PeerState{}, false
	}
	return h.states[len(h.states)-1], true
}

// Accept appends state if the history is empty or state is newer than the
// newest retained entry. It returns false for duplicate or stale states.
func (h *History) Accept(state PeerState) bool {
	if last, ok := h.Last(); ok && state.TurnID <= last.TurnID {
		return false
	}
	h.states = append(h.states, state)
	return true
}

// PruneTo drops entries from the front while their TurnID is below turnID.
// It returns the number of dropped entries.
func (h *History) PruneTo(turnID int) int {
	dropped := 0
	for dropped < len(h.states) && h.states[dropped].TurnID < turnID {
		dropped++
	}
	if dropped == 0 {
		return 0
	}
	// Copy down instead of re-slicing so the backing array doesn't grow forever
	// over a long match.
	n := copy(h.states, h.states[dropped:])
	for i := n; i < len(h.states); i++ {
		h.states[i] = PeerState{}
	}
	h.states = h.states[:n]
	return dropped
}

// replaceLast overwrites the newest entry. Used when the local peer rewrites
// its own outgoing state for the current turn.
func (h *History) replaceLast(state PeerState) bool {
	if len(h.states) == 0 {
		return false
	}
	h.states[len(h.states)-1] = state
	return true
}

// States returns a copy of the retained states
func (h *History) States() []PeerState {
	out := make([]PeerState, len(h.states))
	copy(out, h.states)
	return out
}
