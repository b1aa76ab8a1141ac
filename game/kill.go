package game

// Kills reports whether attacker's move eliminates victim on the same turn:
// the attacker must be attacking and stand exactly one step away.
func Kills(attacker, victim PeerState) bool {
	return attacker.Attacking() && Adjacent(attacker.Location, victim.Location)
}

// FindAttacker applies the kill rule to self for turnID using the front of
// every tracked history. Peers are checked in ascending id order and the
// first match wins; one kill is enough.
//
// Callers run this right after the turn barrier released, so every front is
// at turnID. Fronts at any other turn are skipped.
func (r *Roster) FindAttacker(self PeerID, turnID int) (PeerID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	own, ok := r.histories[self]
	if !ok {
		return 0, false
	}
	victim, ok := own.Front()
	if !ok || victim.TurnID != turnID {
		return 0, false
	}

	for _, id := range r.sortedIDs() {
		if id == self {
			continue
		}
		attacker, ok := r.histories[id].Front()
		if !ok || attacker.TurnID != turnID {
			continue
		}
		if Kills(attacker, victim) {
			return id, true
		}
	}
	return 0, false
}
