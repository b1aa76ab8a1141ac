package peer

import (
	"context"

	"github.com/adamgarcia4/goLearning/turnsync/game"
)

// eliminate records the local player as dead, tells the others and gives the
// message one interval to go out.
func (p *Peer) eliminate(ctx context.Context, state game.PeerState, killer game.PeerID, turn int) Outcome {
	dead := state.Withdrawn()
	p.roster.ReplaceLast(p.config.ID, dead)
	p.setCurrent(dead)
	p.publish(ctx, dead)

	if err := sleep(ctx, p.config.PollInterval); err != nil {
		p.log.Debugf("Grace period cut short: %v", err)
	}
	return Outcome{Phase: PhaseEliminated, Killer: killer, Turn: turn}
}
