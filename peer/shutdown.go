package peer

import (
	"context"
	"fmt"
)

// shutdown runs on every exit path of Run: it publishes the local player's
// withdrawal, closes the bus and reports the outcome.
//
// The publish uses a context detached from ctx so it still goes out when the
// run was cancelled, bounded by ShutdownTimeout.
func (p *Peer) shutdown(ctx context.Context, outcome Outcome) {
	if last, ok := p.roster.Last(p.config.ID); ok {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.config.ShutdownTimeout)
		p.publish(pubCtx, last.Withdrawn())
		cancel()
	}

	if err := p.bus.Close(); err != nil {
		p.log.Errorf("Error closing transport: %v", err)
	}

	p.setPhase(outcome.Phase)
	p.log.Printf("%s", p.Report(outcome))
}

// Report renders the final line for outcome. Turns are shown 1-based.
func (p *Peer) Report(outcome Outcome) string {
	switch outcome.Phase {
	case PhaseWon:
		return fmt.Sprintf("Winner: player %d!", p.config.ID)
	case PhaseEliminated:
		return fmt.Sprintf("Player %d killed Player %d on Turn %d.", outcome.Killer, p.config.ID, outcome.Turn+1)
	default:
		return "exiting"
	}
}
