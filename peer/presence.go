package peer

import (
	"context"
	"errors"
)

// awaitPresence republishes the local state once per interval until every
// player of the match has been seen alive. A player whose presence report was
// missed but whose turn-0 state arrived still counts.
func (p *Peer) awaitPresence(ctx context.Context) error {
	p.log.Printf("Waiting for %d players", p.config.Peers)

	err := pollUntil(ctx, p.config.PollInterval, p.config.PresenceTimeout, func() bool {
		if last, ok := p.roster.Last(p.config.ID); ok {
			p.publish(ctx, last)
		}
		sum := p.roster.PresenceSum()
		p.log.Debugf("Presence %d/%d", sum, p.config.Peers)
		return sum >= p.config.Peers
	})
	if errors.Is(err, errPollTimeout) {
		return ErrPresenceTimeout
	}
	return err
}
