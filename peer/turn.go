package peer

import (
	"context"
	"errors"
	"fmt"

	"github.com/adamgarcia4/goLearning/turnsync/game"
)

// playTurns runs turns until the local player is the only one left or is
// eliminated.
//
// One turn:
//  1. resolve the scripted move and publish it as the next state
//  2. wait until every tracked player reported exactly this turn
//  3. if the local move was passive, check whether anyone killed us
//  4. sleep one interval before the next turn
//
// An attacking player skips steps 3 and 4.
func (p *Peer) playTurns(ctx context.Context) (Outcome, error) {
	for p.roster.Len() > 1 {
		last, ok := p.roster.Last(p.config.ID)
		if !ok {
			// Own history is never removed while the loop runs
			return Outcome{Phase: PhaseInterrupted}, fmt.Errorf("player %d: %w", p.config.ID, game.ErrUnknownPeer)
		}
		turn := last.TurnID + 1

		state := p.nextState(turn)
		if err := p.appendOwn(state); err != nil {
			return Outcome{Phase: PhaseInterrupted}, err
		}
		p.setCurrent(state)
		p.publish(ctx, state)

		if err := p.awaitTurn(ctx, turn); err != nil {
			return interrupted(ctx, err)
		}

		if own, ok := p.roster.Front(p.config.ID); ok && own.Attacking() {
			continue
		}

		if killer, killed := p.roster.FindAttacker(p.config.ID, turn); killed {
			return p.eliminate(ctx, state, killer, turn), nil
		}

		if err := sleep(ctx, p.config.PollInterval); err != nil {
			return interrupted(ctx, err)
		}
	}

	return Outcome{Phase: PhaseWon}, nil
}

// nextState builds the local state for turn from the script. Missing or
// malformed entries play the default move.
func (p *Peer) nextState(turn int) game.PeerState {
	if _, err := p.script.Move(turn); err != nil {
		p.log.Debugf("Turn %d: %v, using default move", turn, err)
	}
	move := p.script.Resolve(turn)
	return game.PeerState{
		TurnID:   turn,
		Location: move.Location,
		Power:    move.Power,
		Status:   game.StatusAlive,
	}
}

// awaitTurn blocks until every tracked player's front is at turn. Players
// removed while waiting stop counting.
func (p *Peer) awaitTurn(ctx context.Context, turn int) error {
	err := pollUntil(ctx, p.config.PollInterval, p.config.TurnTimeout, func() bool {
		reported, tracked := p.roster.SettleTurn(turn)
		p.log.Debugf("Turn %d: %d/%d reported", turn, reported, tracked)
		return reported == tracked
	})
	if errors.Is(err, errPollTimeout) {
		return fmt.Errorf("turn %d: %w", turn, ErrTurnTimeout)
	}
	return err
}

// appendOwn records the local state for its turn. A state the roster refuses
// would be published but never become the local front, stalling the barrier.
func (p *Peer) appendOwn(state game.PeerState) error {
	if !p.roster.AppendLocal(p.config.ID, state) {
		return fmt.Errorf("player %d turn %d not recorded: %w", p.config.ID, state.TurnID, game.ErrUnknownPeer)
	}
	return nil
}
