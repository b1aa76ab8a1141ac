package peer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamgarcia4/goLearning/turnsync/game"
)

func move(x, y, power int) game.Move {
	return game.Move{Location: game.Location{X: x, Y: y}, Power: power}
}

func newTestManager(t *testing.T, scripts ...*game.Script) *Manager {
	t.Helper()
	m := NewManager(Config{PollInterval: testInterval, ShutdownTimeout: time.Second})
	t.Cleanup(func() { _ = m.Close() })
	for _, s := range scripts {
		_, err := m.AddPeer(s)
		require.NoError(t, err)
	}
	return m
}

func resultsByID(results []Result) map[game.PeerID]Result {
	out := make(map[game.PeerID]Result, len(results))
	for _, r := range results {
		out[r.ID] = r
	}
	return out
}

func TestManagerAttackerWins(t *testing.T) {
	m := newTestManager(t,
		game.NewScript(2, []game.Move{move(1, 0, 1)}),
		game.NewScript(2, []game.Move{move(0, 0, 0)}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := m.RunAll(ctx)
	require.NoError(t, err)
	byID := resultsByID(results)

	assert.Equal(t, Outcome{Phase: PhaseWon}, byID[1].Outcome)
	assert.Equal(t, Outcome{Phase: PhaseEliminated, Killer: 1, Turn: 0}, byID[2].Outcome)

	peers := m.GetPeers()
	require.Len(t, peers, 2)
	assert.Equal(t, "Player 1 killed Player 2 on Turn 1.", peers[1].Report(byID[2].Outcome))
}

func TestManagerLowestAttackerIsCredited(t *testing.T) {
	m := newTestManager(t,
		game.NewScript(3, []game.Move{move(0, 0, 0)}),
		game.NewScript(3, []game.Move{move(1, 0, 1)}),
		game.NewScript(3, []game.Move{move(0, 1, 1)}),
	)

	// Players 2 and 3 never meet afterwards, so the match stalls until cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	results, err := m.RunAll(ctx)
	require.NoError(t, err)
	byID := resultsByID(results)

	assert.Equal(t, Outcome{Phase: PhaseEliminated, Killer: 2, Turn: 0}, byID[1].Outcome)
	assert.Equal(t, PhaseInterrupted, byID[2].Outcome.Phase)
	assert.Equal(t, PhaseInterrupted, byID[3].Outcome.Phase)
}

func TestManagerStalemateWithdrawsOnCancel(t *testing.T) {
	// Adjacent on turn 0 but neither attacks, so nobody is ever eliminated
	m := newTestManager(t,
		game.NewScript(2, []game.Move{move(1, 0, 0)}),
		game.NewScript(2, []game.Move{move(0, 0, 0)}),
	)

	var (
		mu     sync.Mutex
		states []game.PeerState
	)
	observer := m.hub.Connect()
	defer observer.Close()
	require.NoError(t, observer.Subscribe(context.Background(), TopicFor(1), func(_ context.Context, _ string, payload []byte) error {
		s, err := game.DecodeState(payload)
		if err != nil {
			return err
		}
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	results, err := m.RunAll(ctx)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, PhaseInterrupted, r.Outcome.Phase, "player %d", r.ID)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(states) > 0 && states[len(states)-1].Status == game.StatusDead
	}, time.Second, testInterval)

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(states)-1; i++ {
		assert.LessOrEqual(t, states[i-1].TurnID, states[i].TurnID, "states arrive in order")
	}
}

func TestManagerAttackersSkipKillCheck(t *testing.T) {
	// Adjacent on turn 0, but both attack, so neither checks for a kill
	m := newTestManager(t,
		game.NewScript(2, []game.Move{move(1, 0, 1)}),
		game.NewScript(2, []game.Move{move(0, 0, 1)}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	results, err := m.RunAll(ctx)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, Outcome{Phase: PhaseInterrupted}, r.Outcome, "player %d", r.ID)
	}
}

func TestManagerPeerCountMismatch(t *testing.T) {
	m := newTestManager(t,
		game.NewScript(3, nil),
		game.NewScript(3, nil),
	)

	_, err := m.RunAll(context.Background())
	assert.ErrorIs(t, err, ErrPeerCountMismatch)
}

func TestManagerAddPeerAssignsIDs(t *testing.T) {
	m := newTestManager(t)

	_, err := m.AddPeer(nil)
	assert.ErrorIs(t, err, ErrScriptRequired)

	for want := 1; want <= 3; want++ {
		p, err := m.AddPeer(game.NewScript(3, nil))
		require.NoError(t, err)
		assert.Equal(t, game.PeerID(want), p.ID())
	}

	_, err = m.AddPeer(game.NewScript(2, nil))
	assert.ErrorIs(t, err, ErrPeerIDOutOfRange)
}
