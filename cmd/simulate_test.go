package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamgarcia4/goLearning/turnsync/peer"
)

func TestSimulateFromScripts(t *testing.T) {
	saved := pollInterval
	pollInterval = 10 * time.Millisecond
	t.Cleanup(func() { pollInterval = saved })

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "p1.txt", []byte("2\n1 0 1\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "p2.txt", []byte("2\n0 0 0\n"), 0o644))

	manager, err := newSimulation(fs, []string{"p1.txt", "p2.txt"})
	require.NoError(t, err)
	defer manager.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := manager.RunAll(ctx)
	require.NoError(t, err)

	out := renderResults(manager.GetPeers(), results)
	assert.Contains(t, out, "Winner: player 1!")
	assert.Contains(t, out, "Player 1 killed Player 2 on Turn 1.")
}

func TestSimulateRejectsBadScripts(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "p1.txt", []byte("1\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "bad.txt", []byte("two\n"), 0o644))

	_, err := newSimulation(fs, []string{"missing.txt"})
	assert.Error(t, err)

	_, err = newSimulation(fs, []string{"bad.txt"})
	assert.Error(t, err)

	// Second peer would get id 2 in a one-player match
	_, err = newSimulation(fs, []string{"p1.txt", "p1.txt"})
	assert.ErrorIs(t, err, peer.ErrPeerIDOutOfRange)
}

func TestApplyEnv(t *testing.T) {
	savedInterval, savedBroker := pollInterval, brokerAddr
	t.Cleanup(func() { pollInterval, brokerAddr = savedInterval, savedBroker })

	t.Setenv(EnvPollInterval, "250ms")
	t.Setenv(EnvBroker, "10.0.0.5:6000")

	require.NoError(t, applyEnv(playCmd))
	assert.Equal(t, 250*time.Millisecond, pollInterval)
	assert.Equal(t, "10.0.0.5:6000", brokerAddr)

	t.Setenv(EnvPollInterval, "soon")
	assert.Error(t, applyEnv(playCmd))
}
