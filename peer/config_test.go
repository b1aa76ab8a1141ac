package peer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamgarcia4/goLearning/turnsync/game"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"defaults", func(c *Config) {}, nil},
		{"missing id", func(c *Config) { c.ID = 0 }, ErrPeerIDRequired},
		{"no peers", func(c *Config) { c.Peers = 0 }, ErrInvalidPeerCount},
		{"id above count", func(c *Config) { c.ID = 4 }, ErrPeerIDOutOfRange},
		{"zero interval", func(c *Config) { c.PollInterval = 0 }, ErrInvalidPollInterval},
		{"negative presence timeout", func(c *Config) { c.PresenceTimeout = -time.Second }, ErrInvalidTimeout},
		{"negative turn timeout", func(c *Config) { c.TurnTimeout = -time.Second }, ErrInvalidTimeout},
		{"zero shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }, ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig(2, 3)
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestConfigPeerIDs(t *testing.T) {
	assert.Equal(t, []game.PeerID{1, 2, 3}, DefaultConfig(1, 3).PeerIDs())
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "players/7", TopicFor(7))

	id, err := ParseTopic("players/12")
	require.NoError(t, err)
	assert.Equal(t, game.PeerID(12), id)

	for _, bad := range []string{"", "players/", "players/x", "players/0", "players/-1", "games/1"} {
		_, err := ParseTopic(bad)
		assert.ErrorIs(t, err, ErrInvalidTopic, bad)
	}
}

func TestPollUntil(t *testing.T) {
	calls := 0
	err := pollUntil(context.Background(), time.Millisecond, 0, func() bool {
		calls++
		return calls == 3
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	err = pollUntil(context.Background(), time.Millisecond, 20*time.Millisecond, func() bool { return false })
	assert.ErrorIs(t, err, errPollTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = pollUntil(ctx, time.Millisecond, 0, func() bool { return true })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleep(t *testing.T) {
	assert.NoError(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
}
