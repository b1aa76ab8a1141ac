package peer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/adamgarcia4/goLearning/turnsync/game"
)

const topicPrefix = "players/"

// TopicFor returns the topic a player publishes its states on
func TopicFor(id game.PeerID) string {
	return topicPrefix + strconv.Itoa(int(id))
}

// ParseTopic extracts the player id from a player topic
func ParseTopic(topic string) (game.PeerID, error) {
	raw, ok := strings.CutPrefix(topic, topicPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	return game.PeerID(id), nil
}
