package handlers

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// ErrConfirmTimeout is returned when no reply arrives inside the window.
var ErrConfirmTimeout = errors.New("confirmation timed out")

// Confirmations tracks prompts waiting for the next message by the same
// author in the same channel. At most one prompt per (author, channel) pair;
// a new prompt replaces a stale one.
type Confirmations struct {
	mu      sync.Mutex
	pending map[string]chan string
}

func NewConfirmations() *Confirmations {
	return &Confirmations{
		pending: make(map[string]chan string),
	}
}

func confirmKey(userID, channelID snowflake.ID) string {
	return fmt.Sprintf("%s:%s", userID, channelID)
}

// Deliver routes a message into a waiting prompt. Reports whether the
// message was consumed.
func (c *Confirmations) Deliver(userID, channelID snowflake.ID, content string) bool {
	c.mu.Lock()
	ch, ok := c.pending[confirmKey(userID, channelID)]
	if ok {
		delete(c.pending, confirmKey(userID, channelID))
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	ch <- content
	return true
}

// Await blocks until the author's next message in the channel or the
// timeout, whichever comes first.
func (c *Confirmations) Await(userID, channelID snowflake.ID, timeout time.Duration) (string, error) {
	key := confirmKey(userID, channelID)
	ch := make(chan string, 1)

	c.mu.Lock()
	c.pending[key] = ch
	c.mu.Unlock()

	select {
	case content := <-ch:
		return content, nil
	case <-time.After(timeout):
		c.mu.Lock()
		_, pending := c.pending[key]
		delete(c.pending, key)
		c.mu.Unlock()
		if !pending {
			// Deliver removed the entry first, so its message is already
			// in flight; a true return from Deliver must mean consumed.
			return <-ch, nil
		}
		return "", ErrConfirmTimeout
	}
}
