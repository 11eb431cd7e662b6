package server

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ChatLog appends every exchange to w in a plain text transcript format.
type ChatLog struct {
	mu sync.Mutex
	w  io.Writer
}

func NewChatLog(w io.Writer) *ChatLog {
	return &ChatLog{w: w}
}

func (c *ChatLog) Record(at time.Time, clientID, message, reply string) error {
	if c == nil || c.w == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "Time: %s\nClient: %s\nUser: %s\nBot: %s\n%s\n",
		at.Format(time.RFC3339), clientID, message, reply, strings.Repeat("-", 40))
	return err
}
