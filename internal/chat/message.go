// Package chat models the per-panel assistant conversations.
package chat

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// FallbackReply is appended in place of a reply when the backend call fails.
const FallbackReply = "Sorry, I encountered an error. Please try again."

// Message is one immutable chat bubble.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

func newMessage(sender Sender, content string) Message {
	return Message{
		ID:        ulid.MustNew(ulid.Now(), rand.Reader).String(),
		Content:   content,
		Sender:    sender,
		Timestamp: time.Now().UTC(),
	}
}
