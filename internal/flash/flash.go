// Package flash implements one-shot user-facing messages: pushed during one
// request, shown on the next rendered page, then discarded.
package flash

import (
	"encoding/gob"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const sessionKey = "flashes"

// Message kinds.
const (
	KindInfo  = "info"
	KindError = "error"
)

// Message is a single pending notification.
type Message struct {
	Kind string
	Text string
}

func init() {
	// Session values are gob-encoded on save.
	gob.Register([]Message{})
}

// Store queues flash messages in the per-browser session.
type Store struct {
	sessions *session.Store
}

// NewStore creates a flash store backed by Fiber's session middleware.
func NewStore() *Store {
	return &Store{
		sessions: session.New(session.Config{
			KeyLookup:      "cookie:lapak_flash",
			CookieHTTPOnly: true,
			CookieSameSite: fiber.CookieSameSiteLaxMode,
		}),
	}
}

// Push appends a message to the session's pending queue.
func (s *Store) Push(c *fiber.Ctx, kind, text string) {
	sess, err := s.sessions.Get(c)
	if err != nil {
		log.Printf("Failed to open session for flash message: %v", err)
		return
	}

	msgs, _ := sess.Get(sessionKey).([]Message)
	msgs = append(msgs, Message{Kind: kind, Text: text})
	sess.Set(sessionKey, msgs)
	if err := sess.Save(); err != nil {
		log.Printf("Failed to save flash message: %v", err)
	}
}

// Pop returns all pending messages and clears the queue.
func (s *Store) Pop(c *fiber.Ctx) []Message {
	sess, err := s.sessions.Get(c)
	if err != nil {
		log.Printf("Failed to open session for flash messages: %v", err)
		return nil
	}

	msgs, _ := sess.Get(sessionKey).([]Message)
	if len(msgs) > 0 {
		sess.Delete(sessionKey)
		if err := sess.Save(); err != nil {
			log.Printf("Failed to clear flash messages: %v", err)
		}
	}
	return msgs
}
