package gateway

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestGateway() *Gateway {
	logger := zerolog.Nop()
	return New(NewRegistry(), NewDirectory(), testVerifier(), &logger)
}

func testVerifier() TokenVerifier {
	return VerifierFunc(func(token string) (Identity, error) {
		switch token {
		case "admin-token":
			return Identity{Email: "admin@example.com", Role: RoleAdmin}, nil
		case "user-token":
			return Identity{Email: "user@example.com", Role: RoleUser}, nil
		default:
			return Identity{}, errors.New("invalid token")
		}
	})
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	time.Sleep(50 * time.Millisecond)
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v: %+v", kind, ev)
			}
		default:
			return
		}
	}
}

func drainEvents(c *Client) {
	for {
		select {
		case <-c.Events:
		default:
			return
		}
	}
}
