package http

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// PollHandlers exposes the demo notification endpoints: plain polling,
// long-polling on a shared counter, and a one-way SSE clock stream. None of
// this touches the gateway.
type PollHandlers struct {
	mu      sync.Mutex
	value   int64
	changed chan struct{}
}

// NewPollHandlers creates the handlers with a zeroed counter.
func NewPollHandlers() *PollHandlers {
	return &PollHandlers{
		changed: make(chan struct{}),
	}
}

// Time answers a plain polling request with the current server time.
// GET /time
func (p *PollHandlers) Time(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"now": time.Now().Format(time.RFC3339)})
}

// Increment bumps the counter and wakes every pending long-poll.
// GET /increment
func (p *PollHandlers) Increment(c *gin.Context) {
	p.mu.Lock()
	p.value++
	value := p.value
	close(p.changed)
	p.changed = make(chan struct{})
	p.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"value": value})
}

// Update blocks until the counter moves past its value at request start,
// then answers with the new value. Bounded by the request context.
// GET /update
func (p *PollHandlers) Update(c *gin.Context) {
	p.mu.Lock()
	initial := p.value
	changed := p.changed
	p.mu.Unlock()

	for {
		select {
		case <-changed:
			p.mu.Lock()
			value := p.value
			changed = p.changed
			p.mu.Unlock()
			if value != initial {
				c.JSON(http.StatusOK, gin.H{"update": value})
				return
			}
		case <-c.Request.Context().Done():
			return
		}
	}
}

// Events streams one timestamp per second over SSE.
// GET /events
func (p *PollHandlers) Events(c *gin.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ticker.C:
			c.SSEvent("message", time.Now().Format(time.RFC3339))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
