package session

import (
	"time"

	"chatfood-service/internal/models"
)

// Context is the per-session conversation state. It is mutated by the
// orchestrator after every turn and never shared across session keys.
type Context struct {
	SessionID           string                  `json:"sessionId"`
	UserID              string                  `json:"userId,omitempty"`
	StartedAt           time.Time               `json:"startedAt"`
	LastActivity        time.Time               `json:"lastActivity"`
	Turns               []models.Turn           `json:"turns"`
	TurnCount           int                     `json:"turnCount"`
	CurrentTopic        string                  `json:"currentTopic,omitempty"`
	HasRecommendations  bool                    `json:"hasRecommendations"`
	LastRecommendations []models.Recommendation `json:"lastRecommendations,omitempty"`
}

func newContext(sessionKey, userID string, now time.Time) *Context {
	return &Context{
		SessionID:    sessionKey,
		UserID:       userID,
		StartedAt:    now,
		LastActivity: now,
	}
}

// AppendTurn records one utterance and increments the turn counter by
// exactly one. History is append-only.
func (c *Context) AppendTurn(speaker, text string) {
	c.Turns = append(c.Turns, models.Turn{Speaker: speaker, Text: text})
	c.TurnCount++
}

// Reset clears history, topic, recommendation state and the turn counter.
// It is only reachable through an explicit restart, never through the
// normal turn flows.
func (c *Context) Reset() {
	c.Turns = nil
	c.CurrentTopic = ""
	c.HasRecommendations = false
	c.LastRecommendations = nil
	c.TurnCount = 0
}

// RecentTurns returns at most n most recent turns, oldest first.
func (c *Context) RecentTurns(n int) []models.Turn {
	if n <= 0 || len(c.Turns) <= n {
		return c.Turns
	}
	return c.Turns[len(c.Turns)-n:]
}
