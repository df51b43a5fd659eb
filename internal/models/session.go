// internal/models/session.go
package models

import "time"

// Turn states for the chat state machine.
const (
	StepInitial         = "initial"
	StepClarification   = "clarification"
	StepEmailCollection = "email_collection"
	StepDone            = "done"
)

// Session is the opaque blob persisted per chat session.
type Session struct {
	ID           string               `json:"id"`
	CreatedAt    time.Time            `json:"createdAt"`
	LastActivity time.Time            `json:"lastActivity"`
	CurrentStep  string               `json:"currentStep"`
	Profile      *StudentProfile      `json:"profile,omitempty"`
	LastTurn     *ConsultationContext `json:"lastTurn,omitempty"`
	UserEmail    string               `json:"userEmail,omitempty"`
	History      []HistoryMessage     `json:"history,omitempty"`
}

// HistoryMessage is one entry of the bounded conversation history.
type HistoryMessage struct {
	Timestamp time.Time `json:"timestamp"`
	Role      string    `json:"role"` // "user" or "advisor"
	Content   string    `json:"content"`
}

// MaxHistoryMessages bounds the per-session conversation history.
const MaxHistoryMessages = 50

// AppendHistory adds a message, trimming the oldest entries past the cap.
func (s *Session) AppendHistory(role, content string) {
	s.History = append(s.History, HistoryMessage{
		Timestamp: time.Now().UTC(),
		Role:      role,
		Content:   content,
	})
	if len(s.History) > MaxHistoryMessages {
		s.History = s.History[len(s.History)-MaxHistoryMessages:]
	}
}

// Touch updates the last-activity timestamp.
func (s *Session) Touch() {
	s.LastActivity = time.Now().UTC()
}
