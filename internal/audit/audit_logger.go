package audit

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	SessionID string    `json:"session_id"`
	Reference string    `json:"reference,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

// Logger writes flow events as AUDIT records.
type Logger struct {
	logger *zerolog.Logger
}

// NewLogger logs through the global zerolog logger.
func NewLogger() *Logger {
	return &Logger{}
}

// NewLoggerWith logs through l; used by tests to capture output.
func NewLoggerWith(l zerolog.Logger) *Logger {
	return &Logger{logger: &l}
}

func (a *Logger) LogTransition(sessionID, flow, from, to string) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: "TRANSITION",
		SessionID: sessionID,
		Status:    "SUCCESS",
		Details: map[string]string{
			"flow": flow,
			"from": from,
			"to":   to,
		},
	})
}

func (a *Logger) LogInvestment(sessionID, reference, fundID string, amount int64, status string) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: "INVESTMENT",
		SessionID: sessionID,
		Reference: reference,
		Amount:    amount,
		Status:    status,
		Details:   map[string]string{"fund_id": fundID},
	})
}

func (a *Logger) LogVerification(sessionID, bank, method, status, reason string) {
	details := map[string]string{"bank": bank, "method": method}
	if reason != "" {
		details["reason"] = reason
	}
	a.log(Event{
		Timestamp: time.Now(),
		EventType: "VERIFICATION",
		SessionID: sessionID,
		Status:    status,
		Details:   details,
	})
}

func (a *Logger) LogError(sessionID, operation string, err error) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: "ERROR",
		SessionID: sessionID,
		Status:    "FAILED",
		Details:   map[string]string{"operation": operation, "error": err.Error()},
	})
}

func (a *Logger) log(event Event) {
	data, _ := json.Marshal(event)
	l := &log.Logger
	if a != nil && a.logger != nil {
		l = a.logger
	}
	l.Info().RawJSON("audit", data).Msg("AUDIT")
}
