package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"infinance/internal/core"
)

// Message kinds carried on the events queue.
const (
	KindLedgerChanged = "ledger.changed"
	KindGoalCompleted = "goal.completed"
)

// Envelope wraps every published event so consumers can route on Kind
// before unmarshaling the payload.
type Envelope struct {
	Kind      string          `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// LedgerChangedMessage announces that an entity was created, updated or
// deleted. Workers reload what they need; the message carries no state.
type LedgerChangedMessage struct {
	Entity string `json:"entity"` // transaction, category, investment, snapshot
	Action string `json:"action"` // created, updated, deleted, imported
	ID     string `json:"id"`
}

// GoalCompletedMessage announces that a deposit pushed a goal across its
// target.
type GoalCompletedMessage struct {
	InvestmentID string     `json:"investmentId"`
	GoalName     string     `json:"goalName"`
	GoalValue    core.Money `json:"goalValue"`
}

func NewLedgerChanged(entity, action, id string) LedgerChangedMessage {
	return LedgerChangedMessage{Entity: entity, Action: action, ID: id}
}

func NewGoalCompleted(signal core.GoalCompleted) GoalCompletedMessage {
	return GoalCompletedMessage{
		InvestmentID: signal.InvestmentID,
		GoalName:     signal.GoalName,
		GoalValue:    signal.GoalValue,
	}
}

func wrap(kind string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return json.Marshal(Envelope{Kind: kind, Timestamp: time.Now(), Payload: body})
}

// DecodeEnvelope parses the outer envelope without touching the payload.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Kind == "" {
		return Envelope{}, fmt.Errorf("envelope missing kind")
	}
	return env, nil
}

func (e Envelope) LedgerChanged() (LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(e.Payload, &msg); err != nil {
		return LedgerChangedMessage{}, fmt.Errorf("unmarshal ledger change: %w", err)
	}
	return msg, nil
}

func (e Envelope) GoalCompleted() (GoalCompletedMessage, error) {
	var msg GoalCompletedMessage
	if err := json.Unmarshal(e.Payload, &msg); err != nil {
		return GoalCompletedMessage{}, fmt.Errorf("unmarshal goal completion: %w", err)
	}
	return msg, nil
}
