package worker

import (
	"context"
	"fmt"
	"log/slog"

	"infinance/internal/amqp"
	"infinance/internal/log"
)

// EventHandler routes queue envelopes to their effects: ledger changes
// schedule a mirror sync, goal completions get announced.
type EventHandler struct {
	mirror *Mirror
}

func NewEventHandler(mirror *Mirror) *EventHandler {
	return &EventHandler{mirror: mirror}
}

func (h *EventHandler) Handle(ctx context.Context, env amqp.Envelope) error {
	switch env.Kind {
	case amqp.KindLedgerChanged:
		msg, err := env.LedgerChanged()
		if err != nil {
			return err
		}
		slog.DebugContext(ctx, "Ledger changed",
			log.FieldEntity, msg.Entity, log.FieldAction, msg.Action, "id", msg.ID)
		if h.mirror != nil {
			h.mirror.MarkDirty()
		}
		return nil
	case amqp.KindGoalCompleted:
		msg, err := env.GoalCompleted()
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "Goal completed",
			"investment_id", msg.InvestmentID,
			log.FieldGoalName, msg.GoalName,
			"goal_value", msg.GoalValue.String())
		return nil
	default:
		return fmt.Errorf("unknown event kind: %s", env.Kind)
	}
}
