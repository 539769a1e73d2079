package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/devtrack/internal/events"
	"github.com/spec-kit/devtrack/internal/service"
)

// RecurrenceWorker runs recurrence detection whenever an issue enters the
// open state. Detection failures are logged, never propagated: a broken link
// must not fail the mutation that triggered it.
type RecurrenceWorker struct {
	recurrence *service.RecurrenceService
	log        *zap.Logger
}

// NewRecurrenceWorker constructs the worker.
func NewRecurrenceWorker(recurrence *service.RecurrenceService, log *zap.Logger) *RecurrenceWorker {
	return &RecurrenceWorker{recurrence: recurrence, log: log}
}

// Register subscribes the worker to issue creation and reopen events.
func (w *RecurrenceWorker) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventIssueCreated, w.handle)
	dispatcher.Subscribe(events.EventIssueReopened, w.handle)
}

func (w *RecurrenceWorker) handle(ctx context.Context, event events.Event) error {
	link, err := w.recurrence.DetectRecurrence(ctx, event.IssueID)
	if err != nil {
		w.log.Warn("recurrence detection failed",
			zap.String("issue_id", event.IssueID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
		return err
	}
	if link.Linked && link.ParentIssueID != nil {
		w.log.Debug("issue linked to recurrence chain",
			zap.String("issue_id", event.IssueID),
			zap.String("root_id", *link.ParentIssueID),
		)
	}
	return nil
}
