package notify

import (
	"go.uber.org/zap"
)

// Dispatcher delivers a templated notification to a recipient.
// Delivery is fire-and-forget: failures are logged, never surfaced.
type Dispatcher interface {
	Send(template, recipient string, data map[string]any)
}

// Template identifiers used by the task lifecycle.
const (
	TemplateTaskAssigned    = "task_assigned"
	TemplatePartnerAttached = "partner_attached"
	TemplatePartnerRequest  = "partner_request"
)

// LogDispatcher records notifications through the structured logger. It
// stands in for a real email/push gateway in development and tests.
type LogDispatcher struct {
	log *zap.SugaredLogger
}

func NewLogDispatcher(log *zap.SugaredLogger) *LogDispatcher {
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) Send(template, recipient string, data map[string]any) {
	d.log.Infow("notification dispatched",
		"template", template,
		"recipient", recipient,
		"data", data,
	)
}

// NopDispatcher drops everything; used where notifications are irrelevant.
type NopDispatcher struct{}

func (NopDispatcher) Send(string, string, map[string]any) {}
