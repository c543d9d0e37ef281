package states

import (
	"github.com/shopspring/decimal"

	"smm-bot/internal/stories/orders"
)

// Step is the conversation state of one actor.
type Step string

const (
	StepNone Step = "none"

	// deposit flow
	StepDepositCustomAmount Step = "dep_custom_amount"

	// order flow
	StepOrderQuantity Step = "ord_quantity"
	StepOrderLink     Step = "ord_link"
	StepOrderConfirm  Step = "ord_confirm"

	// support
	StepSupportMessage Step = "sup_message"
	StepAdminReply     Step = "adm_reply"
)

// ConsumesText reports whether free text sent while in s belongs to the step.
func (s Step) ConsumesText() bool {
	switch s {
	case StepDepositCustomAmount, StepOrderQuantity, StepOrderLink, StepSupportMessage, StepAdminReply:
		return true
	}
	return false
}

// Session is the transient per-actor state accumulated across steps.
type Session struct {
	Step                 Step
	SelectedService      *orders.ServiceRef
	Quantity             int64
	Link                 string
	PendingDepositAmount *decimal.Decimal
	ReplyTarget          int64
}

// Draft returns the order being assembled in the session.
func (s Session) Draft() orders.Draft {
	return orders.Draft{
		Service:  s.SelectedService,
		Quantity: s.Quantity,
		Link:     s.Link,
	}
}

func newSession() *Session {
	return &Session{Step: StepNone}
}
