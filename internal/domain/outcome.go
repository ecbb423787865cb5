package domain

import "fmt"

// OutcomeKind classifies how the processor's payment UI finished.
type OutcomeKind string

const (
	OutcomeCompleted OutcomeKind = "completed"
	OutcomeCanceled  OutcomeKind = "canceled"
	OutcomeFailed    OutcomeKind = "failed"
)

// PaymentOutcome is the result the client observes from the processor UI.
// Only a failed outcome carries a reason.
type PaymentOutcome struct {
	kind   OutcomeKind
	reason string
}

func Completed() PaymentOutcome { return PaymentOutcome{kind: OutcomeCompleted} }

func Canceled() PaymentOutcome { return PaymentOutcome{kind: OutcomeCanceled} }

func Failed(reason string) PaymentOutcome {
	if reason == "" {
		reason = "unknown error"
	}
	return PaymentOutcome{kind: OutcomeFailed, reason: reason}
}

func (o PaymentOutcome) Kind() OutcomeKind { return o.kind }

// Reason returns the failure reason and whether the outcome is a failure.
func (o PaymentOutcome) Reason() (string, bool) {
	return o.reason, o.kind == OutcomeFailed
}

func (o PaymentOutcome) String() string {
	if o.kind == OutcomeFailed {
		return fmt.Sprintf("failed: %s", o.reason)
	}
	return string(o.kind)
}

// ParseOutcome rebuilds an outcome from its wire form.
func ParseOutcome(kind, reason string) (PaymentOutcome, error) {
	switch OutcomeKind(kind) {
	case OutcomeCompleted:
		return Completed(), nil
	case OutcomeCanceled:
		return Canceled(), nil
	case OutcomeFailed:
		return Failed(reason), nil
	default:
		return PaymentOutcome{}, &ValidationError{Field: "outcome", Reason: fmt.Sprintf("unknown kind %q", kind)}
	}
}
