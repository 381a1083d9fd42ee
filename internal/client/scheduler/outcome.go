package scheduler

import "fmt"

// OutcomeKind tags the result of one job run.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeTransientFailure
	OutcomeFatalFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeTransientFailure:
		return "transient_failure"
	case OutcomeFatalFailure:
		return "fatal_failure"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is what a job reports back. Reason is empty on success.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

func Success() Outcome { return Outcome{Kind: OutcomeSuccess} }

// TransientFailure asks for a retry with backoff.
func TransientFailure(reason string) Outcome {
	return Outcome{Kind: OutcomeTransientFailure, Reason: reason}
}

// FatalFailure is logged and not retried until the next regular trigger.
func FatalFailure(reason string) Outcome {
	return Outcome{Kind: OutcomeFatalFailure, Reason: reason}
}

func (o Outcome) String() string {
	if o.Reason == "" {
		return o.Kind.String()
	}
	return o.Kind.String() + ": " + o.Reason
}
