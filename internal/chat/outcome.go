package chat

import "github.com/hpn/hpn-g-chat/internal/domain"

// ResponseFunc receives the outcome of a request. errorMessage is empty and
// success is true exactly when the request succeeded.
type ResponseFunc func(completion domain.Completion, errorMessage string, success bool)

// Outcome is the terminal result of one request.
type Outcome struct {
	Completion   domain.Completion
	ErrorMessage string
	Success      bool

	// Err is the typed failure (*RequestError), nil on success.
	Err error
}

func successOutcome(c domain.Completion) Outcome {
	return Outcome{Completion: c, Success: true}
}

func failureOutcome(err *RequestError) Outcome {
	return Outcome{ErrorMessage: err.Message, Err: err}
}

// deliver invokes fn with the outcome's callback arguments.
func (o Outcome) deliver(fn ResponseFunc) {
	fn(o.Completion, o.ErrorMessage, o.Success)
}
