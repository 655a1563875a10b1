package stages

import "errors"

var (
	ErrInputMissing      = errors.New("required input missing")
	ErrIncorrect         = errors.New("input incorrect")
	ErrAccessDenied      = errors.New("access denied")
	ErrTransitionPending = errors.New("stage transition pending")
	ErrAwaitingCode      = errors.New("stage access code required")
	ErrNoPendingUnlock   = errors.New("no stage awaiting an access code")
	ErrGameCompleted     = errors.New("game already completed")
	ErrWrongStage        = errors.New("stage is not active")
	ErrInvalidStage      = errors.New("invalid stage")
	ErrInvalidPhase      = errors.New("invalid phase")
)

// Feedback kinds, matching how the page styles the message.
const (
	KindSuccess = "success"
	KindWarning = "warning"
	KindError   = "error"
)

// Feedback is a player-facing message wrapping one of the sentinel errors.
type Feedback struct {
	Kind    string
	Message string
	Err     error
}

func (f *Feedback) Error() string { return f.Message }
func (f *Feedback) Unwrap() error { return f.Err }

func missing(msg string) error {
	return &Feedback{Kind: KindWarning, Message: msg, Err: ErrInputMissing}
}

func incorrect(msg string) error {
	return &Feedback{Kind: KindError, Message: msg, Err: ErrIncorrect}
}

func denied(msg string) error {
	return &Feedback{Kind: KindError, Message: msg, Err: ErrAccessDenied}
}
