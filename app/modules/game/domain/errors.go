package gamedomain

import "fmt"

// ConfigurationError reports an unusable game configuration. It is fatal at
// startup.
type ConfigurationError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid game configuration: %s=%q", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid game configuration: %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// RejectionReason names why a bet was refused.
type RejectionReason string

const (
	ReasonGameClosed    RejectionReason = "game_closed"
	ReasonAlreadyBet    RejectionReason = "already_bet"
	ReasonNotFuture     RejectionReason = "not_future"
	ReasonOutOfRange    RejectionReason = "out_of_range"
	ReasonInvalidFormat RejectionReason = "invalid_format"
)

// ValidationError is a bet rejection. Message is safe to show to the
// participant. Existing is set for ReasonAlreadyBet when the prior bet is known.
type ValidationError struct {
	Reason   RejectionReason
	Message  string
	Existing *Bet
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Rejected builds a ValidationError.
func Rejected(reason RejectionReason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// AlreadyBet builds the duplicate-bet rejection carrying the existing bet.
func AlreadyBet(existing *Bet) *ValidationError {
	return &ValidationError{
		Reason:   ReasonAlreadyBet,
		Message:  "you already placed a bet for this game",
		Existing: existing,
	}
}
