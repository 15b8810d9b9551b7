// Package reward keeps the focus balance that completed and canceled
// sessions adjust.
package reward

import "github.com/rpggio/focusgate/internal/domain/history"

// Amounts configures the balance change per session outcome.
type Amounts struct {
	Completion   int `yaml:"completion"`
	Cancellation int `yaml:"cancellation"`
}

// DefaultAmounts is used when no rewards are configured.
var DefaultAmounts = Amounts{Completion: 10, Cancellation: -5}

// Apply returns the balance after a session with status. Uncounted
// sessions leave the balance alone; the balance never drops below zero.
func Apply(balance int, s history.FocusSession, amounts Amounts) int {
	if !s.IsCounted {
		return balance
	}
	switch s.Status {
	case history.StatusCompleted:
		balance += amounts.Completion
	case history.StatusCanceled:
		balance += amounts.Cancellation
	}
	if balance < 0 {
		return 0
	}
	return balance
}
