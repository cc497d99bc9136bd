// Package notification delivers lifecycle events to the downstream
// notification pipeline. The engine treats every implementation here as
// best-effort: failures are logged by the caller, never propagated to users.
package notification

import "context"

// WelcomeInfo is the post-registration payload.
type WelcomeInfo struct {
	EmailAddress string `json:"emailAddress"`
	FirstName    string `json:"firstName"`
}

// ForgotPasswordInfo carries the password-reset link.
type ForgotPasswordInfo struct {
	EmailAddress     string `json:"emailAddress"`
	FirstName        string `json:"firstName"`
	PasswordResetURL string `json:"passwordResetUrl"`
}

// Nop discards all events. Used when no delivery backend is configured.
type Nop struct{}

func (Nop) NotifyRegistered(context.Context, string, string) error { return nil }

func (Nop) NotifyForgotPassword(context.Context, string, string, string) error { return nil }
