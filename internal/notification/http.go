package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	postRegisterPath   = "/notification/postregister"
	forgotPasswordPath = "/notification/forgotpwd"
)

// HTTPNotifier posts events to the notification service. Transient failures
// are retried with capped exponential backoff; the caller's context bounds
// the whole attempt.
type HTTPNotifier struct {
	baseURL string
	client  *http.Client
}

func NewHTTP(baseURL string) *HTTPNotifier {
	return &HTTPNotifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 3 * time.Second},
	}
}

func (n *HTTPNotifier) NotifyRegistered(ctx context.Context, emailAddr, firstName string) error {
	return n.post(ctx, postRegisterPath, WelcomeInfo{
		EmailAddress: emailAddr,
		FirstName:    firstName,
	})
}

func (n *HTTPNotifier) NotifyForgotPassword(ctx context.Context, emailAddr, firstName, resetURL string) error {
	return n.post(ctx, forgotPasswordPath, ForgotPasswordInfo{
		EmailAddress:     emailAddr,
		FirstName:        firstName,
		PasswordResetURL: resetURL,
	})
}

func (n *HTTPNotifier) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	backoff := retry.WithMaxRetries(3, retry.NewExponential(200*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer func() {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}()

		switch {
		case resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("notification service returned %d", resp.StatusCode))
		case resp.StatusCode >= 400:
			return fmt.Errorf("notification service rejected event: %d", resp.StatusCode)
		}
		return nil
	})
}
