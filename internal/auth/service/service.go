// Package service implements the credential lifecycle engine: registration,
// login, token validation, and the password-reset flow. All durable state
// lives behind the store contracts; the engine itself is stateless and safe
// for concurrent use.
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	authmetrics "vouch/internal/auth/metrics"
	"vouch/internal/auth/models"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/email"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/requestcontext"
)

// UserStore persists identity records keyed by normalized email.
// Create must be an atomic check-and-insert: two concurrent creates for the
// same key must never both succeed.
type UserStore interface {
	// Create inserts a new identity; sentinel.ErrConflict if the key exists.
	Create(ctx context.Context, user *models.User) error
	// FindByEmail returns the identity or sentinel.ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Update replaces an existing record; sentinel.ErrNotFound if absent.
	Update(ctx context.Context, user *models.User) error
}

// TokenStore persists the single credential slot per identity. Put and Delete
// must be atomic at the granularity of one owner key.
type TokenStore interface {
	// Fetch returns the slot's token or sentinel.ErrNotFound.
	Fetch(ctx context.Context, ownerEmail string) (*models.Token, error)
	// FetchIfMatches returns the token only when both owner and value match;
	// otherwise sentinel.ErrNotFound, so a guessed value cannot reveal
	// whether the slot is occupied.
	FetchIfMatches(ctx context.Context, ownerEmail, value string) (*models.Token, error)
	// Put upserts the slot unconditionally, replacing any prior occupant.
	Put(ctx context.Context, token *models.Token) error
	// Delete clears the slot; no-op when already empty.
	Delete(ctx context.Context, ownerEmail string) error
}

// PasswordHasher is the one-way hash-and-verify capability.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// ValueMinter produces opaque unguessable token values.
type ValueMinter interface {
	NewValue() string
}

// Notifier receives lifecycle events. Registration delivery is fire-and-forget;
// forgot-password delivery happens before IssueResetToken returns because the
// reset link must exist first, but its failure is still not surfaced.
type Notifier interface {
	NotifyRegistered(ctx context.Context, emailAddr, firstName string) error
	NotifyForgotPassword(ctx context.Context, emailAddr, firstName, resetURL string) error
}

// Config carries the engine's tunables.
type Config struct {
	SessionTokenTTL time.Duration
	ResetTokenTTL   time.Duration
	// FrontendRootURL anchors the reset link embedded in notifications.
	FrontendRootURL string
}

const (
	defaultSessionTokenTTL = 24 * time.Hour
	defaultResetTokenTTL   = 72 * time.Hour

	notifyTimeout = 5 * time.Second
)

// Service orchestrates the stores, the hasher, and the notifier. It performs
// no internal retries and no cross-store transactions; every committed prefix
// of an operation is itself a valid state.
type Service struct {
	users    UserStore
	tokens   TokenStore
	hasher   PasswordHasher
	minter   ValueMinter
	notifier Notifier
	cfg      Config
	logger   *slog.Logger
	metrics  *authmetrics.Metrics
	tracer   trace.Tracer
}

// New constructs the engine. Zero TTLs pick up the 24h/72h defaults.
func New(
	users UserStore,
	tokens TokenStore,
	hasher PasswordHasher,
	minter ValueMinter,
	notifier Notifier,
	cfg Config,
	logger *slog.Logger,
	metrics *authmetrics.Metrics,
) *Service {
	if cfg.SessionTokenTTL <= 0 {
		cfg.SessionTokenTTL = defaultSessionTokenTTL
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = defaultResetTokenTTL
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		minter:   minter,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		tracer:   otel.Tracer("vouch/internal/auth/service"),
	}
}

// Register creates a new identity and returns its first session token.
//
// The existence check before Create is advisory fast-path feedback only;
// correctness against concurrent registration rests entirely on the store's
// atomic create-if-absent.
func (s *Service) Register(ctx context.Context, emailAddr, firstName, lastName, password string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Register")
	defer span.End()

	emailAddr = email.Normalize(emailAddr)

	if _, err := s.users.FindByEmail(ctx, emailAddr); err == nil {
		s.countRegistration(authmetrics.ResultRejected)
		return "", dErrors.New(dErrors.CodeConflict, "email is already registered")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		s.countRegistration(authmetrics.ResultError)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to register")
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		s.countRegistration(authmetrics.ResultError)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to register")
	}

	now := requestcontext.Now(ctx)
	user := models.NewUser(emailAddr, firstName, lastName, digest, now)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Race resolved by the store: some other request won the key.
			s.countRegistration(authmetrics.ResultRejected)
			return "", dErrors.New(dErrors.CodeConflict, "email is already registered")
		}
		s.countRegistration(authmetrics.ResultError)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to register")
	}

	token, err := s.mint(ctx, emailAddr, now, s.cfg.SessionTokenTTL)
	if err != nil {
		s.countRegistration(authmetrics.ResultError)
		return "", err
	}

	// Welcome delivery must never block or fail the registration response.
	go s.notifyRegistered(context.WithoutCancel(ctx), user)

	s.countRegistration(authmetrics.ResultOK)
	return token.Value, nil
}

// Login verifies credentials, replaces whatever occupies the token slot with
// a fresh session token, and bumps the identity's last-active time.
//
// Unknown email and wrong password return the same failure so callers cannot
// enumerate registered identities; the distinction exists only in logs.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Login")
	defer span.End()

	emailAddr = email.Normalize(emailAddr)

	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.InfoContext(ctx, "login rejected", "reason", "unknown email")
			s.countLogin(authmetrics.ResultRejected)
			return "", errInvalidCredentials()
		}
		s.countLogin(authmetrics.ResultError)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to log in")
	}

	if !s.hasher.Verify(password, user.PasswordDigest) {
		s.logger.InfoContext(ctx, "login rejected", "reason", "password mismatch")
		s.countLogin(authmetrics.ResultRejected)
		return "", errInvalidCredentials()
	}

	// Clear the slot first: a pending reset token dies here by design.
	if err := s.tokens.Delete(ctx, emailAddr); err != nil {
		s.countLogin(authmetrics.ResultError)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to log in")
	}

	now := requestcontext.Now(ctx)
	token, err := s.mint(ctx, emailAddr, now, s.cfg.SessionTokenTTL)
	if err != nil {
		s.countLogin(authmetrics.ResultError)
		return "", err
	}

	user.LastActiveAt = now
	if err := s.users.Update(ctx, user); err != nil {
		s.countLogin(authmetrics.ResultError)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to log in")
	}

	s.countLogin(authmetrics.ResultOK)
	return token.Value, nil
}

// Validate reports whether value is the live token for the identity. It is a
// total operation: absence, mismatch, expiry, and store failure all come back
// as false. Expired tokens are left in place; the next issuance overwrites
// the slot anyway.
func (s *Service) Validate(ctx context.Context, emailAddr, value string) bool {
	ctx, span := s.tracer.Start(ctx, "auth.Validate")
	defer span.End()

	emailAddr = email.Normalize(emailAddr)

	token, err := s.tokens.FetchIfMatches(ctx, emailAddr, value)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.ErrorContext(ctx, "token lookup failed", "error", err)
			s.countValidation(authmetrics.ResultError)
			return false
		}
		s.countValidation(authmetrics.ResultRejected)
		return false
	}

	live := token.LiveAt(requestcontext.Now(ctx))
	if live {
		s.countValidation(authmetrics.ResultOK)
	} else {
		s.countValidation(authmetrics.ResultRejected)
	}
	return live
}

// IssueResetToken mints a 72h reset token into the identity's slot,
// overwriting any live session token, and hands the reset link to the
// notifier before returning. Delivery failure is logged, not surfaced: the
// token is already committed.
//
// Unlike Login, an unknown email is reported as NotFound; the boundary layer
// decides whether to reveal that or answer uniformly.
func (s *Service) IssueResetToken(ctx context.Context, emailAddr string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "auth.IssueResetToken")
	defer span.End()

	emailAddr = email.Normalize(emailAddr)

	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "email is not registered")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue reset token")
	}

	now := requestcontext.Now(ctx)
	token, err := s.mint(ctx, emailAddr, now, s.cfg.ResetTokenTTL)
	if err != nil {
		return "", err
	}

	nctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := s.notifier.NotifyForgotPassword(nctx, user.Email, displayName(user), s.resetURL(user.Email, token.Value)); err != nil {
		s.logger.ErrorContext(ctx, "forgot-password notification failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}

	if s.metrics != nil {
		s.metrics.ResetTokens.Inc()
	}
	return token.Value, nil
}

// ResetPassword replaces the identity's password after checking the presented
// value against the current slot occupant. Only exact value match is
// enforced; expiry is deliberately not checked here, matching the slot's
// established coupling. On success the slot holds a fresh session token.
func (s *Service) ResetPassword(ctx context.Context, emailAddr, newPassword, presentedValue string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "auth.ResetPassword")
	defer span.End()

	emailAddr = email.Normalize(emailAddr)

	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.InfoContext(ctx, "password reset rejected", "reason", "unknown email")
			s.countReset(authmetrics.ResultRejected)
			return "", errInvalidCredentials()
		}
		s.countReset(authmetrics.ResultError)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset password")
	}

	current, err := s.tokens.Fetch(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.InfoContext(ctx, "password reset rejected", "reason", "no token issued")
			s.countReset(authmetrics.ResultRejected)
			return "", errInvalidCredentials()
		}
		s.countReset(authmetrics.ResultError)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset password")
	}

	if subtle.ConstantTimeCompare([]byte(current.Value), []byte(presentedValue)) != 1 {
		s.logger.InfoContext(ctx, "password reset rejected", "reason", "token mismatch")
		s.countReset(authmetrics.ResultRejected)
		return "", errInvalidCredentials()
	}

	if err := s.tokens.Delete(ctx, emailAddr); err != nil {
		s.countReset(authmetrics.ResultError)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset password")
	}

	now := requestcontext.Now(ctx)
	token, err := s.mint(ctx, emailAddr, now, s.cfg.SessionTokenTTL)
	if err != nil {
		s.countReset(authmetrics.ResultError)
		return "", err
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.countReset(authmetrics.ResultError)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset password")
	}
	user.PasswordDigest = digest
	if err := s.users.Update(ctx, user); err != nil {
		s.countReset(authmetrics.ResultError)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset password")
	}

	s.countReset(authmetrics.ResultOK)
	return token.Value, nil
}

// mint writes a fresh token into the owner's slot, replacing any occupant.
func (s *Service) mint(ctx context.Context, ownerEmail string, now time.Time, ttl time.Duration) (*models.Token, error) {
	token, err := models.NewToken(ownerEmail, s.minter.NewValue(), now, ttl)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint token")
	}
	if err := s.tokens.Put(ctx, token); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint token")
	}
	return token, nil
}

func (s *Service) notifyRegistered(ctx context.Context, user *models.User) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := s.notifier.NotifyRegistered(ctx, user.Email, displayName(user)); err != nil {
		s.logger.ErrorContext(ctx, "post-registration notification failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

// displayName picks the name notifications address the user by, deriving one
// from the email when the record has no first name.
func displayName(user *models.User) string {
	if user.FirstName != "" {
		return user.FirstName
	}
	first, _ := email.DeriveNameFromEmail(user.Email)
	return first
}

func (s *Service) resetURL(emailAddr, tokenValue string) string {
	return s.cfg.FrontendRootURL + "/pwdreset?id=" + url.QueryEscape(emailAddr) + "&token=" + url.QueryEscape(tokenValue)
}

// errInvalidCredentials is the single failure callers see for unknown email,
// password mismatch, and token mismatch alike.
func errInvalidCredentials() error {
	return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
}

func (s *Service) countRegistration(result string) {
	if s.metrics != nil {
		s.metrics.Registrations.WithLabelValues(result).Inc()
	}
}

func (s *Service) countLogin(result string) {
	if s.metrics != nil {
		s.metrics.Logins.WithLabelValues(result).Inc()
	}
}

func (s *Service) countValidation(result string) {
	if s.metrics != nil {
		s.metrics.TokenValidations.WithLabelValues(result).Inc()
	}
}

func (s *Service) countReset(result string) {
	if s.metrics != nil {
		s.metrics.PasswordResets.WithLabelValues(result).Inc()
	}
}
