// Package handler is the thin HTTP layer over the credential engine. It owns
// field-level input validation and the translation of domain failures into
// transport responses; business rules stay in the service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vouch/internal/platform/metrics"
	"vouch/internal/platform/middleware"
	dErrors "vouch/pkg/domain-errors"
)

// Service is the engine surface the handler consumes.
type Service interface {
	Register(ctx context.Context, emailAddr, firstName, lastName, password string) (string, error)
	Login(ctx context.Context, emailAddr, password string) (string, error)
	Validate(ctx context.Context, emailAddr, tokenValue string) bool
	IssueResetToken(ctx context.Context, emailAddr string) (string, error)
	ResetPassword(ctx context.Context, emailAddr, newPassword, presentedValue string) (string, error)
}

// authenticationResponse is the envelope every credential endpoint answers with.
type authenticationResponse struct {
	Valid     bool   `json:"valid"`
	UserID    string `json:"userId"`
	AuthToken string `json:"authToken"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler wires the auth endpoints to the engine.
type Handler struct {
	auth    Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(auth Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{auth: auth, logger: logger, metrics: m}
}

// Register mounts the auth routes with the shared middleware chain.
func (h *Handler) Register(r chi.Router) {
	authRouter := chi.NewRouter()
	authRouter.Use(middleware.Recovery(h.logger))
	authRouter.Use(middleware.RequestID)
	authRouter.Use(middleware.Logger(h.logger))
	authRouter.Use(middleware.Timeout(30 * time.Second))
	authRouter.Use(middleware.ContentTypeJSON)
	if h.metrics != nil {
		authRouter.Use(middleware.Latency(h.metrics))
	}

	authRouter.Post("/auth/register", h.handleRegister)
	authRouter.Post("/auth/login", h.handleLogin)
	authRouter.Post("/auth/validate", h.handleValidate)
	authRouter.Get("/auth/forgotpwd", h.handleForgotPassword)
	authRouter.Post("/auth/pwdreset", h.handlePasswordReset)

	r.Mount("/", authRouter)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.auth.Register(r.Context(), req.EmailAddr, req.FirstName, req.LastName, req.Password)
	if err != nil {
		h.logRejection(r, "register", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authenticationResponse{
		Valid:     true,
		UserID:    req.EmailAddr,
		AuthToken: token,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.auth.Login(r.Context(), req.EmailAddr, req.Password)
	if err != nil {
		h.logRejection(r, "login", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authenticationResponse{
		Valid:     true,
		UserID:    req.EmailAddr,
		AuthToken: token,
	})
}

// handleValidate always answers 200; validity travels in the body.
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	valid := h.auth.Validate(r.Context(), req.UserID, req.AuthToken)
	writeJSON(w, http.StatusOK, authenticationResponse{
		Valid:     valid,
		UserID:    req.UserID,
		AuthToken: req.AuthToken,
	})
}

// handleForgotPassword issues a reset token and lets the engine hand the
// reset link to the notifier. The original service revealed whether the
// email was registered (200 vs 400) and that behavior is kept.
func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	emailAddr := r.URL.Query().Get("id")
	if emailAddr == "" {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "id query parameter is required"))
		return
	}

	if _, err := h.auth.IssueResetToken(r.Context(), emailAddr); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			writeError(w, dErrors.New(dErrors.CodeBadRequest, "email is not registered"))
			return
		}
		h.logRejection(r, "forgotpwd", err)
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.auth.ResetPassword(r.Context(), req.UserID, req.Password, req.Token)
	if err != nil {
		h.logRejection(r, "pwdreset", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authenticationResponse{
		Valid:     true,
		UserID:    req.UserID,
		AuthToken: token,
	})
}

func (h *Handler) logRejection(r *http.Request, op string, err error) {
	ctx := r.Context()
	if dErrors.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "operation failed",
			"op", op,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		return
	}
	h.logger.WarnContext(ctx, "operation rejected",
		"op", op,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError translates coded domain errors to the JSON error envelope.
// Uncoded errors become opaque 500s so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, dErrors.StatusFor(err), errorResponse{Error: dErrors.Message(err)})
}
