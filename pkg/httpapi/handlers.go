package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/otpgate/pkg/authenticator"
	"github.com/dmitrymomot/otpgate/pkg/logger"
	"github.com/dmitrymomot/otpgate/pkg/session"
)

type enrollRequest struct {
	Issuer string `json:"issuer"`
}

type enrollmentResponse struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
	QRCode          string `json:"qr_code"`
}

type verifyRequest struct {
	Code string `json:"code"`
}

type createSessionRequest struct {
	UserID  string `json:"user_id"`
	Code    string `json:"code"`
	Timeout string `json:"timeout,omitempty"` // Go duration, e.g. "15m"
}

type sessionResponse struct {
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// decode reads an optional JSON body into v.
func (a *api) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		fail(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (a *api) setupSecret(w http.ResponseWriter, r *http.Request) {
	a.enroll(w, r, a.svc.SetupSecret)
}

func (a *api) resetSecret(w http.ResponseWriter, r *http.Request) {
	a.enroll(w, r, a.svc.ResetSecret)
}

func (a *api) enroll(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, userID, issuer string) (authenticator.Enrollment, error),
) {
	var req enrollRequest
	if !a.decode(w, r, &req) {
		return
	}

	e, err := op(r.Context(), chi.URLParam(r, "userID"), req.Issuer)
	switch {
	case errors.Is(err, authenticator.ErrInvalidUserID):
		fail(w, http.StatusBadRequest, CodeBadRequest, "user id is required")
		return
	case errors.Is(err, authenticator.ErrSecretAlreadyExists):
		fail(w, http.StatusConflict, CodeConflict, "secret already configured")
		return
	case err != nil:
		a.logger.ErrorContext(r.Context(), "enrollment failed", logger.Error(err))
		fail(w, http.StatusInternalServerError, CodeInternal, "enrollment failed")
		return
	}

	qr, err := a.svc.ProvisioningQRDataURI(e.ProvisioningURI)
	if err != nil {
		// The secret is stored; the client can still enroll from the URI.
		a.logger.WarnContext(r.Context(), "qr code rendering failed", logger.Error(err))
	}

	w.Header().Set("Cache-Control", "no-store")
	created(w, enrollmentResponse{
		Secret:          e.Secret,
		ProvisioningURI: e.ProvisioningURI,
		QRCode:          qr,
	})
}

func (a *api) hasSecret(w http.ResponseWriter, r *http.Request) {
	ok(w, map[string]bool{"configured": a.svc.HasSecret(r.Context(), chi.URLParam(r, "userID"))})
}

func (a *api) removeSecret(w http.ResponseWriter, r *http.Request) {
	err := a.svc.RemoveSecret(r.Context(), chi.URLParam(r, "userID"))
	switch {
	case err == nil:
		noContent(w)
	case errors.Is(err, authenticator.ErrSecretNotFound):
		fail(w, http.StatusNotFound, CodeNotFound, "no secret configured")
	case errors.Is(err, authenticator.ErrInvalidUserID):
		fail(w, http.StatusBadRequest, CodeBadRequest, "user id is required")
	default:
		a.logger.ErrorContext(r.Context(), "remove secret failed", logger.Error(err))
		fail(w, http.StatusInternalServerError, CodeInternal, "remove secret failed")
	}
}

func (a *api) verifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !a.decode(w, r, &req) {
		return
	}
	ok(w, map[string]bool{"valid": a.svc.ValidateCode(r.Context(), chi.URLParam(r, "userID"), req.Code)})
}

func (a *api) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !a.decode(w, r, &req) {
		return
	}

	timeout := a.svc.DefaultSessionTimeout()
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil || d < 0 {
			fail(w, http.StatusBadRequest, CodeBadRequest, "timeout must be a non-negative duration")
			return
		}
		timeout = d
	}

	res := a.svc.CreateSession(r.Context(), req.UserID, req.Code, timeout)
	if !res.OK {
		status, code := http.StatusUnauthorized, CodeUnauthorized
		if res.Message == session.MessageInvalidRequest {
			status, code = http.StatusBadRequest, CodeBadRequest
		}
		fail(w, status, code, res.Message)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	created(w, sessionResponse{SessionID: res.SessionID, ExpiresAt: res.ExpiresAt})
}

func (a *api) listSessions(w http.ResponseWriter, r *http.Request) {
	ok(w, a.svc.ListActiveSessions())
}

func (a *api) validateSession(w http.ResponseWriter, r *http.Request) {
	if !a.svc.ValidateSession(r.Context(), chi.URLParam(r, "sessionID")) {
		fail(w, http.StatusNotFound, CodeNotFound, "session not found or expired")
		return
	}
	ok(w, map[string]bool{"live": true})
}

func (a *api) terminateSession(w http.ResponseWriter, r *http.Request) {
	if !a.svc.TerminateSession(r.Context(), chi.URLParam(r, "sessionID")) {
		fail(w, http.StatusNotFound, CodeNotFound, "session not found")
		return
	}
	noContent(w)
}
