package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

type sessionHandlerFunc func(w http.ResponseWriter, r *http.Request, session domain.Session)

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// requireSession resolves the bearer token and hands the session to next.
func (rt *Router) requireSession(next sessionHandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, r, http.StatusUnauthorized, "missing bearer token")
			return
		}
		session, err := rt.auth.Resolve(r.Context(), token)
		if err != nil {
			respondError(w, r, err)
			return
		}
		next(w, r, *session)
	})
}

type loginRequest struct {
	MobileNumber string `json:"mobileNumber"`
	OTP          string `json:"otp"`
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		rt.recordLogin("invalid")
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	result, err := rt.auth.Login(r.Context(), req.MobileNumber, req.OTP)
	if err != nil {
		switch {
		case domain.IsKind(err, domain.ErrInvalidInput):
			rt.recordLogin("invalid")
		case domain.IsKind(err, domain.ErrUnauthorized):
			rt.recordLogin("rejected")
		default:
			rt.recordLogin("error")
		}
		respondError(w, r, err)
		return
	}
	rt.recordLogin("success")
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) handleLogout(w http.ResponseWriter, r *http.Request, _ domain.Session) {
	if err := rt.auth.Logout(r.Context(), bearerToken(r)); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) handleSession(w http.ResponseWriter, _ *http.Request, session domain.Session) {
	writeJSON(w, http.StatusOK, session)
}

func (rt *Router) handleDashboard(w http.ResponseWriter, r *http.Request, session domain.Session) {
	dashboard, err := rt.auth.Dashboard(r.Context(), session)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

const maxJSONBodyBytes = 1 << 20

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected trailing data")
	}
	return nil
}

func (rt *Router) recordLogin(result string) {
	if rt.metrics != nil {
		rt.metrics.RecordLogin(result)
	}
}
