package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/admissions/internal/common"
	"github.com/dmitrijs2005/admissions/internal/server/auth"
	"github.com/dmitrijs2005/admissions/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c credentialsRequest) valid() bool {
	return strings.TrimSpace(c.Email) != "" && c.Password != ""
}

// register creates a student account. Administrators are provisioned out
// of band, so an is_admin key in the body has no effect.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil || !req.valid() {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	id, err := h.users.Register(r.Context(), strings.TrimSpace(req.Email), req.Password, false)
	if err != nil {
		writeError(w, err, "")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user_id": id,
	})
}

type createStudentRequest struct {
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	ContactNumber string `json:"contact_number"`
}

func (h *Handler) createStudent(w http.ResponseWriter, r *http.Request) {
	caller := auth.IdentityFromContext(r.Context())
	if !auth.RequireAdmin(caller) {
		writeError(w, auth.AuthorizeAdmin(caller), "")
		return
	}

	var req createStudentRequest
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Email) == "" {
		writeMessage(w, http.StatusBadRequest, "Email is required")
		return
	}

	res, err := h.users.AdminCreateStudent(r.Context(), caller, strings.TrimSpace(req.Email), services.StudentProfile{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		writeError(w, err, "")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":        "Student created successfully",
		"user_id":        res.UserID,
		"application_id": res.ApplicationID,
		"temp_password":  res.TempPassword,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil || !req.valid() {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	id, err := h.users.Authenticate(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorInvalidCredentials) {
			h.metrics.RecordLogin(false)
		}
		writeError(w, err, "")
		return
	}

	if err := h.sessions.Start(w, *id); err != nil {
		h.logger.Error(r.Context(), "start session", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.metrics.RecordLogin(true)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Login successful",
		"user_id":  id.UserID,
		"is_admin": id.IsAdmin,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.End(w)
	writeMessage(w, http.StatusOK, "Logout successful")
}

func (h *Handler) checkAuth(w http.ResponseWriter, r *http.Request) {
	caller := auth.IdentityFromContext(r.Context())
	if caller == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user_id":       caller.UserID,
		"is_admin":      caller.IsAdmin,
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.ListNonAdminUsers(r.Context(), auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	pw, err := h.users.ResetPassword(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Password reset successfully",
		"temp_password": pw,
	})
}

const debugTimeLayout = "2006-01-02 15:04:05"

// debugCurrentUser reports who the session belongs to. Mounted only when
// debug endpoints are enabled.
func (h *Handler) debugCurrentUser(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format(debugTimeLayout)

	if caller := auth.IdentityFromContext(r.Context()); caller != nil {
		u, err := h.users.Profile(r.Context(), caller)
		if err == nil {
			writeJSON(w, http.StatusOK, map[string]any{
				"user_id":      u.ID,
				"email":        u.Email,
				"is_admin":     u.IsAdmin,
				"current_time": now,
			})
			return
		}
		if !errors.Is(err, common.ErrorNotFound) {
			writeError(w, err, "")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "No user logged in",
		"current_time": now,
	})
}
