package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/admissions/internal/server/auth"
	"github.com/dmitrijs2005/admissions/internal/server/blobstore"
	"github.com/dmitrijs2005/admissions/internal/server/models"
	"github.com/dmitrijs2005/admissions/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const applicationNotFound = "Application not found"

func (h *Handler) submitApplication(w http.ResponseWriter, r *http.Request) {
	caller := auth.IdentityFromContext(r.Context())
	if caller == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var fields services.Fields
	if err := decodeJSON(w, r, &fields); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid application data")
		return
	}

	created, err := h.apps.SubmitOrUpdate(r.Context(), caller, fields)
	if err != nil {
		writeError(w, err, "")
		return
	}
	h.metrics.RecordSubmission(created)

	if created {
		writeMessage(w, http.StatusCreated, "Application submitted successfully")
		return
	}
	writeMessage(w, http.StatusOK, "Application updated successfully")
}

// uploadFile stores a multipart "file" part and records its path in the
// caller's application under the "type" form field.
func (h *Handler) uploadFile(w http.ResponseWriter, r *http.Request) {
	caller := auth.IdentityFromContext(r.Context())
	if caller == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeMessage(w, http.StatusBadRequest, "No file part")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		// a part without a filename is parsed as a plain value
		if _, ok := r.MultipartForm.Value["file"]; ok {
			writeMessage(w, http.StatusBadRequest, "No selected file")
			return
		}
		writeMessage(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeMessage(w, http.StatusBadRequest, "No selected file")
		return
	}

	kind := r.FormValue("type")
	if !models.IsFileKind(kind) {
		writeMessage(w, http.StatusBadRequest, "Invalid file type")
		return
	}

	key, err := blobstore.ObjectKey(caller.UserID, kind, header.Filename)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid file name")
		return
	}

	path, err := h.blobs.Put(r.Context(), key, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		h.logger.Error(r.Context(), "store upload", "error", err, "kind", kind)
		writeMessage(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	recorded, err := h.apps.AttachFile(r.Context(), caller, kind, path)
	if err != nil {
		writeError(w, err, "")
		return
	}
	if !recorded {
		// stored, but there is no application to point at it yet
		h.logger.Warn(r.Context(), "upload not recorded", "user_id", caller.UserID, "kind", kind, "path", path)
	}
	h.metrics.RecordUpload(kind)

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "File uploaded successfully",
		"path":    path,
	})
}

// getApplication returns the application of ?user_id=, defaulting to the
// caller's own.
func (h *Handler) getApplication(w http.ResponseWriter, r *http.Request) {
	caller := auth.IdentityFromContext(r.Context())
	if caller == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	target := r.URL.Query().Get("user_id")
	if target == "" {
		target = caller.UserID
	}

	app, err := h.apps.GetByUser(r.Context(), caller, target)
	if err != nil {
		writeError(w, err, applicationNotFound)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) getApplicationByID(w http.ResponseWriter, r *http.Request) {
	app, err := h.apps.GetByID(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, applicationNotFound)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	list, err := h.apps.ListAll(r.Context(), auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) updateApplication(w http.ResponseWriter, r *http.Request) {
	caller := auth.IdentityFromContext(r.Context())
	if !auth.RequireAdmin(caller) {
		writeError(w, auth.AuthorizeAdmin(caller), "")
		return
	}

	id := chi.URLParam(r, "id")

	var fields services.Fields
	if err := decodeJSON(w, r, &fields); err != nil {
		// a missing application is reported before a bad body
		if _, err := h.apps.GetByID(r.Context(), caller, id); err != nil {
			writeError(w, err, applicationNotFound)
			return
		}
		writeMessage(w, http.StatusBadRequest, "Invalid application data")
		return
	}

	if err := h.apps.UpdateByID(r.Context(), caller, id, fields); err != nil {
		writeError(w, err, applicationNotFound)
		return
	}
	writeMessage(w, http.StatusOK, "Application updated successfully")
}

func (h *Handler) deleteApplication(w http.ResponseWriter, r *http.Request) {
	err := h.apps.DeleteByID(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, applicationNotFound)
		return
	}
	writeMessage(w, http.StatusOK, "Application deleted successfully")
}
