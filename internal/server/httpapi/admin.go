package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

func (h *Handlers) adminUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.admin.Users(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) adminSetUserStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.UserStatus `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.admin.SetUserStatus(r.Context(), actor(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) adminReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.admin.Reports(r.Context(), models.ReportFilter{
		Search: q.Get("search"),
		Status: models.ReportStatus(q.Get("status")),
		Type:   models.ReportType(q.Get("type")),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) adminResolveReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.admin.ResolveReport(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handlers) adminRejectReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.admin.RejectReport(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handlers) adminDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteNote(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) adminStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.admin.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
