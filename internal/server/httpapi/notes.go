package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/samudhan2008/sa-notes-beta/internal/catalog"
	"github.com/samudhan2008/sa-notes-beta/internal/common"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

type createNoteRequest struct {
	models.NoteInput
	FileSize int64 `json:"file_size,omitempty"`
}

// criteriaFromQuery reads q, subject, tag (repeated or comma separated),
// sort, page and page_size.
func criteriaFromQuery(v url.Values) (catalog.Criteria, error) {
	sort, err := catalog.ParseSortKey(v.Get("sort"))
	if err != nil {
		return catalog.Criteria{}, err
	}
	page, err := intParam(v, "page")
	if err != nil {
		return catalog.Criteria{}, err
	}
	size, err := intParam(v, "page_size")
	if err != nil {
		return catalog.Criteria{}, err
	}

	var tags []string
	for _, raw := range v["tag"] {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	return catalog.Criteria{
		Query:    strings.TrimSpace(v.Get("q")),
		Tags:     tags,
		Subject:  strings.TrimSpace(v.Get("subject")),
		Sort:     sort,
		Page:     page,
		PageSize: size,
	}, nil
}

func intParam(v url.Values, name string) (int, error) {
	s := v.Get(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", common.ErrorValidation, name)
	}
	return n, nil
}

func (h *Handlers) searchNotes(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.notes.Search(r.Context(), c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) suggest(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query(), "limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.notes.Suggest(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) getNote(w http.ResponseWriter, r *http.Request) {
	n, err := h.notes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) preview(w http.ResponseWriter, r *http.Request) {
	p, err := h.notes.Preview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) download(w http.ResponseWriter, r *http.Request) {
	d, err := h.notes.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) createNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.notes.Create(r.Context(), actor(r), req.NoteInput, req.FileSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handlers) updateNote(w http.ResponseWriter, r *http.Request) {
	var req models.NoteInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.notes.Update(r.Context(), actor(r), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) deleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.Delete(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) markUploaded(w http.ResponseWriter, r *http.Request) {
	n, err := h.notes.MarkUploaded(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) rate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value int `json:"value"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.notes.Rate(r.Context(), actor(r).UserID, chi.URLParam(r, "id"), req.Value)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) comments(w http.ResponseWriter, r *http.Request) {
	list, err := h.notes.Comments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) addComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.notes.AddComment(r.Context(), actor(r).UserID, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) report(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type   models.ReportType `json:"type"`
		Reason string            `json:"reason"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	rep, err := h.notes.Report(r.Context(), actor(r).UserID, chi.URLParam(r, "id"), req.Type, req.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

func (h *Handlers) myNotes(w http.ResponseWriter, r *http.Request) {
	list, err := h.notes.ListByOwner(r.Context(), actor(r).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) bookmarks(w http.ResponseWriter, r *http.Request) {
	list, err := h.notes.Bookmarks(r.Context(), actor(r).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) addBookmark(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.Bookmark(r.Context(), actor(r).UserID, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) removeBookmark(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.RemoveBookmark(r.Context(), actor(r).UserID, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
