package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/samudhan2008/sa-notes-beta/internal/catalog"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
	"github.com/samudhan2008/sa-notes-beta/internal/server/render"
)

// SearchParams are the catalog query parameters; zero values are omitted.
type SearchParams struct {
	Query    string
	Subject  string
	Tags     []string
	Sort     string
	Page     int
	PageSize int
}

func (p SearchParams) values() url.Values {
	v := url.Values{}
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	if p.Subject != "" {
		v.Set("subject", p.Subject)
	}
	for _, t := range p.Tags {
		v.Add("tag", t)
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(p.PageSize))
	}
	return v
}

// CreateResult is the created note plus, when the server issued one, the
// presigned upload for its file.
type CreateResult struct {
	Note   *models.Note           `json:"note"`
	Upload *models.FileUploadTask `json:"upload,omitempty"`
}

// Download says where a note's file can be fetched.
type Download struct {
	URL         string `json:"url"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

type createNoteRequest struct {
	models.NoteInput
	FileSize int64 `json:"file_size,omitempty"`
}

func (c *Client) SearchNotes(ctx context.Context, p SearchParams) (*catalog.Result, error) {
	var res catalog.Result
	if err := c.do(ctx, http.MethodGet, "/api/notes", p.values(), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Suggest(ctx context.Context, q string, limit int) ([]catalog.Suggestion, error) {
	v := url.Values{"q": {q}}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var res []catalog.Suggestion
	if err := c.do(ctx, http.MethodGet, "/api/notes/suggest", v, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) GetNote(ctx context.Context, id string) (*models.Note, error) {
	var n models.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+escape(id), nil, nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) Preview(ctx context.Context, id string) (*render.Preview, error) {
	var p render.Preview
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+escape(id)+"/preview", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Download(ctx context.Context, id string) (*Download, error) {
	var d Download
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+escape(id)+"/download", nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateNote uploads note metadata. fileSize is the size of the attachment
// the caller intends to PUT to the returned upload URL.
func (c *Client) CreateNote(ctx context.Context, in models.NoteInput, fileSize int64) (*CreateResult, error) {
	var res CreateResult
	if err := c.do(ctx, http.MethodPost, "/api/notes", nil, createNoteRequest{NoteInput: in, FileSize: fileSize}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) UpdateNote(ctx context.Context, id string, in models.NoteInput) (*models.Note, error) {
	var n models.Note
	if err := c.do(ctx, http.MethodPut, "/api/notes/"+escape(id), nil, in, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+escape(id), nil, nil, nil)
}

func (c *Client) MarkUploaded(ctx context.Context, id string) (*models.Note, error) {
	var n models.Note
	if err := c.do(ctx, http.MethodPost, "/api/notes/"+escape(id)+"/uploaded", nil, nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) Rate(ctx context.Context, id string, value int) (*models.Note, error) {
	var n models.Note
	if err := c.do(ctx, http.MethodPost, "/api/notes/"+escape(id)+"/rating", nil, map[string]int{"value": value}, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) Comments(ctx context.Context, id string) ([]*models.Comment, error) {
	var list []*models.Comment
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+escape(id)+"/comments", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) AddComment(ctx context.Context, id, content string) (*models.Comment, error) {
	var cm models.Comment
	if err := c.do(ctx, http.MethodPost, "/api/notes/"+escape(id)+"/comments", nil, map[string]string{"content": content}, &cm); err != nil {
		return nil, err
	}
	return &cm, nil
}

func (c *Client) Report(ctx context.Context, id string, typ models.ReportType, reason string) (*models.Report, error) {
	req := struct {
		Type   models.ReportType `json:"type"`
		Reason string            `json:"reason"`
	}{typ, reason}

	var rep models.Report
	if err := c.do(ctx, http.MethodPost, "/api/notes/"+escape(id)+"/reports", nil, req, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (c *Client) MyNotes(ctx context.Context) ([]*models.Note, error) {
	var list []*models.Note
	if err := c.do(ctx, http.MethodGet, "/api/me/notes", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) Bookmarks(ctx context.Context) ([]*models.Note, error) {
	var list []*models.Note
	if err := c.do(ctx, http.MethodGet, "/api/me/bookmarks", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) AddBookmark(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/api/me/bookmarks/"+escape(id), nil, nil, nil)
}

func (c *Client) RemoveBookmark(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/me/bookmarks/"+escape(id), nil, nil, nil)
}
