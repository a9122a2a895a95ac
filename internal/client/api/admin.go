package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

func (c *Client) AdminUsers(ctx context.Context, search string) ([]*models.Profile, error) {
	var v url.Values
	if search != "" {
		v = url.Values{"search": {search}}
	}
	var list []*models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", v, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) SetUserStatus(ctx context.Context, id string, status models.UserStatus) (*models.Profile, error) {
	var p models.Profile
	req := map[string]models.UserStatus{"status": status}
	if err := c.do(ctx, http.MethodPut, "/api/admin/users/"+escape(id)+"/status", nil, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) AdminReports(ctx context.Context, f models.ReportFilter) ([]*models.Report, error) {
	v := url.Values{}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.Type != "" {
		v.Set("type", string(f.Type))
	}
	var list []*models.Report
	if err := c.do(ctx, http.MethodGet, "/api/admin/reports", v, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) ResolveReport(ctx context.Context, id string) (*models.Report, error) {
	return c.closeReport(ctx, id, "resolve")
}

func (c *Client) RejectReport(ctx context.Context, id string) (*models.Report, error) {
	return c.closeReport(ctx, id, "reject")
}

func (c *Client) closeReport(ctx context.Context, id, action string) (*models.Report, error) {
	var rep models.Report
	if err := c.do(ctx, http.MethodPost, "/api/admin/reports/"+escape(id)+"/"+action, nil, nil, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (c *Client) AdminDeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/notes/"+escape(id), nil, nil, nil)
}

func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	var s models.Stats
	if err := c.do(ctx, http.MethodGet, "/api/admin/stats", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
