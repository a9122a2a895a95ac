package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samudhan2008/sa-notes-beta/internal/common"
	"github.com/samudhan2008/sa-notes-beta/internal/dbx"
	"github.com/samudhan2008/sa-notes-beta/internal/logging"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/repomanager"
)

// AdminService backs the moderation console. Callers are expected to have
// checked the admin role already.
type AdminService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notes       *NoteService
	logger      logging.Logger
}

func NewAdminService(db *sql.DB, m repomanager.RepositoryManager, notes *NoteService, logger logging.Logger) *AdminService {
	return &AdminService{db: db, repomanager: m, notes: notes, logger: logger}
}

// Users lists accounts whose username or email contains search.
func (s *AdminService) Users(ctx context.Context, search string) ([]*models.Profile, error) {
	users, err := s.repomanager.Users(s.db).List(ctx, search)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Profile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Profile())
	}
	return out, nil
}

// SetUserStatus changes an account's status. Suspending also revokes the
// user's refresh tokens; admins cannot change their own status.
func (s *AdminService) SetUserStatus(ctx context.Context, actor Actor, userID string, status models.UserStatus) (*models.Profile, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", common.ErrorValidation, status)
	}
	if userID == actor.UserID {
		return nil, fmt.Errorf("%w: cannot change your own status", common.ErrorValidation)
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Status = status

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).Update(ctx, user); err != nil {
			return err
		}
		if status == models.UserSuspended {
			return s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, userID)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user status changed", "user_id", userID, "status", string(status), "by", actor.UserID)
	return user.Profile(), nil
}

// Reports lists reports matching f, newest first.
func (s *AdminService) Reports(ctx context.Context, f models.ReportFilter) ([]*models.Report, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown report status %q", common.ErrorValidation, f.Status)
	}
	if f.Type != "" && !f.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown report type %q", common.ErrorValidation, f.Type)
	}
	return s.repomanager.Reports(s.db).List(ctx, f)
}

func (s *AdminService) ResolveReport(ctx context.Context, actor Actor, id string) (*models.Report, error) {
	return s.closeReport(ctx, actor, id, models.ReportResolved)
}

func (s *AdminService) RejectReport(ctx context.Context, actor Actor, id string) (*models.Report, error) {
	return s.closeReport(ctx, actor, id, models.ReportRejected)
}

func (s *AdminService) closeReport(ctx context.Context, actor Actor, id string, status models.ReportStatus) (*models.Report, error) {
	repo := s.repomanager.Reports(s.db)
	r, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status.Closed() {
		return nil, fmt.Errorf("%w: report is already %s", common.ErrorValidation, r.Status)
	}
	if err := repo.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	r.Status = status
	s.logger.Info(ctx, "report closed", "report_id", id, "status", string(status), "by", actor.UserID)
	return r, nil
}

// DeleteNote removes any note regardless of owner.
func (s *AdminService) DeleteNote(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return common.ErrorForbidden
	}
	return s.notes.Delete(ctx, actor, id)
}

// Stats computes the dashboard figures from stored data.
func (s *AdminService) Stats(ctx context.Context) (*models.Stats, error) {
	total, active, err := s.repomanager.Users(s.db).Count(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.repomanager.Notes(s.db).Totals(ctx)
	if err != nil {
		return nil, err
	}
	resolved, err := s.repomanager.Reports(s.db).CountByStatus(ctx, models.ReportResolved)
	if err != nil {
		return nil, err
	}
	return &models.Stats{
		TotalUsers:      total,
		ActiveUsers:     active,
		TotalNotes:      totals.Notes,
		TotalDownloads:  totals.Downloads,
		ReportsResolved: resolved,
		AverageRating:   totals.AverageRating,
	}, nil
}
