package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samudhan2008/sa-notes-beta/internal/catalog"
	"github.com/samudhan2008/sa-notes-beta/internal/common"
	"github.com/samudhan2008/sa-notes-beta/internal/dbx"
	"github.com/samudhan2008/sa-notes-beta/internal/logging"
	sc "github.com/samudhan2008/sa-notes-beta/internal/server/config"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
	"github.com/samudhan2008/sa-notes-beta/internal/server/objectstore"
	"github.com/samudhan2008/sa-notes-beta/internal/server/render"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/repomanager"
)

const (
	MinRating = 1
	MaxRating = 5
)

// FileStore issues presigned URLs for note attachments.
// *objectstore.S3Store satisfies it.
type FileStore interface {
	Enabled() bool
	PresignPut(ctx context.Context, key, contentType string, size int64) (string, error)
	PresignGet(ctx context.Context, key, filename string) (string, error)
}

// Actor identifies the caller of a mutating operation.
type Actor struct {
	UserID string
	Role   models.Role
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// CanModify reports whether a may edit or delete n.
func (a Actor) CanModify(n *models.Note) bool {
	return a.IsAdmin() || (a.UserID != "" && a.UserID == n.OwnerID)
}

// CreateResult is the outcome of an upload. Upload is set when the client
// must PUT the attachment to object storage.
type CreateResult struct {
	Note   *models.Note           `json:"note"`
	Upload *models.FileUploadTask `json:"upload,omitempty"`
}

// Download tells the client where to fetch a note's file.
type Download struct {
	URL         string `json:"url"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// NoteService implements the note collection: uploads, edits, deletes,
// counters, search, bookmarks, ratings, comments and reports.
type NoteService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	files         FileStore
	logger        logging.Logger
	maxUploadSize int64
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, files FileStore, cfg *sc.Config, logger logging.Logger) *NoteService {
	return &NoteService{
		db:            db,
		repomanager:   m,
		files:         files,
		logger:        logger,
		maxUploadSize: cfg.MaxUploadSize,
	}
}

// Create stores a new note owned by the actor with zeroed counters. When
// object storage is enabled and no file reference is given, the result
// carries a presigned upload URL and the file stays pending until
// MarkUploaded.
func (s *NoteService) Create(ctx context.Context, actor Actor, in models.NoteInput, fileSize int64) (*CreateResult, error) {
	fileType, err := validateNoteInput(&in)
	if err != nil {
		return nil, err
	}
	if fileSize < 0 || (s.maxUploadSize > 0 && fileSize > s.maxUploadSize) {
		return nil, fmt.Errorf("%w: file size must be between 0 and %d bytes", common.ErrorValidation, s.maxUploadSize)
	}

	owner, err := s.repomanager.Users(s.db).GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	now := time.Now().UTC()
	note := &models.Note{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		Subject:     in.Subject,
		Tags:        in.Tags,
		FileRef:     in.FileRef,
		FileType:    fileType,
		FileStatus:  models.FileNone,
		OwnerID:     owner.ID,
		OwnerName:   owner.Username,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var upload *models.FileUploadTask
	switch {
	case note.FileRef != "":
		note.FileStatus = models.FileUploaded
	case s.files != nil && s.files.Enabled():
		note.FileRef = objectstore.NewStorageKey(fileType.Extension())
		url, err := s.files.PresignPut(ctx, note.FileRef, fileType.ContentType(), fileSize)
		if err != nil {
			return nil, fmt.Errorf("error presigning upload: %w", err)
		}
		note.FileStatus = models.FilePending
		upload = &models.FileUploadTask{NoteID: note.ID, URL: url, ContentType: fileType.ContentType()}
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Notes(tx).Create(ctx, note)
	}); err != nil {
		return nil, fmt.Errorf("error creating note: %w", err)
	}

	s.logger.Info(ctx, "note created", "note_id", note.ID, "owner", owner.ID)
	return &CreateResult{Note: note, Upload: upload}, nil
}

// Update overwrites the editable fields of a note. There is no version
// check: the last writer wins. An empty FileRef keeps the current file.
func (s *NoteService) Update(ctx context.Context, actor Actor, id string, in models.NoteInput) (*models.Note, error) {
	fileType, err := validateNoteInput(&in)
	if err != nil {
		return nil, err
	}

	note, err := s.repomanager.Notes(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(note) {
		return nil, common.ErrorForbidden
	}

	note.Title = in.Title
	note.Description = in.Description
	note.Content = in.Content
	note.Subject = in.Subject
	note.Tags = in.Tags
	note.FileType = fileType
	if in.FileRef != "" && in.FileRef != note.FileRef {
		note.FileRef = in.FileRef
		note.FileStatus = models.FileUploaded
	}
	note.UpdatedAt = time.Now().UTC()

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Notes(tx).Update(ctx, note)
	}); err != nil {
		return nil, err
	}
	return note, nil
}

// Delete removes a note together with its bookmarks, comments and ratings in
// one transaction. Reports are kept for moderation history.
func (s *NoteService) Delete(ctx context.Context, actor Actor, id string) error {
	note, err := s.repomanager.Notes(s.db).GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(note) {
		return common.ErrorForbidden
	}

	if err := s.deleteNote(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "note deleted", "note_id", id, "by", actor.UserID)
	return nil
}

func (s *NoteService) deleteNote(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Bookmarks(tx).DeleteByNote(ctx, id); err != nil {
			return err
		}
		if err := s.repomanager.Comments(tx).DeleteByNote(ctx, id); err != nil {
			return err
		}
		if err := s.repomanager.Ratings(tx).DeleteByNote(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Notes(tx).Delete(ctx, id)
	})
}

// Get returns a note and counts the view.
func (s *NoteService) Get(ctx context.Context, id string) (*models.Note, error) {
	repo := s.repomanager.Notes(s.db)
	if err := repo.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

// Download counts a download and returns where the file can be fetched:
// a presigned URL for stored objects, otherwise the stored reference.
func (s *NoteService) Download(ctx context.Context, id string) (*Download, error) {
	repo := s.repomanager.Notes(s.db)
	note, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note.FileRef == "" || note.FileStatus != models.FileUploaded {
		return nil, fmt.Errorf("%w: note has no file", common.ErrorNotFound)
	}

	d := &Download{
		URL:         note.FileRef,
		FileName:    fileName(note),
		ContentType: note.FileType.ContentType(),
	}
	if isStorageKey(note.FileRef) {
		if s.files == nil || !s.files.Enabled() {
			return nil, fmt.Errorf("%w: object storage is disabled", common.ErrorNotFound)
		}
		url, err := s.files.PresignGet(ctx, note.FileRef, d.FileName)
		if err != nil {
			return nil, fmt.Errorf("error presigning download: %w", err)
		}
		d.URL = url
	}

	if err := repo.IncrementDownloads(ctx, id); err != nil {
		return nil, err
	}
	return d, nil
}

// Search runs c over the whole collection.
func (s *NoteService) Search(ctx context.Context, c catalog.Criteria) (catalog.Result, error) {
	all, err := s.repomanager.Notes(s.db).List(ctx)
	if err != nil {
		return catalog.Result{}, err
	}
	return catalog.Query(all, c), nil
}

// Suggest returns fuzzy title matches for type-ahead.
func (s *NoteService) Suggest(ctx context.Context, pattern string, limit int) ([]catalog.Suggestion, error) {
	all, err := s.repomanager.Notes(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Suggest(all, strings.TrimSpace(pattern), limit), nil
}

func (s *NoteService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Note, error) {
	return s.repomanager.Notes(s.db).ListByOwner(ctx, ownerID)
}

// Bookmark adds a note to the user's bookmarks. Repeating it is a no-op.
func (s *NoteService) Bookmark(ctx context.Context, userID, noteID string) error {
	if _, err := s.repomanager.Notes(s.db).GetByID(ctx, noteID); err != nil {
		return err
	}
	return s.repomanager.Bookmarks(s.db).Add(ctx, userID, noteID)
}

func (s *NoteService) RemoveBookmark(ctx context.Context, userID, noteID string) error {
	return s.repomanager.Bookmarks(s.db).Remove(ctx, userID, noteID)
}

// Bookmarks lists the user's bookmarked notes.
func (s *NoteService) Bookmarks(ctx context.Context, userID string) ([]*models.Note, error) {
	return s.repomanager.Notes(s.db).ListBookmarked(ctx, userID)
}

// Rate records the user's score for a note, replacing an earlier one, and
// refreshes the note's mean rating.
func (s *NoteService) Rate(ctx context.Context, userID, noteID string, value int) (*models.Note, error) {
	if value < MinRating || value > MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", common.ErrorValidation, MinRating, MaxRating)
	}
	if _, err := s.repomanager.Notes(s.db).GetByID(ctx, noteID); err != nil {
		return nil, err
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ratingsRepo := s.repomanager.Ratings(tx)
		if err := ratingsRepo.Upsert(ctx, userID, noteID, value); err != nil {
			return err
		}
		mean, count, err := ratingsRepo.Summary(ctx, noteID)
		if err != nil {
			return err
		}
		return s.repomanager.Notes(tx).SetRating(ctx, noteID, clampRating(mean), count)
	}); err != nil {
		return nil, err
	}

	return s.repomanager.Notes(s.db).GetByID(ctx, noteID)
}

// AddComment appends a comment signed with the author's username.
func (s *NoteService) AddComment(ctx context.Context, userID, noteID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment is empty", common.ErrorValidation)
	}
	if _, err := s.repomanager.Notes(s.db).GetByID(ctx, noteID); err != nil {
		return nil, err
	}
	author, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	c := &models.Comment{
		ID:        uuid.NewString(),
		NoteID:    noteID,
		AuthorID:  author.ID,
		Author:    author.Username,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repomanager.Comments(s.db).Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Comments lists a note's comments, oldest first.
func (s *NoteService) Comments(ctx context.Context, noteID string) ([]*models.Comment, error) {
	if _, err := s.repomanager.Notes(s.db).GetByID(ctx, noteID); err != nil {
		return nil, err
	}
	return s.repomanager.Comments(s.db).ListByNote(ctx, noteID)
}

// Report files a pending moderation report against a note.
func (s *NoteService) Report(ctx context.Context, userID, noteID string, typ models.ReportType, reason string) (*models.Report, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown report type %q", common.ErrorValidation, typ)
	}
	note, err := s.repomanager.Notes(s.db).GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	r := &models.Report{
		ID:         uuid.NewString(),
		NoteID:     note.ID,
		NoteTitle:  note.Title,
		NoteAuthor: note.OwnerName,
		ReporterID: userID,
		Type:       typ,
		Status:     models.ReportPending,
		Reason:     strings.TrimSpace(reason),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repomanager.Reports(s.db).Create(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "note reported", "note_id", note.ID, "report_id", r.ID, "type", string(typ))
	return r, nil
}

// Preview renders the note's markdown body, falling back to its
// description when there is none. Views are not counted.
func (s *NoteService) Preview(ctx context.Context, id string) (*render.Preview, error) {
	note, err := s.repomanager.Notes(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	source := note.Content
	if strings.TrimSpace(source) == "" {
		source = note.Description
	}
	p, err := render.Markdown(source)
	if err != nil {
		return nil, fmt.Errorf("error rendering note: %w", err)
	}
	return p, nil
}

// MarkUploaded confirms that the client finished the presigned upload.
func (s *NoteService) MarkUploaded(ctx context.Context, actor Actor, id string) (*models.Note, error) {
	repo := s.repomanager.Notes(s.db)
	note, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(note) {
		return nil, common.ErrorForbidden
	}
	switch note.FileStatus {
	case models.FileUploaded:
		return note, nil
	case models.FileNone:
		return nil, fmt.Errorf("%w: note has no pending upload", common.ErrorValidation)
	}

	if err := repo.SetFileStatus(ctx, id, models.FileUploaded); err != nil {
		return nil, err
	}
	note.FileStatus = models.FileUploaded
	return note, nil
}

// --- helpers below ---

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func validateNoteInput(in *models.NoteInput) (models.FileType, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Description = strings.TrimSpace(in.Description)
	in.FileRef = strings.TrimSpace(in.FileRef)

	if in.Title == "" {
		return "", fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if in.Subject == "" {
		return "", fmt.Errorf("%w: subject is required", common.ErrorValidation)
	}
	ft, ok := models.ParseFileType(in.FileType)
	if !ok {
		return "", fmt.Errorf("%w: file type must be PDF, DOCX or TXT", common.ErrorValidation)
	}
	in.Tags = normalizeTags(in.Tags)
	return ft, nil
}

// normalizeTags trims tags and drops empty and case-insensitive duplicates,
// keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		k := strings.ToLower(t)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}

func clampRating(v float64) float64 {
	return min(max(v, 0), MaxRating)
}

// isStorageKey tells object keys apart from paths and absolute URLs.
func isStorageKey(ref string) bool {
	return !strings.HasPrefix(ref, "/") && !strings.Contains(ref, "://")
}

func fileName(n *models.Note) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(n.Title), "-"), "-")
	if slug == "" {
		slug = "note"
	}
	return slug + n.FileType.Extension()
}
