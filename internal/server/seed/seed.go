// Package seed fills an empty catalog with the bundled sample notes and,
// optionally, generated demo notes.
package seed

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaswdr/faker"
	"gopkg.in/yaml.v3"

	"github.com/samudhan2008/sa-notes-beta/internal/dbx"
	"github.com/samudhan2008/sa-notes-beta/internal/logging"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/repomanager"
)

//go:embed sample_notes.yaml
var sampleNotesYAML []byte

type sampleFile struct {
	Notes []sampleNote `yaml:"notes"`
}

type sampleNote struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Content     string    `yaml:"content"`
	Subject     string    `yaml:"subject"`
	Tags        []string  `yaml:"tags"`
	FileRef     string    `yaml:"file_ref"`
	FileType    string    `yaml:"file_type"`
	OwnerID     string    `yaml:"owner_id"`
	OwnerName   string    `yaml:"owner_name"`
	Rating      float64   `yaml:"rating"`
	Downloads   int64     `yaml:"downloads"`
	Views       int64     `yaml:"views"`
	CreatedAt   time.Time `yaml:"created_at"`
}

// ParseNotes decodes a sample catalog document.
func ParseNotes(data []byte) ([]*models.Note, error) {
	var f sampleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing sample notes: %w", err)
	}

	out := make([]*models.Note, 0, len(f.Notes))
	for i, s := range f.Notes {
		ft, ok := models.ParseFileType(s.FileType)
		if !ok {
			return nil, fmt.Errorf("sample note %d: unknown file type %q", i, s.FileType)
		}
		if s.ID == "" || s.Title == "" || s.Subject == "" {
			return nil, fmt.Errorf("sample note %d: id, title and subject are required", i)
		}
		if s.Rating < 0 || s.Rating > 5 {
			return nil, fmt.Errorf("sample note %s: rating %v out of range", s.ID, s.Rating)
		}

		status := models.FileNone
		if s.FileRef != "" {
			status = models.FileUploaded
		}
		out = append(out, &models.Note{
			ID:            s.ID,
			Title:         s.Title,
			Description:   s.Description,
			Content:       s.Content,
			Subject:       s.Subject,
			Tags:          s.Tags,
			FileRef:       s.FileRef,
			FileType:      ft,
			FileStatus:    status,
			OwnerID:       s.OwnerID,
			OwnerName:     s.OwnerName,
			Rating:        s.Rating,
			DownloadCount: s.Downloads,
			ViewCount:     s.Views,
			CreatedAt:     s.CreatedAt.UTC(),
			UpdatedAt:     s.CreatedAt.UTC(),
		})
	}
	return out, nil
}

// SampleNotes returns the bundled catalog.
func SampleNotes() ([]*models.Note, error) {
	return ParseNotes(sampleNotesYAML)
}

var demoSubjects = []string{
	"Artificial Intelligence", "Computer Science", "Chemistry", "Mathematics",
	"Web Development", "Physics", "Biology", "Economics",
}

// DemoNotes generates n plausible notes. The same seed yields the same notes.
func DemoNotes(n int, seed int64) []*models.Note {
	f := faker.NewWithSeed(rand.NewSource(seed))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	out := make([]*models.Note, 0, n)
	for i := 0; i < n; i++ {
		subject := f.RandomStringElement(demoSubjects)
		created := base.Add(time.Duration(f.IntBetween(0, 365*24)) * time.Hour)
		fileType := []models.FileType{models.FilePDF, models.FileDOCX, models.FileTXT}[f.IntBetween(0, 2)]

		title := strings.TrimSuffix(f.Lorem().Sentence(4), ".")
		out = append(out, &models.Note{
			ID:            uuid.NewString(),
			Title:         title,
			Description:   f.Lorem().Paragraph(2),
			Content:       "# " + title + "\n\n" + f.Lorem().Paragraph(4),
			Subject:       subject,
			Tags:          append([]string{subject}, f.Lorem().Words(2)...),
			FileType:      fileType,
			FileStatus:    models.FileNone,
			OwnerID:       fmt.Sprintf("demo-%d", f.IntBetween(1, 20)),
			OwnerName:     f.Person().Name(),
			Rating:        float64(f.IntBetween(0, 50)) / 10,
			DownloadCount: int64(f.IntBetween(0, 3000)),
			ViewCount:     int64(f.IntBetween(0, 8000)),
			CreatedAt:     created,
			UpdatedAt:     created,
		})
	}
	return out
}

// Options selects what Run inserts.
type Options struct {
	Samples  bool
	Demo     int
	DemoSeed int64
}

// Seeder inserts fixture notes.
type Seeder struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func New(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *Seeder {
	return &Seeder{db: db, repomanager: m, logger: logger}
}

// Run inserts the selected fixtures in one transaction, but only into an
// empty catalog. It returns how many notes were inserted.
func (s *Seeder) Run(ctx context.Context, opts Options) (int, error) {
	var batch []*models.Note
	if opts.Samples {
		samples, err := SampleNotes()
		if err != nil {
			return 0, err
		}
		batch = append(batch, samples...)
	}
	if opts.Demo > 0 {
		batch = append(batch, DemoNotes(opts.Demo, opts.DemoSeed)...)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	existing, err := s.repomanager.Notes(s.db).List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		s.logger.Debug(ctx, "catalog not empty, skipping seed", "notes", len(existing))
		return 0, nil
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Notes(tx)
		for _, n := range batch {
			if err := repo.Create(ctx, n); err != nil {
				return fmt.Errorf("error seeding note %s: %w", n.ID, err)
			}
		}
		return nil
	}); err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "catalog seeded", "notes", len(batch))
	return len(batch), nil
}
