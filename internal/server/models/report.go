package models

import "time"

// ReportType classifies a moderation report.
type ReportType string

const (
	ReportCopyright     ReportType = "copyright"
	ReportInappropriate ReportType = "inappropriate"
	ReportPlagiarism    ReportType = "plagiarism"
	ReportOther         ReportType = "other"
)

func (t ReportType) Valid() bool {
	switch t {
	case ReportCopyright, ReportInappropriate, ReportPlagiarism, ReportOther:
		return true
	}
	return false
}

// ReportStatus is the moderation state of a report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewing ReportStatus = "reviewing"
	ReportResolved  ReportStatus = "resolved"
	ReportRejected  ReportStatus = "rejected"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportReviewing, ReportResolved, ReportRejected:
		return true
	}
	return false
}

// Closed reports whether no further moderation action is possible.
func (s ReportStatus) Closed() bool {
	return s == ReportResolved || s == ReportRejected
}

// Report flags a note for moderator attention.
type Report struct {
	ID         string       `json:"id"`
	NoteID     string       `json:"note_id"`
	NoteTitle  string       `json:"note_title"`
	NoteAuthor string       `json:"note_author"`
	ReporterID string       `json:"reporter_id"`
	Type       ReportType   `json:"type"`
	Status     ReportStatus `json:"status"`
	Reason     string       `json:"reason,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// ReportFilter narrows the admin report list. Empty fields match all.
type ReportFilter struct {
	Search string
	Status ReportStatus
	Type   ReportType
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers      int64   `json:"total_users"`
	ActiveUsers     int64   `json:"active_users"`
	TotalNotes      int64   `json:"total_notes"`
	TotalDownloads  int64   `json:"total_downloads"`
	ReportsResolved int64   `json:"reports_resolved"`
	AverageRating   float64 `json:"average_rating"`
}
