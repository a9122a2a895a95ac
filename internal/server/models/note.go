// Package models defines server-side data models persisted in the database.
package models

import (
	"strings"
	"time"
)

// FileType is the document format of a note's attachment.
type FileType string

const (
	FilePDF  FileType = "PDF"
	FileDOCX FileType = "DOCX"
	FileTXT  FileType = "TXT"
)

// ParseFileType normalises s ("pdf", ".docx", "TXT") to a FileType.
func ParseFileType(s string) (FileType, bool) {
	switch FileType(strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "."))) {
	case FilePDF:
		return FilePDF, true
	case FileDOCX:
		return FileDOCX, true
	case FileTXT:
		return FileTXT, true
	}
	return "", false
}

// ContentType is the MIME type used for uploads and downloads.
func (t FileType) ContentType() string {
	switch t {
	case FileDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FileTXT:
		return "text/plain"
	default:
		return "application/pdf"
	}
}

// Extension is the lower-case file suffix, dot included.
func (t FileType) Extension() string {
	return "." + strings.ToLower(string(t))
}

// FileStatus tracks the attachment upload.
type FileStatus string

const (
	FileNone     FileStatus = "none"
	FilePending  FileStatus = "pending"
	FileUploaded FileStatus = "uploaded"
)

// Note is a shared study note.
type Note struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Content       string     `json:"content,omitempty"`
	Subject       string     `json:"subject"`
	Tags          []string   `json:"tags"`
	FileRef       string     `json:"file_ref,omitempty"`
	FileType      FileType   `json:"file_type"`
	FileStatus    FileStatus `json:"file_status"`
	OwnerID       string     `json:"owner_id"`
	OwnerName     string     `json:"owner_name"`
	Rating        float64    `json:"rating"`
	NumRatings    int64      `json:"num_ratings"`
	DownloadCount int64      `json:"download_count"`
	ViewCount     int64      `json:"view_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NoteInput is the caller-editable part of a note used by create and update.
type NoteInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content,omitempty"`
	Subject     string   `json:"subject"`
	Tags        []string `json:"tags"`
	FileType    string   `json:"file_type"`
	FileRef     string   `json:"file_ref,omitempty"`
}

// FileUploadTask tells the client where to PUT the attachment.
type FileUploadTask struct {
	NoteID      string `json:"note_id"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}
