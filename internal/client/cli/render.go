package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	metaStyle  = lipgloss.NewStyle().Faint(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

const timeLayout = "2006-01-02"

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func stars(rating float64) string {
	full := int(rating + 0.5)
	if full > 5 {
		full = 5
	}
	if full < 0 {
		full = 0
	}
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full)
}

func printNoteTable(w io.Writer, notes []*models.Note) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSUBJECT\tRATING\tDOWNLOADS\tAUTHOR")
	for _, n := range notes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%d\t%s\n", n.ID, n.Title, n.Subject, n.Rating, n.DownloadCount, n.OwnerName)
	}
	return tw.Flush()
}

func printNote(w io.Writer, n *models.Note) {
	fmt.Fprintln(w, titleStyle.Render(n.Title))
	fmt.Fprintln(w, metaStyle.Render(fmt.Sprintf("%s · by %s · %s", n.Subject, n.OwnerName, n.CreatedAt.Format(timeLayout))))
	if n.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, n.Description)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Rating:    %s %.1f (%d)\n", stars(n.Rating), n.Rating, n.NumRatings)
	fmt.Fprintf(w, "Views:     %d\n", n.ViewCount)
	fmt.Fprintf(w, "Downloads: %d\n", n.DownloadCount)
	fmt.Fprintf(w, "File:      %s (%s)\n", n.FileType, n.FileStatus)
	if len(n.Tags) > 0 {
		fmt.Fprintf(w, "Tags:      %s\n", strings.Join(n.Tags, ", "))
	}
	fmt.Fprintf(w, "ID:        %s\n", n.ID)
}

func printComments(w io.Writer, list []*models.Comment) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No comments yet.")
		return
	}
	for _, c := range list {
		fmt.Fprintln(w, titleStyle.Render(c.Author)+" "+metaStyle.Render(c.CreatedAt.Format(timeLayout)))
		fmt.Fprintln(w, c.Content)
		fmt.Fprintln(w)
	}
}

func printProfile(w io.Writer, p *models.Profile) {
	fmt.Fprintln(w, titleStyle.Render(p.Username)+" "+metaStyle.Render("<"+p.Email+">"))
	fmt.Fprintf(w, "Role:     %s\n", p.Role)
	fmt.Fprintf(w, "Status:   %s\n", p.Status)
	fmt.Fprintf(w, "Verified: %t\n", p.Verified)
	if p.FullName != "" {
		fmt.Fprintf(w, "Name:     %s\n", p.FullName)
	}
	if p.Institution != "" {
		fmt.Fprintf(w, "School:   %s\n", p.Institution)
	}
	if p.Bio != "" {
		fmt.Fprintf(w, "Bio:      %s\n", p.Bio)
	}
}

// renderMarkdown formats note content for the terminal.
func renderMarkdown(md string, width int) (string, error) {
	if width < 40 {
		width = 40
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
