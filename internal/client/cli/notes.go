package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samudhan2008/sa-notes-beta/internal/client/api"
	"github.com/samudhan2008/sa-notes-beta/internal/common"
	"github.com/samudhan2008/sa-notes-beta/internal/netx"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

func newNotesCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notes",
		Aliases: []string{"n"},
		Short:   "Search, read and share notes",
	}
	cmd.AddCommand(
		newNotesListCmd(a),
		newNotesSuggestCmd(a),
		newNotesShowCmd(a),
		newNotesReadCmd(a),
		newNotesDownloadCmd(a),
		newNotesUploadCmd(a),
		newNotesEditCmd(a),
		newNotesDeleteCmd(a),
		newNotesMineCmd(a),
		newNotesRateCmd(a),
		newNotesCommentCmd(a),
		newNotesCommentsCmd(a),
		newNotesReportCmd(a),
	)
	return cmd
}

func newNotesListCmd(a *App) *cobra.Command {
	var (
		p      api.SearchParams
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:     "list [QUERY]",
		Aliases: []string{"ls", "search"},
		Short:   "Search the catalog",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				p.Query = args[0]
			}
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			res, err := a.client.SearchNotes(ctx, p)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.out, res)
			}
			if res.Total == 0 {
				fmt.Fprintln(a.out, "No notes found.")
				return nil
			}
			if err := printNoteTable(a.out, res.Notes); err != nil {
				return err
			}
			fmt.Fprintln(a.out, metaStyle.Render(fmt.Sprintf("page %d of %d · %d notes", res.Page, res.Pages, res.Total)))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&p.Subject, "subject", "s", "", "only this subject")
	f.StringSliceVarP(&p.Tags, "tag", "t", nil, "require tag (repeatable)")
	f.StringVar(&p.Sort, "sort", "", "relevance, newest, oldest, downloads or rating")
	f.IntVar(&p.Page, "page", 0, "page number, from 1")
	f.IntVar(&p.PageSize, "page-size", 0, "notes per page")
	f.BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func newNotesSuggestCmd(a *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "suggest TEXT",
		Short: "Fuzzy-match note titles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			list, err := a.client.Suggest(ctx, args[0], limit)
			if err != nil {
				return err
			}
			for _, s := range list {
				fmt.Fprintf(a.out, "%s  %s\n", metaStyle.Render(s.NoteID), s.Title)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum suggestions")
	return cmd
}

func newNotesShowCmd(a *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a note's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			n, err := a.client.GetNote(ctx, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.out, n)
			}
			printNote(a.out, n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func newNotesReadCmd(a *App) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "read ID",
		Short: "Render a note's markdown content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			n, err := a.client.GetNote(ctx, args[0])
			if err != nil {
				return err
			}
			body := n.Content
			if body == "" {
				body = n.Description
			}
			out, err := renderMarkdown("# "+n.Title+"\n\n"+body, width)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, out)
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "wrap width")
	return cmd
}

func newNotesDownloadCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "download ID",
		Short: "Print where a note's file can be downloaded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			d, err := a.client.Download(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s (%s)\n%s\n", d.FileName, d.ContentType, d.URL)
			return nil
		},
	}
}

// noteFlags binds the editable note fields.
type noteFlags struct {
	title, description, subject, fileType, fileRef, contentFile string
	tags                                                        []string
}

func (nf *noteFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&nf.title, "title", "", "note title")
	f.StringVar(&nf.description, "description", "", "short description")
	f.StringVar(&nf.subject, "subject", "", "subject, e.g. Mathematics")
	f.StringSliceVar(&nf.tags, "tag", nil, "tag (repeatable)")
	f.StringVar(&nf.fileType, "type", "", "PDF, DOCX or TXT (default: from --file)")
	f.StringVar(&nf.fileRef, "ref", "", "external file reference instead of uploading")
	f.StringVar(&nf.contentFile, "content", "", "markdown file with the note body")
}

// apply overlays the flags that were set on cmd onto in.
func (nf *noteFlags) apply(cmd *cobra.Command, in *models.NoteInput) error {
	changed := cmd.Flags().Changed
	if changed("title") {
		in.Title = nf.title
	}
	if changed("description") {
		in.Description = nf.description
	}
	if changed("subject") {
		in.Subject = nf.subject
	}
	if changed("tag") {
		in.Tags = nf.tags
	}
	if changed("type") {
		in.FileType = nf.fileType
	}
	if changed("ref") {
		in.FileRef = nf.fileRef
	}
	if nf.contentFile != "" {
		b, err := os.ReadFile(nf.contentFile)
		if err != nil {
			return fmt.Errorf("read content: %w", err)
		}
		in.Content = string(b)
	}
	return nil
}

func newNotesUploadCmd(a *App) *cobra.Command {
	var (
		nf   noteFlags
		file string
	)
	cmd := &cobra.Command{
		Use:     "upload",
		Aliases: []string{"add"},
		Short:   "Share a new note",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			var in models.NoteInput
			if err := nf.apply(cmd, &in); err != nil {
				return err
			}

			var size int64
			if file != "" {
				fi, err := os.Stat(file)
				if err != nil {
					return err
				}
				size = fi.Size()
				if in.FileType == "" {
					in.FileType = strings.TrimPrefix(filepath.Ext(file), ".")
				}
			}
			if _, ok := models.ParseFileType(in.FileType); !ok {
				return fmt.Errorf("%w: file type must be PDF, DOCX or TXT", common.ErrorValidation)
			}

			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			res, err := a.client.CreateNote(ctx, in, size)
			if err != nil {
				return err
			}
			note := res.Note

			switch {
			case file == "":
			case res.Upload == nil:
				fmt.Fprintln(a.errOut, warnStyle.Render("warning: the server has no file storage; only the note details were saved"))
			default:
				if err := a.upload(cmd, res.Upload, file, size); err != nil {
					return fmt.Errorf("note %s created but the file upload failed: %w", note.ID, err)
				}
				// the upload may have outlived ctx
				markCtx, markCancel := a.callCtx(cmd)
				defer markCancel()
				if note, err = a.client.MarkUploaded(markCtx, note.ID); err != nil {
					return err
				}
			}

			fmt.Fprintf(a.out, "Created note %s.\n", note.ID)
			return nil
		},
	}
	nf.bind(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "document to attach")
	return cmd
}

// upload streams file to a presigned URL. It gets its own deadline since
// documents can be large.
func (a *App) upload(cmd *cobra.Command, task *models.FileUploadTask, file string, size int64) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx := cmd.Context()
	fmt.Fprintln(a.errOut, metaStyle.Render(fmt.Sprintf("uploading %s (%d bytes)...", filepath.Base(file), size)))
	return netx.UploadToPresignedURL(ctx, nil, task.URL, task.ContentType, f, size)
}

func newNotesEditCmd(a *App) *cobra.Command {
	var nf noteFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a note you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.callCtx(cmd)
			defer cancel()

			current, err := a.client.GetNote(ctx, args[0])
			if err != nil {
				return err
			}
			in := models.NoteInput{
				Title:       current.Title,
				Description: current.Description,
				Content:     current.Content,
				Subject:     current.Subject,
				Tags:        current.Tags,
				FileType:    string(current.FileType),
			}
			if err := nf.apply(cmd, &in); err != nil {
				return err
			}

			n, err := a.client.UpdateNote(ctx, args[0], in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated note %s.\n", n.ID)
			return nil
		},
	}
	nf.bind(cmd)
	return cmd
}

func newNotesDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a note you own",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			if err := a.client.DeleteNote(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted note %s.\n", args[0])
			return nil
		},
	}
}

func newNotesMineCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List the notes you uploaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			list, err := a.client.MyNotes(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(a.out, "You have not uploaded any notes yet.")
				return nil
			}
			return printNoteTable(a.out, list)
		},
	}
}

func newNotesRateCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rate ID STARS",
		Short: "Rate a note from 1 to 5",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			v, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: stars must be a number", common.ErrorValidation)
			}
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			n, err := a.client.Rate(ctx, args[0], v)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s now rated %s %.1f (%d)\n", n.Title, stars(n.Rating), n.Rating, n.NumRatings)
			return nil
		},
	}
}

func newNotesCommentCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "comment ID TEXT...",
		Short: "Comment on a note",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			if _, err := a.client.AddComment(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Comment added.")
			return nil
		},
	}
}

func newNotesCommentsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "comments ID",
		Short: "List a note's comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			list, err := a.client.Comments(ctx, args[0])
			if err != nil {
				return err
			}
			printComments(a.out, list)
			return nil
		},
	}
}

func newNotesReportCmd(a *App) *cobra.Command {
	var typ, reason string
	cmd := &cobra.Command{
		Use:   "report ID",
		Short: "Flag a note for moderators",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			rt := models.ReportType(strings.ToLower(typ))
			if !rt.Valid() {
				return errors.New("--type must be copyright, inappropriate, plagiarism or other")
			}
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			rep, err := a.client.Report(ctx, args[0], rt, reason)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Report %s filed.\n", rep.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", string(models.ReportOther), "copyright, inappropriate, plagiarism or other")
	cmd.Flags().StringVar(&reason, "reason", "", "details for moderators")
	return cmd
}
