package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samudhan2008/sa-notes-beta/internal/common"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

var rootActor = Actor{UserID: "root", Role: models.RoleAdmin}

func TestAdmin_UsersAndStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "anna@example.com", "anna")
	env.register(t, "ben@example.com", "ben")

	all, err := env.admin.Users(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := env.admin.Users(ctx, "ANN")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.User.ID, found[0].ID)

	_, err = env.admin.SetUserStatus(ctx, rootActor, a.User.ID, "banned")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = env.admin.SetUserStatus(ctx, actorOf(a), a.User.ID, models.UserInactive)
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = env.admin.SetUserStatus(ctx, rootActor, "missing", models.UserInactive)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	p, err := env.admin.SetUserStatus(ctx, rootActor, a.User.ID, models.UserInactive)
	require.NoError(t, err)
	assert.Equal(t, models.UserInactive, p.Status)

	// inactive is informational; only suspension blocks login
	_, err = env.users.Login(ctx, "anna@example.com", "pass-anna")
	assert.NoError(t, err)
}

func TestAdmin_ReportWorkflow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "o@example.com", "owner")
	n := env.createNote(t, owner, sampleInput("Reported", "AI"))

	r1, err := env.notes.Report(ctx, owner.User.ID, n.ID, models.ReportCopyright, "")
	require.NoError(t, err)
	r2, err := env.notes.Report(ctx, owner.User.ID, n.ID, models.ReportInappropriate, "")
	require.NoError(t, err)

	_, err = env.admin.Reports(ctx, models.ReportFilter{Status: "lost"})
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = env.admin.Reports(ctx, models.ReportFilter{Type: "spam"})
	assert.ErrorIs(t, err, common.ErrorValidation)

	resolved, err := env.admin.ResolveReport(ctx, rootActor, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, resolved.Status)

	_, err = env.admin.RejectReport(ctx, rootActor, r1.ID)
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = env.admin.RejectReport(ctx, rootActor, r2.ID)
	require.NoError(t, err)

	_, err = env.admin.ResolveReport(ctx, rootActor, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	list, err := env.admin.Reports(ctx, models.ReportFilter{Status: models.ReportResolved})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, r1.ID, list[0].ID)

	list, err = env.admin.Reports(ctx, models.ReportFilter{Type: models.ReportInappropriate})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ReportRejected, list[0].Status)
}

func TestAdmin_DeleteNote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "o@example.com", "owner")
	n := env.createNote(t, owner, sampleInput("Removed", "AI"))

	assert.ErrorIs(t, env.admin.DeleteNote(ctx, actorOf(owner), n.ID), common.ErrorForbidden)
	require.NoError(t, env.admin.DeleteNote(ctx, rootActor, n.ID))

	_, err := env.m.Notes(env.db).GetByID(ctx, n.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAdmin_DeleteNoteKeepsReports(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "o@example.com", "owner")
	reader := env.register(t, "r@example.com", "reader")
	n := env.createNote(t, owner, sampleInput("Plagiarised", "AI"))

	r, err := env.notes.Report(ctx, reader.User.ID, n.ID, models.ReportPlagiarism, "copied")
	require.NoError(t, err)
	_, err = env.admin.ResolveReport(ctx, rootActor, r.ID)
	require.NoError(t, err)

	require.NoError(t, env.admin.DeleteNote(ctx, rootActor, n.ID))

	stats, err := env.admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ReportsResolved)

	list, err := env.admin.Reports(ctx, models.ReportFilter{Status: models.ReportResolved})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Plagiarised", list[0].NoteTitle)
	assert.Equal(t, "owner", list[0].NoteAuthor)
}

func TestAdmin_Stats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	stats, err := env.admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{}, *stats)

	owner := env.register(t, "o@example.com", "owner")
	reader := env.register(t, "r@example.com", "reader")
	_, err = env.admin.SetUserStatus(ctx, rootActor, reader.User.ID, models.UserSuspended)
	require.NoError(t, err)

	in := sampleInput("Stats", "AI")
	in.FileRef = "/files/stats.pdf"
	rated := env.createNote(t, owner, in)
	env.createNote(t, owner, sampleInput("Unrated", "AI"))

	_, err = env.notes.Rate(ctx, owner.User.ID, rated.ID, 4)
	require.NoError(t, err)
	for range 3 {
		_, err = env.notes.Download(ctx, rated.ID)
		require.NoError(t, err)
	}
	r, err := env.notes.Report(ctx, owner.User.ID, rated.ID, models.ReportOther, "")
	require.NoError(t, err)
	_, err = env.admin.ResolveReport(ctx, rootActor, r.ID)
	require.NoError(t, err)

	stats, err = env.admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.ActiveUsers)
	assert.Equal(t, int64(2), stats.TotalNotes)
	assert.Equal(t, int64(3), stats.TotalDownloads)
	assert.Equal(t, int64(1), stats.ReportsResolved)
	assert.InDelta(t, 4.0, stats.AverageRating, 1e-9)
}
