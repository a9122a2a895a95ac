package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samudhan2008/sa-notes-beta/internal/catalog"
	"github.com/samudhan2008/sa-notes-beta/internal/server/config"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func testConfig(t *testing.T) *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = freeAddr(t)
	c.EndpointAddrGRPC = freeAddr(t)
	c.DatabaseDSN = "file:" + t.Name() + "?mode=memory&cache=shared"
	c.S3Bucket = ""
	c.AdminPassword = "admin-pw"
	c.DemoNotes = 3
	c.LogLevel = "error"
	return c
}

func TestNewApp_BadDriver(t *testing.T) {
	c := testConfig(t)
	c.DatabaseDriver = "oracle"

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
}

func TestApp_BootstrapIsIdempotent(t *testing.T) {
	ctx := context.Background()
	app, err := NewApp(ctx, testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	require.NoError(t, app.bootstrap(ctx))
	require.NoError(t, app.bootstrap(ctx))

	admin, err := app.repomanager.Users(app.db).GetByEmail(ctx, "admin@sanotes")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	notes, err := app.repomanager.Notes(app.db).List(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 8, "five samples plus three demo notes, seeded once")
}

func TestApp_RunServesUntilCancelled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, cfg)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	url := "http://" + cfg.EndpointAddrHTTP + "/api/notes"
	var res catalog.Result
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		return json.NewDecoder(resp.Body).Decode(&res) == nil
	}, 10*time.Second, 50*time.Millisecond)
	assert.Equal(t, 8, res.Total)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}
