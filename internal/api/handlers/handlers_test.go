package handlers_test

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/plateful/recipebox/internal/api"
	"github.com/plateful/recipebox/internal/auth"
	"github.com/plateful/recipebox/internal/media"
	"github.com/plateful/recipebox/internal/testutil"
	"github.com/stretchr/testify/require"
)

// setupTestRouter wires the full API router against an in-memory
// database, a temp-dir media store, and a pre-created authenticated
// user.
func setupTestRouter(t *testing.T) (http.Handler, *testutil.TestSetup) {
	t.Helper()

	ts := testutil.NewTestContext(t)
	t.Cleanup(ts.Cleanup)

	store, err := media.NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		DB:          ts.DB,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		JWTService:  ts.JWTService,
		AuthService: auth.NewService(ts.DB, ts.JWTService),
		MediaStore:  store,
	})
	return router, ts
}
