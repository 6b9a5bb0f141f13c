package auth

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE operators (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			token_version INTEGER NOT NULL DEFAULT 0,
			created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	require.NoError(t, err)
	return NewRepo(db)
}

func protectedRouter(ts TokenService, repo *Repo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/secure", Middleware(ts, repo), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"operator_id": MustGetClaims(c).OperatorID})
	})
	return router
}

func getSecure(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMiddlewareRejectsMissingBearer(t *testing.T) {
	router := protectedRouter(testTokens(), testAuthRepo(t))

	assert.Equal(t, http.StatusUnauthorized, getSecure(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, getSecure(router, "Basic abc").Code)
}

func TestMiddlewareRejectsGarbageToken(t *testing.T) {
	router := protectedRouter(testTokens(), testAuthRepo(t))

	w := getSecure(router, "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddlewareAllowsFreshToken(t *testing.T) {
	ts := testTokens()
	repo := testAuthRepo(t)
	ctx := context.Background()

	op := Operator{ID: "op-1", Username: "alex", PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, op))

	token, _, err := ts.Sign(&op)
	require.NoError(t, err)

	w := getSecure(protectedRouter(ts, repo), "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "op-1")
}

func TestMiddlewareRejectsStaleTokenVersion(t *testing.T) {
	ts := testTokens()
	repo := testAuthRepo(t)
	ctx := context.Background()

	op := Operator{ID: "op-1", Username: "alex", PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, op))

	token, _, err := ts.Sign(&op)
	require.NoError(t, err)

	router := protectedRouter(ts, repo)
	require.Equal(t, http.StatusOK, getSecure(router, "Bearer "+token).Code)

	// Logout bumps the version; every token signed before it goes stale.
	require.NoError(t, repo.BumpTokenVersion(ctx, "op-1"))
	assert.Equal(t, http.StatusUnauthorized, getSecure(router, "Bearer "+token).Code)

	// A token signed after the bump is accepted again.
	fresh, err := repo.GetByID(ctx, "op-1")
	require.NoError(t, err)
	relogin, _, err := ts.Sign(fresh)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, getSecure(router, "Bearer "+relogin).Code)
}
