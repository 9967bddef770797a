package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/trendline/pkg/adapters/memory"
	"github.com/aretw0/trendline/pkg/domain"
	"github.com/aretw0/trendline/pkg/persistence/middleware"
	"github.com/aretw0/trendline/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func sampleReport(runID string) *domain.Report {
	return &domain.Report{
		RunID:        runID,
		Query:        "weekly",
		Content:      "## Trending GitHub Repositories Summary\n\nsecret sauce",
		Repositories: []domain.Item{{FullName: "o/r", HTMLURL: "https://github.com/o/r"}},
		CreatedAt:    time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	}
}

func encrypted(t *testing.T, cfg middleware.EncryptionConfig) middleware.Middleware {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, sampleReport("run-1")))

	stored, err := underlying.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.NotContains(t, stored.Content, "secret sauce")
	assert.True(t, strings.HasPrefix(stored.Content, "enc:v1:"))
	assert.Empty(t, stored.Query)
	assert.Empty(t, stored.Repositories)

	loaded, err := secure.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, sampleReport("run-1"), loaded)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	secure := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(memory.NewStore())
	tests.RunReportStoreContract(t, secure)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	secureOld := encrypted(t, middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, secureOld.Save(ctx, sampleReport("rotation")))

	secureNew := encrypted(t, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := secureNew.Load(ctx, "rotation")
	require.NoError(t, err, "fallback key must decrypt old reports")

	loaded.Content = "re-encrypted"
	require.NoError(t, secureNew.Save(ctx, loaded))

	_, err = secureOld.Load(ctx, "rotation")
	assert.Error(t, err, "old key alone must not decrypt new reports")
}

func TestEncryptionMiddleware_PlainReportRejected(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, sampleReport("plain")))

	secure := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(ctx, "plain")
	assert.ErrorContains(t, err, "missing encrypted data envelope")

	_, err = secure.Load(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	parsed, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key) + "\n")
	require.NoError(t, err)
	assert.Equal(t, key, parsed)

	_, err = middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.ParseKey("not base64!")
	assert.Error(t, err)
}
