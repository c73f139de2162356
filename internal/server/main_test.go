package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"testing"

	"dojo/internal/config"
	"dojo/internal/models"
	"dojo/internal/storage"
	"dojo/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:                   "test",
		Port:                  "0",
		JWTSecret:             "test-secret-key-that-is-long-enough-1234",
		AccessTokenTTLMinutes: 60,
		RefreshTokenTTLHours:  24,
		UploadMaxSizeMB:       5,
		UploadChunkSizeKB:     64,
	}
}

type testEnv struct {
	srv   *Server
	app   *fiber.App
	db    *gorm.DB
	store *storage.MemoryGateway
	mr    *miniredis.Miniredis
}

// newTestEnv builds a server over an in-memory sqlite database, miniredis and
// an in-memory blob store.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db := testutil.NewTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := storage.NewMemoryGateway()

	srv, err := NewServerWithDeps(testConfig(), db, rdb, store)
	require.NoError(t, err)

	return &testEnv{srv: srv, app: srv.NewApp(), db: db, store: store, mr: mr}
}

// tokenFor signs an access token for user.
func (e *testEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	pair, err := e.srv.tokens.IssuePair(user.ID, user.Username)
	require.NoError(t, err)
	return pair.Access
}

func (e *testEnv) do(t *testing.T, req *http.Request, token string) *http.Response {
	t.Helper()
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return e.do(t, req, token)
}

type filePart struct {
	field       string
	filename    string
	contentType string
	content     []byte
}

func (e *testEnv) doMultipart(t *testing.T, method, path, data string, file *filePart, token string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("data", data))
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.filename+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return e.do(t, req, token)
}

func decode(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
