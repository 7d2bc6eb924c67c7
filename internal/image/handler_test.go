package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galleria/service/internal/middleware"
)

type staticResolver map[string]int64

func (s staticResolver) Resolve(_ context.Context, token string) (int64, error) {
	userID, ok := s[token]
	if !ok {
		return 0, errors.New("session not found")
	}
	return userID, nil
}

type listEntryBody struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type envelopeBody struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeCatalog, *fakeBlobStore) {
	t.Helper()

	catalog := newFakeCatalog()
	blobs := newFakeBlobStore()
	handler := NewHandler(NewService(catalog, blobs, time.Hour), 10<<20)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(staticResolver{"alice-token": 1, "bob-token": 2}))
		r.Post("/upload", handler.Upload)
		r.Get("/images", handler.List)
		r.Delete("/images/{id}", handler.Delete)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, catalog, blobs
}

func doJSON(t *testing.T, req *http.Request, token string) (*http.Response, envelopeBody) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelopeBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func uploadImage(t *testing.T, srv *httptest.Server, token, filename string, data []byte) (*http.Response, envelopeBody) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return doJSON(t, req, token)
}

func listImages(t *testing.T, srv *httptest.Server, token string) []listEntryBody {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/images", http.NoBody)
	require.NoError(t, err)
	resp, env := doJSON(t, req, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	var entries []listEntryBody
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	return entries
}

func deleteImage(t *testing.T, srv *httptest.Server, token string, id int64) (*http.Response, envelopeBody) {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/images/"+strconv.FormatInt(id, 10), http.NoBody)
	require.NoError(t, err)
	return doJSON(t, req, token)
}

func TestHandler_RequiresSession(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/images", http.NoBody)
	require.NoError(t, err)
	resp, env := doJSON(t, req, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestHandler_UploadListDeleteFlow(t *testing.T) {
	srv, _, blobs := newTestServer(t)

	resp, env := uploadImage(t, srv, "alice-token", "cat.png", []byte("png-bytes"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, env.Success)

	entries := listImages(t, srv, "alice-token")
	require.Len(t, entries, 1)
	assert.Equal(t, "cat.png", entries[0].Filename)
	assert.Contains(t, entries[0].URL, "https://blobs.test/images/1/")

	// Bob never sees Alice's image.
	assert.Empty(t, listImages(t, srv, "bob-token"))

	// Bob cannot delete it either; the blob stays put.
	resp, env = deleteImage(t, srv, "bob-token", entries[0].ID)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Len(t, blobs.blobs, 1)
	assert.Len(t, listImages(t, srv, "alice-token"), 1)

	// Alice deletes her own image; row and blob are gone.
	resp, env = deleteImage(t, srv, "alice-token", entries[0].ID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
	assert.Empty(t, blobs.blobs)
	assert.Empty(t, listImages(t, srv, "alice-token"))
}

func TestHandler_UploadRejectsNonImages(t *testing.T) {
	srv, catalog, blobs := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="notes.txt"`)
	header.Set("Content-Type", "text/plain")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("not an image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, env := doJSON(t, req, "alice-token")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Empty(t, catalog.images)
	assert.Empty(t, blobs.blobs)
}

func TestHandler_UploadRequiresImageField(t *testing.T) {
	srv, _, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, env := doJSON(t, req, "alice-token")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestHandler_DeleteUnknownID(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, env := deleteImage(t, srv, "alice-token", 999)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)
}
