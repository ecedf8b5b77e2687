package kairos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_EnrollFile(t *testing.T) {
	var (
		got     EnrollRequest
		headers http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "face.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xd8, 0xff}, 0o600))

	c := NewClient(srv.Client(), srv.URL, Credentials{AppID: "id", AppKey: "key"})
	status, err := c.EnrollFile(context.Background(), path, "alice", "staff")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "/9j/", got.Image)
	assert.Equal(t, "alice", got.SubjectID)
	assert.Equal(t, "staff", got.GalleryName)
	assert.Equal(t, []string{"id"}, headers["App_id"])
	assert.Equal(t, []string{"key"}, headers["App_key"])
}

func TestClient_EnrollFileMissing(t *testing.T) {
	c := NewClient(nil, "", Credentials{})
	_, err := c.EnrollFile(context.Background(), filepath.Join(t.TempDir(), "nope.jpg"), "alice", "staff")
	assert.Error(t, err)
}

func TestClient_EnrollStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	status, err := NewClient(srv.Client(), srv.URL, Credentials{}).Enroll(context.Background(), EnrollRequest{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
}
