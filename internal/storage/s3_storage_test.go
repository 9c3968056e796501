package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/raseed-labs/raseed-backend/config"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func newTestStorage(t *testing.T, endpoint string) *S3Storage {
	t.Helper()
	s, err := NewS3Storage(context.Background(), &config.StorageConfig{
		Bucket:             "raseed-test",
		Region:             "us-east-1",
		Endpoint:           endpoint,
		AccessKeyID:        "AKID",
		SecretAccessKey:    "SECRET",
		PresignTTLMinutes:  15,
		ForcePathStyleURLs: true,
	})
	require.NoError(t, err)
	return s
}

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), &config.StorageConfig{Region: "us-east-1"})
	assert.Error(t, err)
}

func TestPut(t *testing.T) {
	var gotMethod, gotPath, gotType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := newTestStorage(t, server.URL)
	err := s.Put(context.Background(), "receipts/user-1/r-1.jpg", bytes.NewReader([]byte("jpeg-bytes")), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/raseed-test/receipts/user-1/r-1.jpg", gotPath)
	assert.Equal(t, "image/jpeg", gotType)
	assert.Equal(t, "jpeg-bytes", string(gotBody))
}

func TestPut_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
	}))
	defer server.Close()

	s := newTestStorage(t, server.URL)
	err := s.Put(context.Background(), "receipts/u/r.png", bytes.NewReader([]byte("x")), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 put object failed")
}

func TestDelete(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	s := newTestStorage(t, server.URL)
	require.NoError(t, s.Delete(context.Background(), "insights/u/spending_202507.xlsx"))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestKeyValidation(t *testing.T) {
	s := newTestStorage(t, "http://127.0.0.1:1")
	ctx := context.Background()

	assert.Error(t, s.Put(ctx, "receipts/../secrets", bytes.NewReader(nil), ""))
	assert.Error(t, s.Delete(ctx, ""))
	_, err := s.PresignGet(ctx, "../x", 0)
	assert.Error(t, err)
}

func TestPresignGet(t *testing.T) {
	s := newTestStorage(t, "http://storage.local")

	raw, err := s.PresignGet(context.Background(), "insights/user-1/spending_202507.xlsx", 0)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "storage.local", u.Host)
	assert.Equal(t, "/raseed-test/insights/user-1/spending_202507.xlsx", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))

	raw, err = s.PresignGet(context.Background(), "insights/user-1/spending_202507.xlsx", 5*time.Minute)
	require.NoError(t, err)
	u, err = url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
}
