package utils

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveBytes(t *testing.T, size int) string {
	t.Helper()
	body := bytes.Repeat([]byte{'x'}, size)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestDownloadAtLimit(t *testing.T) {
	data, err := Download(context.Background(), serveBytes(t, maxDownloadSize))
	require.NoError(t, err)
	assert.Len(t, data, maxDownloadSize)
}

func TestDownloadRejectsOversizeFile(t *testing.T) {
	data, err := Download(context.Background(), serveBytes(t, maxDownloadSize+10240))
	assert.Error(t, err)
	assert.Nil(t, data)
}

func TestDownloadBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Download(context.Background(), srv.URL)
	assert.Error(t, err)
}
