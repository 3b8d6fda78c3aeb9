package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/util"
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func newMediaService(t *testing.T) (*MediaService, string) {
	t.Helper()
	root := t.TempDir()
	svc := NewMediaService(&LocalStorageProvider{Root: root}, 1)
	svc.Probe = func(string) (*util.VideoInfo, error) {
		return &util.VideoInfo{Duration: 42}, nil
	}
	return svc, root
}

func TestMediaUpload_Document(t *testing.T) {
	ctx := context.Background()
	svc, root := newMediaService(t)
	content := []byte("lecture notes, week one")

	resp, err := svc.Upload(ctx, fileHeader(t, "Notes.TXT", content), "docs", "user-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Key, "docs/"))
	assert.True(t, strings.HasSuffix(resp.Key, ".txt"))
	assert.Equal(t, "/uploads/"+resp.Key, resp.URL)
	assert.Equal(t, "Notes.TXT", resp.Name)
	assert.True(t, strings.HasPrefix(resp.MimeType, "text/plain"))
	assert.Zero(t, resp.Duration)

	stored, err := os.ReadFile(filepath.Join(root, resp.Key))
	require.NoError(t, err)
	assert.Equal(t, content, stored)

	require.NoError(t, svc.Delete(ctx, resp.Key, "user-1"))
	_, err = os.Stat(filepath.Join(root, resp.Key))
	assert.True(t, os.IsNotExist(err))
}

func TestMediaUpload_VideoIsProbed(t *testing.T) {
	ctx := context.Background()
	svc, root := newMediaService(t)
	content := []byte("pretend these are mp4 bytes")

	resp, err := svc.Upload(ctx, fileHeader(t, "intro.mp4", content), "", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 42, resp.Duration)
	assert.True(t, strings.HasPrefix(resp.Key, "media/"))

	stored, err := os.ReadFile(filepath.Join(root, resp.Key))
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestMediaUpload_ProbeFailureStillUploads(t *testing.T) {
	svc, _ := newMediaService(t)
	svc.Probe = func(string) (*util.VideoInfo, error) { return nil, errors.New("ffprobe missing") }

	resp, err := svc.Upload(context.Background(), fileHeader(t, "intro.webm", []byte("x")), "videos", "user-1")
	require.NoError(t, err)
	assert.Zero(t, resp.Duration)
}

func TestMediaUpload_Rejections(t *testing.T) {
	ctx := context.Background()
	svc, root := newMediaService(t)

	_, err := svc.Upload(ctx, fileHeader(t, "page.html", []byte("<!DOCTYPE html><html><body>hi</body></html>")), "docs", "user-1")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	svc.MaxBytes = 4
	_, err = svc.Upload(ctx, fileHeader(t, "big.txt", []byte("more than four bytes")), "docs", "user-1")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = svc.Delete(ctx, "", "user-1")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	svc.MaxBytes = 1 << 20
	resp, err := svc.Upload(ctx, fileHeader(t, "a.txt", []byte("escape")), "../../etc", "user-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Key, "etc/"))
	_, err = os.Stat(filepath.Join(root, resp.Key))
	assert.NoError(t, err)
}
