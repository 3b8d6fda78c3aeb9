package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/util"
	"academy_backend/pkg/logger"
	"context"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type MediaResponse struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Duration int    `json:"duration,omitempty"`
}

// MediaService uploads lesson documents, thumbnails, videos and attachments.
type MediaService struct {
	Storage  StorageProvider
	MaxBytes int64
	// Probe reads video metadata; replaced in tests.
	Probe func(path string) (*util.VideoInfo, error)
}

func NewMediaService(storage StorageProvider, maxUploadMB int) *MediaService {
	if maxUploadMB <= 0 {
		maxUploadMB = 200
	}
	return &MediaService{Storage: storage, MaxBytes: int64(maxUploadMB) << 20, Probe: util.ProbeVideo}
}

var folderSanitizer = strings.NewReplacer("..", "", "\\", "/")

// Upload stores the file under folder. Videos are probed for their duration.
func (s *MediaService) Upload(ctx context.Context, fh *multipart.FileHeader, folder, callerID string) (_ *MediaResponse, err error) {
	defer guard("upload the file", &err, zap.String("file", fh.Filename), zap.String("user", callerID))

	if fh.Size > s.MaxBytes {
		return nil, apperr.Validation("file is too large", apperr.FieldError{Field: "file", Message: "file exceeds the upload size limit"})
	}
	file, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open upload")
	}
	defer file.Close()

	mimeType, err := util.DetectMimeType(file, util.AllowedUploadTypes)
	if err != nil {
		return nil, apperr.Validation("unsupported file type", apperr.FieldError{Field: "file", Message: err.Error()})
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "rewind upload")
	}

	folder = strings.Trim(folderSanitizer.Replace(folder), "/")
	if folder == "" {
		folder = "media"
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	key := path.Join(folder, uuid.New().String()+ext)

	resp := &MediaResponse{Key: key, Name: fh.Filename, MimeType: mimeType, Size: fh.Size}
	var body io.Reader = file
	if util.IsVideo(mimeType) || util.HasVideoExtension(fh.Filename) {
		tmp, duration, err := s.probe(file, ext)
		if err != nil {
			return nil, err
		}
		defer func() {
			tmp.Close()
			os.Remove(tmp.Name())
		}()
		resp.Duration = duration
		body = tmp
	}

	resp.URL, err = s.Storage.Upload(ctx, key, body, fh.Size, mimeType)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("file uploaded", zap.String("key", key), zap.String("user", callerID), zap.Int64("size", fh.Size))
	return resp, nil
}

// probe spools the video to a temp file for ffprobe and returns it rewound.
func (s *MediaService) probe(src io.Reader, ext string) (*os.File, int, error) {
	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return nil, 0, errors.Wrap(err, "create temp file")
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, 0, errors.Wrap(err, "spool video")
	}
	duration := 0
	if info, err := s.Probe(tmp.Name()); err != nil {
		// 探测失败不影响上传
		logger.Log.Warn("failed to probe video", zap.Error(err))
	} else {
		duration = info.Duration
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, 0, errors.Wrap(err, "rewind temp file")
	}
	return tmp, duration, nil
}

func (s *MediaService) Delete(ctx context.Context, key, callerID string) (err error) {
	defer guard("delete the file", &err, zap.String("key", key), zap.String("user", callerID))
	if key == "" {
		return apperr.Validation("key is required", apperr.FieldError{Field: "key", Message: "key is a required field"})
	}
	return s.Storage.Delete(ctx, key)
}
