package util

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// DetectMimeType sniffs the first 512 bytes and checks them against allowedTypes,
// which may be prefixes such as "image/" or full types.
func DetectMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])
	if len(allowedTypes) == 0 {
		return mimeType, nil
	}
	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) {
			return mimeType, nil
		}
	}
	return mimeType, errors.New("invalid file type: " + mimeType)
}

func IsVideo(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeVideo)
}

// HasVideoExtension checks the file name against the accepted video extensions.
func HasVideoExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedVideoExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
