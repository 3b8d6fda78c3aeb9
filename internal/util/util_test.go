package util

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/model"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Intro to Go", "intro-to-go"},
		{"  C++ & Rust!  ", "c-rust"},
		{"Week 1: Basics", "week-1-basics"},
		{"---", ""},
		{"已经", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}

	long := Slugify(strings.Repeat("ab ", 200))
	assert.LessOrEqual(t, len(long), 250)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"go": true}
	slug, err := UniqueSlug("Go", func(s string) (bool, error) { return taken[s], nil })
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(slug, "go-"))
	assert.Len(t, slug, len("go-")+5)

	slug, err = UniqueSlug("!!!", func(string) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Equal(t, "item", slug)

	_, err = UniqueSlug("x", func(string) (bool, error) { return false, errors.New("db down") })
	assert.Error(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Email: "t@example.com", Role: model.Trainer}
	user.ID = "33333333-3333-3333-3333-333333333333"

	tok, err := GenerateJWT(user, "s3cret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(tok, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Trainer, claims.Role)
	assert.NotEmpty(t, claims.ID)

	_, err = ParseJWT(tok, "other")
	assert.Error(t, err)
}

func TestParseProbe(t *testing.T) {
	out := `{"streams":[{"codec_type":"audio"},{"codec_type":"video","width":1280,"height":720}],
		"format":{"duration":"61.6","format_name":"mov,mp4"}}`
	info, err := parseProbe(out)
	require.NoError(t, err)
	assert.Equal(t, 62, info.Duration)
	assert.Equal(t, 1280, info.Width)
	assert.Equal(t, 720, info.Height)
	assert.Equal(t, "mov,mp4", info.Format)

	info, err = parseProbe(`{"format":{"duration":"N/A"}}`)
	require.NoError(t, err)
	assert.Zero(t, info.Duration)

	_, err = parseProbe("not json")
	assert.Error(t, err)
}

func TestDetectMimeType(t *testing.T) {
	mime, err := DetectMimeType(strings.NewReader("%PDF-1.4 body"), AllowedUploadTypes)
	require.NoError(t, err)
	assert.Equal(t, MimePDF, mime)

	_, err = DetectMimeType(strings.NewReader("<html><body>x</body></html>"), AllowedUploadTypes)
	assert.Error(t, err)

	assert.True(t, HasVideoExtension("lecture.MP4"))
	assert.False(t, HasVideoExtension("notes.txt"))
}

func TestValidate(t *testing.T) {
	type request struct {
		Email string `json:"email" binding:"required,email"`
		Name  string `json:"name" binding:"required"`
	}

	err := Validate(request{Email: "bad"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	fields := map[string]string{}
	for _, f := range appErr.Fields {
		fields[f.Field] = f.Message
	}
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields["name"], "required")

	assert.NoError(t, Validate(request{Email: "ok@example.com", Name: "ok"}))
}
