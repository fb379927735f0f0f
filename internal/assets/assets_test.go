package assets

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/internal/repository"
	"github.com/rapidautoparts/storefront/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setup(t *testing.T) (*CategoryImages, string) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	dir := t.TempDir()
	checker := upload.NewStore(t.TempDir(), "/uploads", 1<<20, []string{"png", "jpg", "mp4"})
	return NewCategoryImages(repository.NewGormCategoryImageRepository(db), checker, dir, "/images"), dir
}

func imageHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["image"][0]
}

func TestPublishVersionsAndContentAddressing(t *testing.T) {
	ctx := context.Background()
	svc, dir := setup(t)

	first, err := svc.Publish(ctx, "Engine", imageHeader(t, "engine.png", "image/png", []byte("first")))
	require.NoError(t, err)
	assert.Equal(t, "engine", first.Category)
	assert.Equal(t, int64(1), first.Version)
	assert.True(t, strings.HasPrefix(first.Path, "/images/engine-"))

	second, err := svc.Publish(ctx, "engine", imageHeader(t, "engine.png", "image/png", []byte("second")))
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Version)
	assert.NotEqual(t, first.Path, second.Path)

	// both versions stay readable
	for _, p := range []string{first.Path, second.Path} {
		_, err := os.Stat(filepath.Join(dir, filepath.Base(p)))
		assert.NoError(t, err)
	}

	// same bytes again yields the same file and a new version
	third, err := svc.Publish(ctx, "engine", imageHeader(t, "engine.png", "image/png", []byte("first")))
	require.NoError(t, err)
	assert.Equal(t, first.Path, third.Path)
	assert.Equal(t, int64(3), third.Version)

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(3), rows[0].Version)
}

func TestPublishRejects(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	_, err := svc.Publish(ctx, "../etc", imageHeader(t, "x.png", "image/png", []byte("x")))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Publish(ctx, "engine", imageHeader(t, "clip.mp4", "video/mp4", []byte("x")))
	assert.ErrorIs(t, err, upload.ErrRejected)

	_, err = svc.Publish(ctx, "engine", imageHeader(t, "tool.exe", "image/png", []byte("x")))
	assert.ErrorIs(t, err, upload.ErrRejected)
}
