package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/internal/repository"
	"github.com/rapidautoparts/storefront/internal/upload"
	"go.uber.org/zap"
)

const checksumPrefix = 12

// CategoryImages publishes representative images for part categories.
// Files are content addressed so a URL never changes meaning once handed out.
type CategoryImages struct {
	repo    repository.CategoryImageRepository
	checker *upload.Store
	dir     string
	baseURL string
}

func NewCategoryImages(repo repository.CategoryImageRepository, checker *upload.Store, dir, baseURL string) *CategoryImages {
	return &CategoryImages{
		repo:    repo,
		checker: checker,
		dir:     dir,
		baseURL: "/" + strings.Trim(baseURL, "/"),
	}
}

func (s *CategoryImages) List(ctx context.Context) ([]domain.CategoryImage, error) {
	return s.repo.List(ctx)
}

// Publish stores the uploaded image for a category and moves the category to the new version
func (s *CategoryImages) Publish(ctx context.Context, category string, fh *multipart.FileHeader) (*domain.CategoryImage, error) {
	slug, err := domain.NormalizeCategory(category)
	if err != nil {
		return nil, err
	}
	data, mtype, err := s.checker.Read(fh)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(mtype, "image/") {
		return nil, &upload.RejectedError{Filename: fh.Filename, Reason: "category images must be images"}
	}

	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])
	name := fmt.Sprintf("%s-%s%s", slug, checksum[:checksumPrefix], strings.ToLower(filepath.Ext(fh.Filename)))
	dst := filepath.Join(s.dir, name)
	created := false
	if _, err := os.Stat(dst); os.IsNotExist(err) {
		if err := upload.WriteFile(dst, data); err != nil {
			return nil, domain.NewStorageError(err, "Failed to write category image")
		}
		created = true
	}

	img, err := s.repo.Publish(ctx, slug, path.Join(s.baseURL, name), checksum)
	if err != nil {
		if created {
			_ = os.Remove(dst)
		}
		return nil, err
	}
	zap.L().Info("category image published",
		zap.String("category", slug),
		zap.String("path", img.Path),
		zap.Int64("version", img.Version))
	return img, nil
}
