package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/gommon/random"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// ErrRejected matches every upload refused by Check or Save
var ErrRejected = errors.New("upload rejected")

// RejectedError describes why a file was refused
type RejectedError struct {
	Filename string
	Reason   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Filename, e.Reason)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

func reject(filename, format string, args ...interface{}) error {
	return &RejectedError{Filename: filename, Reason: fmt.Sprintf(format, args...)}
}

// File is a stored upload
type File struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
	MIME string `json:"mime"`
}

// Store validates multipart files and saves them under one directory served at URLPrefix
type Store struct {
	dir        string
	urlPrefix  string
	maxSize    int64
	extensions map[string]struct{}
	sweepers   int
}

func NewStore(dir, urlPrefix string, maxSize int64, extensions []string) *Store {
	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		exts["."+strings.TrimPrefix(strings.ToLower(e), ".")] = struct{}{}
	}
	return &Store{
		dir:        dir,
		urlPrefix:  "/" + strings.Trim(urlPrefix, "/"),
		maxSize:    maxSize,
		extensions: exts,
		sweepers:   8,
	}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// Check validates extension, size and declared MIME type without reading the content
func (s *Store) Check(fh *multipart.FileHeader) error {
	if fh == nil {
		return reject("", "no file")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := s.extensions[ext]; !ok {
		return reject(fh.Filename, "file type %q is not allowed", ext)
	}
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return reject(fh.Filename, "file exceeds the %d MB limit", s.maxSize/1024/1024)
	}
	if declared := declaredMIME(fh); declared != "" && !mediaType(declared) {
		return reject(fh.Filename, "content type %s is not an image or video", declared)
	}
	return nil
}

// Read validates fh and returns its content with the resolved MIME type
func (s *Store) Read(fh *multipart.FileHeader) ([]byte, string, error) {
	if err := s.Check(fh); err != nil {
		return nil, "", err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	limit := s.maxSize
	if limit <= 0 {
		limit = fh.Size
	}
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, "", err
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, "", reject(fh.Filename, "file exceeds the %d MB limit", s.maxSize/1024/1024)
	}
	mtype := declaredMIME(fh)
	if mtype == "" {
		mtype = mimetype.Detect(data).String()
		if !mediaType(mtype) {
			return nil, "", reject(fh.Filename, "content type %s is not an image or video", mtype)
		}
	}
	return data, mtype, nil
}

// Save validates fh and writes it to the store under a generated name
func (s *Store) Save(fh *multipart.FileHeader) (*File, error) {
	data, mtype, err := s.Read(fh)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), random.String(12, random.Lowercase, random.Numeric), ext)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}
	if err := writeFile(filepath.Join(s.dir, name), bytes.NewReader(data)); err != nil {
		return nil, err
	}
	zap.L().Debug("upload saved", zap.String("name", name), zap.String("mime", mtype), zap.Int("size", len(data)))
	return &File{Name: name, URL: s.URL(name), Size: int64(len(data)), MIME: mtype}, nil
}

// URL returns the public URL of a stored file name
func (s *Store) URL(name string) string {
	return path.Join(s.urlPrefix, name)
}

// Remove deletes the file behind a public URL; URLs outside the store are ignored
func (s *Store) Remove(url string) error {
	name, ok := s.nameOf(url)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) nameOf(url string) (string, bool) {
	if !strings.HasPrefix(url, s.urlPrefix+"/") {
		return "", false
	}
	name := path.Base(url)
	if name == "." || name == "/" || name == ".." {
		return "", false
	}
	return name, true
}

// Sweep removes files that no referenced URL points at and that are older than olderThan.
// It returns the number of files removed.
func (s *Store) Sweep(ctx context.Context, referenced []string, olderThan time.Duration) (int, error) {
	keep := make(map[string]struct{}, len(referenced))
	for _, u := range referenced {
		if name, ok := s.nameOf(u); ok {
			keep[name] = struct{}{}
		}
	}
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}

	pool, err := ants.NewPool(s.sweepers)
	if err != nil {
		return 0, err
	}
	defer pool.Release()

	cutoff := time.Now().Add(-olderThan)
	var (
		wg      sync.WaitGroup
		removed int64
	)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if entry.IsDir() {
			continue
		}
		if _, ok := keep[entry.Name()]; ok {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		name := entry.Name()
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
				zap.L().Warn("sweep remove failed", zap.String("name", name), zap.Error(err))
				return
			}
			atomic.AddInt64(&removed, 1)
		}); err != nil {
			wg.Done()
			zap.L().Warn("sweep submit failed", zap.String("name", name), zap.Error(err))
		}
	}
	wg.Wait()
	return int(removed), ctx.Err()
}

func declaredMIME(fh *multipart.FileHeader) string {
	v := strings.TrimSpace(fh.Header.Get("Content-Type"))
	if i := strings.Index(v, ";"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	if strings.EqualFold(v, "application/octet-stream") {
		return ""
	}
	return strings.ToLower(v)
}

func mediaType(m string) bool {
	return strings.HasPrefix(m, "image/") || strings.HasPrefix(m, "video/")
}

func writeFile(dst string, r io.Reader) error {
	tmp := dst + ".part"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

// WriteFile atomically writes data to dst, used by callers that compute their own names
func WriteFile(dst string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return writeFile(dst, bytes.NewReader(data))
}
