package storage

import (
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"progresshub/backend/utils"
)

// PublicPrefix is the URL prefix uploads are served under.
const PublicPrefix = "/uploads"

// FileStore persists uploaded payloads and hands back a stable reference path.
type FileStore interface {
	Save(fh *multipart.FileHeader) (string, error)
	Delete(ref string) error
}

// LocalStore keeps uploads in a directory on disk.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Dir() string { return s.dir }

// Save writes the upload as <uuid><ext> and returns "/uploads/<name>".
func (s *LocalStore) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "open upload")
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", errors.Wrap(err, "create upload file")
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", errors.Wrap(err, "write upload file")
	}
	if err := dst.Close(); err != nil {
		return "", errors.Wrap(err, "close upload file")
	}
	return path.Join(PublicPrefix, name), nil
}

// Delete removes the file a reference points to. Only the base name is used,
// so a reference can never escape the upload directory.
func (s *LocalStore) Delete(ref string) error {
	name := filepath.Base(filepath.FromSlash(ref))
	if name == "." || name == string(filepath.Separator) || name == ".." {
		return nil
	}
	return os.Remove(filepath.Join(s.dir, name))
}

// Cleaner deletes files in the background. Failures are logged and otherwise ignored.
type Cleaner struct {
	store FileStore
	log   *utils.Logger
	wg    sync.WaitGroup
}

func NewCleaner(store FileStore, log *utils.Logger) *Cleaner {
	return &Cleaner{store: store, log: log.With("component", "file_cleaner")}
}

// Schedule deletes ref on a detached goroutine. Empty references are ignored.
func (c *Cleaner) Schedule(ref string) {
	if c == nil || ref == "" {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.store.Delete(ref); err != nil && !os.IsNotExist(err) {
			c.log.Warn("failed to delete file", "ref", ref, "error", err)
		}
	}()
}

// Wait blocks until every scheduled delete has finished.
func (c *Cleaner) Wait() {
	if c == nil {
		return
	}
	c.wg.Wait()
}
