package storage

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/spf13/afero"
)

// MaxSourceBytes caps how much of a source image is read.
const MaxSourceBytes = 32 << 20

// SourceStorage opens source images by locator: an http(s) URL or a path
// relative to the source root.
type SourceStorage interface {
	Open(locator string) (io.ReadCloser, error)
}

type sourceStorage struct {
	fs     afero.Fs
	client *http.Client
}

// NewFileStorage serves local sources read-only from basePath and remote
// ones with the given fetch timeout.
func NewFileStorage(basePath string, fetchTimeout time.Duration) SourceStorage {
	fs := afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), basePath))
	return NewSourceStorage(fs, &http.Client{Timeout: fetchTimeout})
}

func NewSourceStorage(fs afero.Fs, client *http.Client) SourceStorage {
	return &sourceStorage{fs: fs, client: client}
}

func (s *sourceStorage) Open(locator string) (io.ReadCloser, error) {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return s.fetch(locator)
	}

	name := strings.TrimPrefix(filepath.ToSlash(locator), "/")
	if !filepath.IsLocal(name) {
		return nil, fmt.Errorf("%w: %q is outside the source root", entity.ErrSourceUnavailable, locator)
	}
	f, err := s.fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrSourceUnavailable, err)
	}
	return limited(f), nil
}

func (s *sourceStorage) fetch(url string) (io.ReadCloser, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: remote sources are disabled", entity.ErrSourceUnavailable)
	}
	resp, err := s.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrSourceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s answered %s", entity.ErrSourceUnavailable, url, resp.Status)
	}
	return limited(resp.Body), nil
}

type limitedReadCloser struct {
	io.Reader
	io.Closer
}

func limited(rc io.ReadCloser) io.ReadCloser {
	return limitedReadCloser{Reader: io.LimitReader(rc, MaxSourceBytes), Closer: rc}
}
