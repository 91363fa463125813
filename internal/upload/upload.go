// Package upload handles avatar image intake: size and type enforcement,
// collision-resistant file naming, and safe removal of superseded files.
package upload

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"

	apperrors "github.com/Nayuta9382/taskdeck/internal/pkg/errors"
)

const (
	// MaxFileSize is the upload size ceiling.
	MaxFileSize = 2 << 20 // 2 MiB

	// DefaultAvatarPath is the shared default avatar, never deleted.
	DefaultAvatarPath = "/uploads/default-img.png"

	// URLPrefix is the public path under which stored files are served.
	URLPrefix = "/uploads/"

	// maxFileNameLen keeps generated names filesystem-safe.
	maxFileNameLen = 240
)

var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
}

// Store persists avatar files under a single upload directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates the upload directory if needed and returns a store.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &Store{dir: abs, logger: logger}, nil
}

// Save validates and persists one uploaded image, returning its public path.
// Size and type rejections come back as distinct application errors so the
// caller can flash distinct messages.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxFileSize {
		return "", apperrors.ErrUploadTooLarge
	}

	file, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	// Sniff the real content type; the client-declared header is not trusted.
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}
	head = head[:n]
	if _, ok := allowedTypes[http.DetectContentType(head)]; !ok {
		return "", apperrors.ErrUploadBadType
	}

	name := fileName(fh.Filename)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := dst.Write(head); err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}

	return URLPrefix + name, nil
}

// Remove deletes a previously stored file. The default avatar and paths
// outside the upload directory are skipped; failures are logged and
// swallowed so a stale file never blocks a profile update.
func (s *Store) Remove(publicPath string) {
	if publicPath == "" || publicPath == DefaultAvatarPath {
		return
	}
	// External avatar URLs (e.g. GitHub) are not local files.
	if !strings.HasPrefix(publicPath, URLPrefix) {
		return
	}

	target := filepath.Clean(filepath.Join(s.dir, strings.TrimPrefix(publicPath, URLPrefix)))
	if !strings.HasPrefix(target, s.dir+string(filepath.Separator)) {
		s.logger.Warn("refusing to delete path outside upload directory",
			slog.String("path", publicPath))
		return
	}

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to delete stale upload",
			slog.String("path", publicPath),
			slog.String("error", err.Error()))
	}
}

// fileName builds a collision-resistant name from a ULID timestamp,
// preserving the original extension and truncating to a safe length.
func fileName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := "user-" + ulid.Make().String()
	name := base + ext
	if len(name) > maxFileNameLen {
		name = base[:maxFileNameLen-len(ext)] + ext
	}
	return name
}
