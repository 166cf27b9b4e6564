// Package photostore saves uploaded catch photos under a configured directory.
package photostore

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders for thumbnailing
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"fishlog/internal/logging"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

// Naming selects how stored filenames are derived.
type Naming string

const (
	// NamingUUID stores each upload under a random key keeping the original extension.
	NamingUUID Naming = "uuid"
	// NamingOriginal keeps the client supplied base name. Later uploads overwrite earlier ones.
	NamingOriginal Naming = "original"
)

// ThumbnailPrefix is prepended to the stored filename of a photo's thumbnail.
const ThumbnailPrefix = "thumb_"

const thumbnailSize = 300

// Store writes uploads to Dir.
type Store struct {
	Dir    string
	Naming Naming
}

// New creates the upload directory if needed.
func New(dir string, naming Naming) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{Dir: dir, Naming: naming}, nil
}

// Save stores the uploaded file and returns the filename reference to persist.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	name, err := s.storageName(fh.Filename)
	if err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	if err := s.writeThumbnail(name, data); err != nil {
		logging.Warn().Err(err).Str("file", name).Msg("thumbnail not generated")
	}
	return name, nil
}

// ThumbnailName returns the filename of the thumbnail written for a stored photo.
// The photo's own extension is kept so a.png and a.jpg get distinct thumbnails.
func ThumbnailName(name string) string {
	return ThumbnailPrefix + name + ".jpg"
}

// Remove deletes a stored photo and its thumbnail. Missing files are not an error.
func (s *Store) Remove(name string) error {
	for _, n := range []string{name, ThumbnailName(name)} {
		if err := os.Remove(filepath.Join(s.Dir, n)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", n, err)
		}
	}
	return nil
}

// Path returns the on-disk location of a stored filename.
func (s *Store) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

func (s *Store) storageName(original string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	if base == "." || base == ".." || base == "/" || base == "" {
		return "", fmt.Errorf("invalid upload filename %q", original)
	}
	if s.Naming == NamingOriginal {
		return base, nil
	}
	return uuid.NewString() + strings.ToLower(filepath.Ext(base)), nil
}

func (s *Store) writeThumbnail(name string, data []byte) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	thumb := resize.Thumbnail(thumbnailSize, thumbnailSize, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, ThumbnailName(name)), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write thumbnail: %w", err)
	}
	return nil
}
