package snapshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/disintegration/imaging"
)

// Kind names the role of a saved frame.
type Kind string

const (
	// KindReference is the colour frame captured when observation started.
	KindReference Kind = "reference_frame"
	// KindMotion is the annotated frame on which motion was detected.
	KindMotion Kind = "motion_frame"
)

const (
	// DefaultDirectory is where frames are written when nothing is configured.
	DefaultDirectory = "./motion_frames"
	// DefaultJPEGQuality is the encoder quality used when nothing is configured.
	DefaultJPEGQuality = 95
	// directoryPermissions is the mode used for the output directory.
	directoryPermissions = 0o750
)

// Repository defines persistence operations for session frames.
type Repository interface {
	Save(ctx context.Context, key time.Time, kind Kind, img image.Image) (string, error)
}

// FileRepository writes frames as JPEG files into a directory.
type FileRepository struct {
	// dir is the output directory, created on first save.
	dir string
	// quality is the JPEG quality in 1..100.
	quality int
	// mu serializes directory creation and writes.
	mu sync.Mutex
}

var (
	// errImageRequired is returned when Save is called without an image.
	errImageRequired = errors.New("image must be provided")
	// errKindRequired is returned when Save is called without a kind.
	errKindRequired = errors.New("frame kind must be provided")
)

// NewFileRepository creates a repository writing into dir with the given JPEG quality.
// Out-of-range quality falls back to DefaultJPEGQuality.
func NewFileRepository(dir string, quality int) *FileRepository {
	if dir == "" {
		dir = DefaultDirectory
	}

	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	return &FileRepository{
		dir:     filepath.Clean(dir),
		quality: quality,
	}
}

// Dir returns the output directory.
func (r *FileRepository) Dir() string {
	return r.dir
}

// Save encodes img as <unix seconds>_<kind>.jpg and returns the written path.
func (r *FileRepository) Save(ctx context.Context, key time.Time, kind Kind, img image.Image) (string, error) {
	if img == nil {
		return "", errImageRequired
	}

	if kind == "" {
		return "", errKindRequired
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, directoryPermissions); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(r.dir, FileName(key, kind))

	if err := imaging.Save(img, path, imaging.JPEGQuality(r.quality)); err != nil {
		return "", fmt.Errorf("write %s: %w", kind, err)
	}

	return path, nil
}

// FileName returns the file name used for a frame of kind captured at key.
func FileName(key time.Time, kind Kind) string {
	return strconv.FormatInt(key.Unix(), 10) + "_" + string(kind) + ".jpg"
}
