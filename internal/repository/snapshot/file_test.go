package snapshot

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// testFrame returns a small opaque colour frame.
func testFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := range 48 {
		for x := range 64 {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 80, A: 255})
		}
	}

	return img
}

// TestFileName verifies the timestamp-keyed naming scheme.
func TestFileName(t *testing.T) {
	t.Parallel()

	key := time.Unix(1714564800, 999)

	require.Equal(t, "1714564800_reference_frame.jpg", FileName(key, KindReference))
	require.Equal(t, "1714564800_motion_frame.jpg", FileName(key, KindMotion))
}

// TestFileRepository_SaveCreatesDirectory ensures frames land in a freshly created directory.
func TestFileRepository_SaveCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "frames")
	repo := NewFileRepository(dir, 0)
	key := time.Now()

	path, err := repo.Save(context.Background(), key, KindReference, testFrame())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, FileName(key, KindReference)), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Positive(t, info.Size())

	decoded, err := imaging.Open(path)
	require.NoError(t, err)
	require.Equal(t, testFrame().Bounds(), decoded.Bounds())
}

// TestFileRepository_SaveValidates checks argument validation and cancellation.
func TestFileRepository_SaveValidates(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(t.TempDir(), 80)

	_, err := repo.Save(context.Background(), time.Now(), KindMotion, nil)
	require.Error(t, err)

	_, err = repo.Save(context.Background(), time.Now(), "", testFrame())
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = repo.Save(ctx, time.Now(), KindMotion, testFrame())
	require.ErrorIs(t, err, context.Canceled)
}

// TestNewFileRepository_Defaults ensures empty settings fall back to defaults.
func TestNewFileRepository_Defaults(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository("", 500)
	require.Equal(t, filepath.Clean(DefaultDirectory), repo.Dir())
	require.Equal(t, DefaultJPEGQuality, repo.quality)
}
