package motion

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"slices"

	"gocv.io/x/gocv"
)

// maskOn is the value of a changed pixel in the binary mask.
const maskOn = 255

// changedMask returns the binary mask of pixels whose absolute delta is
// strictly greater than the threshold, dilated by the configured passes.
// The caller owns the returned Mat.
func changedMask(reference, current *image.Gray, opts Options) (gocv.Mat, error) {
	ref, err := grayMat(reference)
	if err != nil {
		return gocv.Mat{}, err
	}

	defer ref.Close()

	cur, err := grayMat(current)
	if err != nil {
		return gocv.Mat{}, err
	}

	defer cur.Close()

	changed := gocv.NewMat()

	gocv.AbsDiff(ref, cur, &changed)
	gocv.Threshold(changed, &changed, float32(opts.DifferenceThreshold), maskOn, gocv.ThresholdBinary)

	if opts.DilationIterations > 0 {
		kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
		defer kernel.Close()

		for range opts.DilationIterations {
			gocv.Dilate(changed, &changed, kernel)
		}
	}

	return changed, nil
}

// outerRegions traces the external contours of mask and keeps those whose
// filled pixel area is strictly greater than minArea. Holes and anything
// nested inside them belong to the enclosing outline.
func outerRegions(mask gocv.Mat, minArea int) []Region {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var result []Region

	for i := range contours.Size() {
		box := gocv.BoundingRect(contours.At(i))

		area := filledArea(mask.Rows(), mask.Cols(), contours, i, box)
		if area <= minArea {
			continue
		}

		result = append(result, Region{
			X:      box.Min.X,
			Y:      box.Min.Y,
			Width:  box.Dx(),
			Height: box.Dy(),
			Area:   area,
		})
	}

	slices.SortStableFunc(result, func(a, b Region) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X))
	})

	return result
}

// filledArea counts the pixels covered by contour idx drawn filled.
func filledArea(rows, cols int, contours gocv.PointsVector, idx int, box image.Rectangle) int {
	filled := gocv.Zeros(rows, cols, gocv.MatTypeCV8UC1)
	defer filled.Close()

	gocv.DrawContours(&filled, contours, idx, color.RGBA{R: maskOn, G: maskOn, B: maskOn, A: maskOn}, -1)

	inside := filled.Region(box)
	defer inside.Close()

	return gocv.CountNonZero(inside)
}

// grayMat copies img into a single-channel Mat anchored at (0, 0).
func grayMat(img *image.Gray) (gocv.Mat, error) {
	b := img.Bounds()

	packed := img
	if img.Stride != b.Dx() || len(img.Pix) != b.Dx()*b.Dy() {
		packed = image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := range b.Dy() {
			copy(packed.Pix[y*b.Dx():(y+1)*b.Dx()], img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):])
		}
	}

	mat, err := gocv.ImageGrayToMatGray(packed)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("convert frame: %w", err)
	}

	return mat, nil
}
