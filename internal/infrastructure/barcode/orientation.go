package barcode

import (
	"image"
	"image/draw"
	"strconv"

	exif "github.com/dsoprea/go-exif/v3"
)

// EXIF orientation values, see the TIFF/EXIF "Orientation" tag
const (
	orientationNormal     = 1
	orientationMirrorH    = 2
	orientationRotate180  = 3
	orientationMirrorV    = 4
	orientationTranspose  = 5
	orientationRotate90   = 6
	orientationTransverse = 7
	orientationRotate270  = 8
)

// readOrientation returns the EXIF orientation of a JPEG, or 1 when absent.
// Phone cameras store the sensor image unrotated and record the rotation here.
func readOrientation(data []byte) int {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return orientationNormal
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return orientationNormal
	}

	for _, entry := range entries {
		if entry.TagName != "Orientation" {
			continue
		}
		if values, ok := entry.Value.([]uint16); ok && len(values) > 0 {
			return int(values[0])
		}
		if v, err := strconv.Atoi(entry.FormattedFirst); err == nil {
			return v
		}
	}
	return orientationNormal
}

// applyOrientation returns img transformed so that it displays upright
func applyOrientation(img image.Image, orientation int) image.Image {
	if orientation <= orientationNormal || orientation > orientationRotate270 {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	dw, dh := w, h
	if orientation >= orientationTranspose {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))

	src := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := orientedPoint(orientation, x, y, w, h)
			dst.SetRGBA(dx, dy, src.RGBAAt(x, y))
		}
	}
	return dst
}

// orientedPoint maps source pixel (x, y) of a w x h image to its upright position
func orientedPoint(orientation, x, y, w, h int) (int, int) {
	switch orientation {
	case orientationMirrorH:
		return w - 1 - x, y
	case orientationRotate180:
		return w - 1 - x, h - 1 - y
	case orientationMirrorV:
		return x, h - 1 - y
	case orientationTranspose:
		return y, x
	case orientationRotate90:
		return h - 1 - y, x
	case orientationTransverse:
		return h - 1 - y, w - 1 - x
	case orientationRotate270:
		return y, w - 1 - x
	default:
		return x, y
	}
}
