package barcode

import (
	"errors"

	"github.com/makiuchi-d/gozxing"
)

const (
	// regions narrower than this are not searched again
	minDimensionToRecurse = 100
	maxRecursionDepth     = 4
)

var errNoSymbol = errors.New("no barcode found")

// multiReader finds several symbols with a reader that returns one per call.
// After each hit it searches the regions left of, above, right of and below
// the symbol's result points.
type multiReader struct {
	delegate gozxing.Reader
}

func newMultiReader(delegate gozxing.Reader) *multiReader {
	return &multiReader{delegate: delegate}
}

// DecodeMultiple returns every distinct symbol found, or an error when there is none
func (m *multiReader) DecodeMultiple(bmp *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}) ([]*gozxing.Result, error) {
	var results []*gozxing.Result
	m.collect(bmp, hints, &results, 0)
	if len(results) == 0 {
		return nil, errNoSymbol
	}
	return results, nil
}

func (m *multiReader) collect(bmp *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}, results *[]*gozxing.Result, depth int) {
	if depth > maxRecursionDepth {
		return
	}

	m.delegate.Reset()
	result, err := m.delegate.Decode(bmp, hints)
	if err != nil {
		return
	}
	if !containsResult(*results, result) {
		*results = append(*results, result)
	}

	points := result.GetResultPoints()
	if len(points) == 0 || !bmp.IsCropSupported() {
		return
	}

	width, height := bmp.GetWidth(), bmp.GetHeight()
	minX, minY := float64(width), float64(height)
	maxX, maxY := 0.0, 0.0
	for _, point := range points {
		if point == nil {
			continue
		}
		x, y := point.GetX(), point.GetY()
		if x < minX {
			minX = x
		}
		if y < minY {
			minY = y
		}
		if x > maxX {
			maxX = x
		}
		if y > maxY {
			maxY = y
		}
	}

	if minX > minDimensionToRecurse {
		m.collectCrop(bmp, hints, results, depth, 0, 0, int(minX), height)
	}
	if minY > minDimensionToRecurse {
		m.collectCrop(bmp, hints, results, depth, 0, 0, width, int(minY))
	}
	if maxX < float64(width-minDimensionToRecurse) {
		m.collectCrop(bmp, hints, results, depth, int(maxX), 0, width-int(maxX), height)
	}
	if maxY < float64(height-minDimensionToRecurse) {
		m.collectCrop(bmp, hints, results, depth, 0, int(maxY), width, height-int(maxY))
	}
}

func (m *multiReader) collectCrop(bmp *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}, results *[]*gozxing.Result, depth, left, top, width, height int) {
	cropped, err := bmp.Crop(left, top, width, height)
	if err != nil {
		return
	}
	m.collect(cropped, hints, results, depth+1)
}

// containsResult compares text and format only; points are relative to the crop they came from
func containsResult(results []*gozxing.Result, candidate *gozxing.Result) bool {
	for _, r := range results {
		if r.GetText() == candidate.GetText() && r.GetBarcodeFormat() == candidate.GetBarcodeFormat() {
			return true
		}
	}
	return false
}
