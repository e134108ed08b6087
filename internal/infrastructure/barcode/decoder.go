package barcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"log"

	"github.com/foodguard/backend/internal/domain"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/datamatrix"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// DefaultMaxPixels bounds the decoded size of an image, about a 40 megapixel photo
const DefaultMaxPixels = 40_000_000

var errEmptyImage = errors.New("empty image payload")

// multipleReader is satisfied by gozxing's QR multi reader and by multiReader
type multipleReader interface {
	DecodeMultiple(image *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}) ([]*gozxing.Result, error)
}

// readerFactory builds a fresh reader; gozxing readers keep per-decode state.
type readerFactory func() multipleReader

// defaultReaders lists the symbologies scanned, retail codes first.
// EAN-13 also reports UPC-A codes (with a leading zero).
var defaultReaders = []readerFactory{
	func() multipleReader { return newMultiReader(oned.NewEAN13Reader()) },
	func() multipleReader { return newMultiReader(oned.NewEAN8Reader()) },
	func() multipleReader { return newMultiReader(oned.NewUPCEReader()) },
	func() multipleReader { return newMultiReader(oned.NewCode128Reader()) },
	func() multipleReader { return newMultiReader(oned.NewCode39Reader()) },
	func() multipleReader { return newMultiReader(oned.NewCode93Reader()) },
	func() multipleReader { return newMultiReader(oned.NewCodaBarReader()) },
	func() multipleReader { return newMultiReader(oned.NewITFReader()) },
	func() multipleReader { return multiqr.NewQRCodeMultiReader() },
	// the multi detector misses some lone codes the plain detector finds
	func() multipleReader { return newMultiReader(qrcode.NewQRCodeReader()) },
	func() multipleReader { return newMultiReader(datamatrix.NewDataMatrixReader()) },
}

// Decoder finds barcodes in raster images
type Decoder struct {
	readers   []readerFactory
	tryHarder bool
	maxPixels int64
	debug     bool
}

// NewDecoder creates a decoder that scans every supported symbology
func NewDecoder() *Decoder {
	return &Decoder{
		readers:   defaultReaders,
		tryHarder: true,
		maxPixels: DefaultMaxPixels,
	}
}

// SetDebug enables or disables debug logging
func (d *Decoder) SetDebug(debug bool) {
	d.debug = debug
}

// SetMaxPixels sets the largest width*height accepted. Non-positive values restore the default.
func (d *Decoder) SetMaxPixels(maxPixels int64) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	d.maxPixels = maxPixels
}

// Decode returns every barcode found in a PNG, JPEG or GIF image.
// An image without barcodes yields an empty slice and no error.
// Bytes that are not a readable image, or an image above the pixel limit,
// yield a *domain.ImageDecodeError.
func (d *Decoder) Decode(data []byte) ([]domain.DecodedSymbol, error) {
	if len(data) == 0 {
		return nil, &domain.ImageDecodeError{Err: errEmptyImage}
	}

	// check dimensions from the header before allocating pixels
	imgConfig, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.ImageDecodeError{Err: err}
	}
	if pixels := int64(imgConfig.Width) * int64(imgConfig.Height); pixels > d.maxPixels {
		return nil, &domain.ImageDecodeError{
			Err: fmt.Errorf("image is %dx%d, above the %d pixel limit", imgConfig.Width, imgConfig.Height, d.maxPixels),
		}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.ImageDecodeError{Err: err}
	}

	if format == "jpeg" {
		img = applyOrientation(img, readOrientation(data))
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, &domain.ImageDecodeError{Err: err}
	}

	hints := map[gozxing.DecodeHintType]interface{}{}
	if d.tryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}

	symbols := []domain.DecodedSymbol{}
	seen := make(map[domain.DecodedSymbol]bool)
	for _, newReader := range d.readers {
		results, err := d.scan(newReader(), bmp, hints)
		if err != nil {
			if d.debug {
				log.Printf("[BARCODE] %v", err)
			}
			continue
		}
		for _, result := range results {
			symbol := domain.DecodedSymbol{
				Value:     result.GetText(),
				Symbology: symbologyOf(result.GetBarcodeFormat()),
			}
			if symbol.Value == "" || seen[symbol] {
				continue
			}
			seen[symbol] = true
			symbols = append(symbols, symbol)
		}
	}

	if d.debug {
		log.Printf("[BARCODE] %s image %dx%d: %d symbol(s)", format, img.Bounds().Dx(), img.Bounds().Dy(), len(symbols))
	}
	return symbols, nil
}

// scan runs one reader over the bitmap. A reader that finds nothing returns an error.
func (d *Decoder) scan(reader multipleReader, bmp *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}) (results []*gozxing.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			results, err = nil, fmt.Errorf("reader panicked: %v", r)
		}
	}()
	return reader.DecodeMultiple(bmp, hints)
}

// symbologyOf maps a gozxing format onto the domain enum
func symbologyOf(format gozxing.BarcodeFormat) domain.Symbology {
	switch format {
	case gozxing.BarcodeFormat_EAN_13:
		return domain.SymbologyEAN13
	case gozxing.BarcodeFormat_EAN_8:
		return domain.SymbologyEAN8
	case gozxing.BarcodeFormat_UPC_A:
		return domain.SymbologyUPCA
	case gozxing.BarcodeFormat_UPC_E:
		return domain.SymbologyUPCE
	case gozxing.BarcodeFormat_CODE_128:
		return domain.SymbologyCode128
	case gozxing.BarcodeFormat_CODE_39:
		return domain.SymbologyCode39
	case gozxing.BarcodeFormat_CODE_93:
		return domain.SymbologyCode93
	case gozxing.BarcodeFormat_CODABAR:
		return domain.SymbologyCodabar
	case gozxing.BarcodeFormat_ITF:
		return domain.SymbologyITF
	case gozxing.BarcodeFormat_QR_CODE:
		return domain.SymbologyQRCode
	case gozxing.BarcodeFormat_DATA_MATRIX:
		return domain.SymbologyDataMatrix
	case gozxing.BarcodeFormat_PDF_417:
		return domain.SymbologyPDF417
	case gozxing.BarcodeFormat_AZTEC:
		return domain.SymbologyAztec
	default:
		return domain.SymbologyUnknown
	}
}
