package domain

// ScanState is the terminal state of one scan pipeline invocation
type ScanState string

const (
	ScanCompleted       ScanState = "COMPLETED"
	ScanNoBarcodeFound  ScanState = "NO_BARCODE_FOUND"
	ScanProductNotFound ScanState = "PRODUCT_NOT_FOUND"
	ScanLookupFailed    ScanState = "LOOKUP_FAILED"
	ScanImageUnreadable ScanState = "IMAGE_UNREADABLE"
	ScanUnsupportedFile ScanState = "UNSUPPORTED_FILE"
	ScanInvalidInput    ScanState = "INVALID_INPUT"
	ScanStorageFailed   ScanState = "STORAGE_FAILED"
)

// ImageUpload is an uploaded image payload. Filename is only used to check the extension.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// ScanOutcome carries everything a caller needs to render the result of a scan
type ScanOutcome struct {
	ID        string          `json:"id"`
	State     ScanState       `json:"state"`
	Message   string          `json:"message"`
	Barcode   string          `json:"barcode,omitempty"`
	Symbology Symbology       `json:"symbology,omitempty"`
	Symbols   []DecodedSymbol `json:"symbols,omitempty"`
	Product   *ProductRecord  `json:"product,omitempty"`
	Verdict   *SafetyVerdict  `json:"verdict,omitempty"`
}
