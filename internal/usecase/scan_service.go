package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/foodguard/backend/internal/domain"
	"github.com/foodguard/backend/internal/infrastructure/upload"
	"github.com/google/uuid"
)

// ScanService drives one image through decode, resolve and match.
// It holds no per-scan state, so one instance serves concurrent scans.
type ScanService struct {
	store    *upload.TempStore
	decoder  domain.BarcodeDecoder
	resolver domain.ProductResolver
	matcher  *SafetyMatcher
}

// NewScanService creates a new scan service with dependencies
func NewScanService(
	store *upload.TempStore,
	decoder domain.BarcodeDecoder,
	resolver domain.ProductResolver,
	matcher *SafetyMatcher,
) *ScanService {
	return &ScanService{
		store:    store,
		decoder:  decoder,
		resolver: resolver,
		matcher:  matcher,
	}
}

// Scan runs the pipeline for an uploaded image on behalf of user.
// It always returns an outcome in exactly one terminal state; failures are
// reported through the outcome rather than as errors. The temporary copy
// of the image is removed on every path, panics included.
func (s *ScanService) Scan(ctx context.Context, img domain.ImageUpload, user *domain.User) (outcome *domain.ScanOutcome) {
	outcome = &domain.ScanOutcome{ID: uuid.NewString()}

	if user == nil {
		return finish(outcome, domain.ScanInvalidInput, "No user supplied for this scan.")
	}
	if _, err := s.store.Extension(img.Filename); err != nil {
		return finish(outcome, domain.ScanUnsupportedFile, "Unsupported file type. Please upload a PNG, JPG, or JPEG image.")
	}
	if len(img.Data) == 0 {
		return finish(outcome, domain.ScanInvalidInput, "No selected file.")
	}

	// Received
	tmp, err := s.store.Write(img.Filename, img.Data)
	if err != nil {
		log.Printf("[SCAN] %s: storing upload failed: %v", outcome.ID, err)
		return finish(outcome, domain.ScanStorageFailed, "The uploaded image could not be stored.")
	}
	defer func() {
		if err := tmp.Release(); err != nil {
			log.Printf("[SCAN] %s: removing %s failed: %v", outcome.ID, tmp.Path(), err)
		}
	}()

	// Decoding
	data, err := tmp.Read()
	if err != nil {
		log.Printf("[SCAN] %s: reading upload failed: %v", outcome.ID, err)
		return finish(outcome, domain.ScanStorageFailed, "The uploaded image could not be read back.")
	}
	symbols, err := s.decoder.Decode(data)
	if err != nil {
		return finish(outcome, domain.ScanImageUnreadable, "The uploaded file is not a readable image.")
	}
	if len(symbols) == 0 {
		return finish(outcome, domain.ScanNoBarcodeFound, "No barcode detected in the uploaded image.")
	}

	outcome.Symbols = symbols
	return s.resolveAndMatch(ctx, outcome, symbols[0], user)
}

// CheckBarcode runs the resolve and match stages for a barcode entered by hand
func (s *ScanService) CheckBarcode(ctx context.Context, barcode string, user *domain.User) *domain.ScanOutcome {
	outcome := &domain.ScanOutcome{ID: uuid.NewString()}
	if user == nil || barcode == "" {
		return finish(outcome, domain.ScanInvalidInput, "A barcode and a user are required.")
	}
	return s.resolveAndMatch(ctx, outcome, domain.DecodedSymbol{Value: barcode}, user)
}

func (s *ScanService) resolveAndMatch(ctx context.Context, outcome *domain.ScanOutcome, symbol domain.DecodedSymbol, user *domain.User) *domain.ScanOutcome {
	outcome.Barcode = symbol.Value
	outcome.Symbology = symbol.Symbology

	// Resolving
	product, err := s.resolver.Resolve(ctx, symbol.Value)
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return finish(outcome, domain.ScanProductNotFound, fmt.Sprintf("No product found for barcode %s.", symbol.Value))
	case errors.Is(err, domain.ErrInvalidInput):
		return finish(outcome, domain.ScanInvalidInput, fmt.Sprintf("Barcode %q is not valid.", symbol.Value))
	case err != nil:
		log.Printf("[SCAN] %s: lookup of %s failed: %v", outcome.ID, symbol.Value, err)
		return finish(outcome, domain.ScanLookupFailed, fmt.Sprintf("Product lookup for barcode %s failed: %v", symbol.Value, err))
	}
	outcome.Product = product

	// Matching
	verdict, err := s.matcher.Match(product, user.Profile())
	if err != nil {
		return finish(outcome, domain.ScanInvalidInput, err.Error())
	}
	outcome.Verdict = verdict

	if verdict.IsSafe {
		return finish(outcome, domain.ScanCompleted, fmt.Sprintf("%s looks safe for your profile.", product.Title))
	}
	return finish(outcome, domain.ScanCompleted, fmt.Sprintf("%s conflicts with your profile.", product.Title))
}

func finish(outcome *domain.ScanOutcome, state domain.ScanState, message string) *domain.ScanOutcome {
	outcome.State = state
	outcome.Message = message
	return outcome
}
