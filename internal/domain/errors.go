package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound is returned when the product database has no record for a barcode.
	// It is a normal outcome, not a failure.
	ErrProductNotFound = errors.New("product not found in product database")

	// ErrResolver is returned when the product database cannot be reached or answers with an error
	ErrResolver = errors.New("product lookup failed")

	// ErrImageDecode is returned when uploaded bytes are not a readable image
	ErrImageDecode = errors.New("image could not be decoded")

	// ErrInvalidInput is returned when a required input is missing (caller bug)
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFile is returned when an upload's extension is not allowed
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrUserNotFound is returned when no user matches the given identifier
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when a username or mobile number is already registered
	ErrUserExists = errors.New("user already exists")
)

// ImageDecodeError wraps the reason an image could not be read.
type ImageDecodeError struct {
	Err error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("%s: %v", ErrImageDecode, e.Err)
}

func (e *ImageDecodeError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrImageDecode) match.
func (e *ImageDecodeError) Is(target error) bool { return target == ErrImageDecode }

// ResolverError describes a failed call to the product database.
// StatusCode is zero for transport failures and timeouts.
type ResolverError struct {
	Barcode    string
	StatusCode int
	Err        error
}

func (e *ResolverError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s for barcode %s: status %d", ErrResolver, e.Barcode, e.StatusCode)
	}
	return fmt.Sprintf("%s for barcode %s: %v", ErrResolver, e.Barcode, e.Err)
}

func (e *ResolverError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrResolver) match.
func (e *ResolverError) Is(target error) bool { return target == ErrResolver }
