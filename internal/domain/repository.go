package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// BarcodeDecoder extracts barcode symbols from raw image bytes
type BarcodeDecoder interface {
	Decode(image []byte) ([]DecodedSymbol, error)
}

// ProductResolver looks up product metadata by barcode.
// It returns ErrProductNotFound when the database has no record.
type ProductResolver interface {
	Resolve(ctx context.Context, barcode string) (*ProductRecord, error)
}

// UserRepository persists registered users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByMobile(ctx context.Context, mobile string) (*User, error)
	UpdateSensitivities(ctx context.Context, mobile string, allergies, conditions []string) (*User, error)
}
