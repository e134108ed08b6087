package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/foodguard/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data      map[string]interface{}
	getError  error
	setError  error
	getCalled bool
	setCalled bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string]interface{}),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.getCalled = true
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.setCalled = true
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

// MockResolver is a mock implementation of domain.ProductResolver
type MockResolver struct {
	mu       sync.Mutex
	products map[string]*domain.ProductRecord
	err      error
	calls    []string
}

func NewMockResolver() *MockResolver {
	return &MockResolver{products: make(map[string]*domain.ProductRecord)}
}

func (m *MockResolver) Resolve(ctx context.Context, barcode string) (*domain.ProductRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, barcode)
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.products[barcode]; ok {
		return p, nil
	}
	return nil, domain.ErrProductNotFound
}

func (m *MockResolver) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// MockDecoder is a mock implementation of domain.BarcodeDecoder
type MockDecoder struct {
	mu       sync.Mutex
	symbols  []domain.DecodedSymbol
	err      error
	panicMsg string
	// seen receives the bytes passed to Decode
	seen []byte
}

func (m *MockDecoder) Decode(image []byte) ([]domain.DecodedSymbol, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = image
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.symbols, nil
}

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	users     map[string]*domain.User
	createErr error
	nextID    int64
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.users[user.Mobile]; ok {
		return domain.ErrUserExists
	}
	m.nextID++
	user.ID = m.nextID
	stored := *user
	m.users[user.Mobile] = &stored
	return nil
}

func (m *MockUserRepository) GetByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	user, ok := m.users[mobile]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) UpdateSensitivities(ctx context.Context, mobile string, allergies, conditions []string) (*domain.User, error) {
	user, ok := m.users[mobile]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.Allergies = allergies
	user.Conditions = conditions
	copied := *user
	return &copied, nil
}
