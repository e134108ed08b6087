package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/foodguard/backend/internal/domain"
)

// UserService registers users and edits their declared sensitivities
type UserService struct {
	repo        domain.UserRepository
	suggestions domain.Suggestions
}

// NewUserService creates a new user service
func NewUserService(repo domain.UserRepository, suggestions domain.Suggestions) *UserService {
	return &UserService{
		repo:        repo,
		suggestions: suggestions,
	}
}

// Register validates the request and stores a new user.
// The custom allergy and custom health condition are appended to the selected lists.
func (s *UserService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	user := &domain.User{
		Username: strings.TrimSpace(req.Username),
		Name:     strings.TrimSpace(req.Name),
		Mobile:   strings.TrimSpace(req.Mobile),
		Age:      req.Age,
	}
	if user.Username == "" || user.Name == "" || user.Mobile == "" || user.Age <= 0 {
		return nil, fmt.Errorf("%w: username, name, mobile and age are required", domain.ErrInvalidInput)
	}

	declared := domain.SensitivityUpdate{
		Allergies:        req.Allergies,
		CustomAllergy:    req.CustomAllergy,
		HealthConditions: req.HealthConditions,
		CustomHealth:     req.CustomHealth,
	}
	user.Allergies = cleanDeclarations(declared.MergedAllergies())
	user.Conditions = cleanDeclarations(declared.MergedConditions())

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("[USER] registered %s (%d allergies, %d conditions)", user.Username, len(user.Allergies), len(user.Conditions))
	return user, nil
}

// Get loads the user identified by mobile
func (s *UserService) Get(ctx context.Context, mobile string) (*domain.User, error) {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return nil, domain.ErrUserNotFound
	}
	return s.repo.GetByMobile(ctx, mobile)
}

// UpdateSensitivities replaces the allergies and health conditions of the user identified by mobile
func (s *UserService) UpdateSensitivities(ctx context.Context, mobile string, update domain.SensitivityUpdate) (*domain.User, error) {
	return s.repo.UpdateSensitivities(ctx, strings.TrimSpace(mobile),
		cleanDeclarations(update.MergedAllergies()),
		cleanDeclarations(update.MergedConditions()),
	)
}

// Suggestions returns the allergies and health conditions offered during registration
func (s *UserService) Suggestions() domain.Suggestions {
	return domain.Suggestions{
		Allergies:        append([]string{}, s.suggestions.Allergies...),
		HealthConditions: append([]string{}, s.suggestions.HealthConditions...),
	}
}

// cleanDeclarations keeps entries as the user typed them, minus surrounding space and blanks
func cleanDeclarations(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
