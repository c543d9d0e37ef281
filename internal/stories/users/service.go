package users

import (
	"context"
	"fmt"
)

// Service provides business logic for user operations
type Service struct {
	storage Storage
}

// NewService creates a new user service
func NewService(storage Storage) *Service {
	return &Service{
		storage: storage,
	}
}

// Register returns the user with the given actor id, creating it with a zero
// balance on first contact. The bool reports whether the user was created.
func (s *Service) Register(ctx context.Context, id int64, displayName string) (*User, bool, error) {
	created, err := s.storage.CreateUser(ctx, User{ID: id, DisplayName: displayName})
	if err != nil {
		return nil, false, fmt.Errorf("create user %d: %w", id, err)
	}

	user, err := s.storage.GetUser(ctx, GetCriteria{ID: &id})
	if err != nil {
		return nil, false, fmt.Errorf("get user %d: %w", id, err)
	}
	if user == nil {
		return nil, false, fmt.Errorf("user %d vanished after create", id)
	}

	return user, created, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.storage.GetUser(ctx, GetCriteria{ID: &id})
}

func (s *Service) ListUsers(ctx context.Context, limit int) ([]*User, error) {
	return s.storage.ListUsers(ctx, ListCriteria{Limit: limit})
}
