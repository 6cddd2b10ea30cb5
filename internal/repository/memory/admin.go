package memory

import (
	"context"

	"competition-voting/internal/domain/admin"
)

var _ admin.Repository = (*Store)(nil)

func (s *Store) CreateAdmin(ctx context.Context, a *admin.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.admins == nil {
		s.admins = make(map[string]admin.Admin)
	}
	if _, ok := s.admins[a.Username]; ok {
		return admin.ErrUsernameTaken
	}
	s.admins[a.Username] = *a
	return nil
}

func (s *Store) GetAdminByUsername(ctx context.Context, username string) (*admin.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.admins[username]
	if !ok {
		return nil, admin.ErrAdminNotFound
	}
	return &a, nil
}
