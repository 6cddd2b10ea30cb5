package postgres

import (
	"context"

	"competition-voting/internal/domain/admin"
)

func (s *Store) CreateAdmin(ctx context.Context, a *admin.Admin) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO admins (id, username, password_hash, role, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, a.ID, a.Username, a.PasswordHash, a.Role, a.CreatedAt)
	if isUniqueViolation(err) {
		return admin.ErrUsernameTaken
	}
	return err
}

func (s *Store) GetAdminByUsername(ctx context.Context, username string) (*admin.Admin, error) {
	a := &admin.Admin{}
	err := s.db.QueryRowContext(ctx, `
        SELECT id, username, password_hash, role, created_at
        FROM admins WHERE username = $1
    `, username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role, &a.CreatedAt)
	if isNoRows(err) {
		return nil, admin.ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
