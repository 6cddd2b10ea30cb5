package admin

import (
	"context"
	"time"
)

const RoleAdmin = "admin"

type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Repository interface {
	CreateAdmin(ctx context.Context, a *Admin) error
	GetAdminByUsername(ctx context.Context, username string) (*Admin, error)
}
