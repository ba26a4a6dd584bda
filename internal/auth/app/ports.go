package app

import (
	"context"

	"github.com/mrobles-dev/tienda/internal/auth/domain"
)

type UserRepo interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
}
