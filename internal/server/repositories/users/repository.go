package users

import (
	"context"

	"github.com/dmitrijs2005/admissions/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id string, hash string) error
	ListNonAdminWithApplications(ctx context.Context) ([]models.UserSummary, error)
}
