package applications

import (
	"context"

	"github.com/dmitrijs2005/admissions/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, app *models.Application) (*models.Application, error)
	GetByID(ctx context.Context, id string) (*models.Application, error)
	GetByUserID(ctx context.Context, userID string) (*models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	Delete(ctx context.Context, id string) error
	ListSummaries(ctx context.Context) ([]models.ApplicationSummary, error)
}
