package repository

import (
	"context"

	"github.com/mkraiem/go-smartcity-alerts/internal/models"
)

type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id int64) (*models.Incident, error)
	List(ctx context.Context) ([]models.Incident, error)
	Update(ctx context.Context, incident *models.Incident) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ListByStatus(ctx context.Context, status models.IncidentStatus) ([]models.Incident, error)
	ListHighPriority(ctx context.Context) ([]models.Incident, error)
}
