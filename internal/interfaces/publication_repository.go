package interfaces

import (
	"context"
	"time"

	"github.com/akylbek/payment-system/risk-sdk/internal/models"
)

// PublicationRepository defines the contract for publication audit storage
type PublicationRepository interface {
	Insert(ctx context.Context, p *models.Publication) error
	GetByID(ctx context.Context, id string) (*models.Publication, error)
}

// PublishLock serializes publishes that share a key
type PublishLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
