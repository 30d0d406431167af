package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/risk-sdk/internal/interfaces"
	"github.com/akylbek/payment-system/risk-sdk/internal/models"
	"github.com/akylbek/payment-system/risk-sdk/internal/telemetry"
)

const publishLockTTL = 30 * time.Second

// PublishCoordinator is the host-side wrapper around a risk handle: it keeps
// one publish per card token in flight and records every outcome.
type PublishCoordinator struct {
	risk interfaces.RiskPublisher
	repo interfaces.PublicationRepository
	lock interfaces.PublishLock
	now  func() time.Time
}

func NewPublishCoordinator(
	risk interfaces.RiskPublisher,
	repo interfaces.PublicationRepository,
	lock interfaces.PublishLock,
) *PublishCoordinator {
	return &PublishCoordinator{
		risk: risk,
		repo: repo,
		lock: lock,
		now:  time.Now,
	}
}

// Publish returns the stored publication. A failed publish is still
// recorded and returned together with an error matching ErrPublishFailure.
func (c *PublishCoordinator) Publish(ctx context.Context, cardToken string) (*models.Publication, error) {
	if cardToken != "" {
		lockKey := fmt.Sprintf("risk_publish_lock:%s", cardToken)
		locked, err := c.lock.Acquire(ctx, lockKey, publishLockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire publish lock: %w", err)
		}
		if !locked {
			return nil, models.ErrPublishInProgress
		}
		defer func() {
			if err := c.lock.Release(ctx, lockKey); err != nil {
				telemetry.Logger.Warn("Failed to release publish lock", zap.Error(err))
			}
		}()
	}

	publication := &models.Publication{
		ID:        uuid.NewString(),
		CardToken: cardToken,
		Status:    models.PublicationPublished,
		CreatedAt: c.now().UTC(),
	}

	deviceSessionID, publishErr := c.risk.PublishData(ctx, cardToken)
	if publishErr != nil {
		publication.Status = models.PublicationFailed
		publication.Error = publishErr.Error()
	}
	publication.DeviceSessionID = deviceSessionID

	if err := c.repo.Insert(ctx, publication); err != nil {
		telemetry.Logger.Error("Failed to record publication",
			zap.String("publication_id", publication.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("record publication: %w", err)
	}

	telemetry.Logger.Info("Publication recorded",
		zap.String("publication_id", publication.ID),
		zap.String("status", string(publication.Status)),
	)
	return publication, publishErr
}
