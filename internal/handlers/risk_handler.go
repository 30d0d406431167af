package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/risk-sdk/internal/interfaces"
	"github.com/akylbek/payment-system/risk-sdk/internal/models"
	"github.com/akylbek/payment-system/risk-sdk/internal/telemetry"
)

// Publisher is satisfied by service.PublishCoordinator
type Publisher interface {
	Publish(ctx context.Context, cardToken string) (*models.Publication, error)
}

type RiskHandler struct {
	repo      interfaces.PublicationRepository
	publisher Publisher
}

func NewRiskHandler(repo interfaces.PublicationRepository, publisher Publisher) *RiskHandler {
	return &RiskHandler{
		repo:      repo,
		publisher: publisher,
	}
}

type publishRequest struct {
	CardToken string `json:"card_token"`
}

func (h *RiskHandler) PublishData(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		telemetry.Logger.Error("Error decoding publish request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	publication, err := h.publisher.Publish(c.Request.Context(), req.CardToken)
	switch {
	case errors.Is(err, models.ErrPublishInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "publish already in progress for this card token"})
		return
	case errors.Is(err, models.ErrPublishFailure):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  "Failed to publish risk data",
			"id":     publication.ID,
			"status": publication.Status,
		})
		return
	case err != nil:
		telemetry.Logger.Error("Error publishing risk data", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish risk data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                publication.ID,
		"device_session_id": publication.DeviceSessionID,
		"status":            publication.Status,
	})
}

func (h *RiskHandler) GetPublication(c *gin.Context) {
	id := c.Param("id")

	publication, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, models.ErrPublicationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Publication not found"})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch publication"})
		return
	}

	c.JSON(http.StatusOK, publication)
}
