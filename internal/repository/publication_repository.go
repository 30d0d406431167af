package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/akylbek/payment-system/risk-sdk/internal/models"
)

type PublicationRepository struct {
	db *sql.DB
}

func NewPublicationRepository(db *sql.DB) *PublicationRepository {
	return &PublicationRepository{db: db}
}

func (r *PublicationRepository) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS risk_publications (
			id VARCHAR(64) PRIMARY KEY,
			device_session_id VARCHAR(255),
			card_token VARCHAR(255),
			status VARCHAR(20) NOT NULL,
			error TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_risk_publications_device_session ON risk_publications(device_session_id)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

func (r *PublicationRepository) Insert(ctx context.Context, p *models.Publication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO risk_publications (id, device_session_id, card_token, status, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, nullString(p.DeviceSessionID), nullString(p.CardToken), p.Status, nullString(p.Error), p.CreatedAt)
	return err
}

func (r *PublicationRepository) GetByID(ctx context.Context, id string) (*models.Publication, error) {
	var p models.Publication
	var deviceSessionID, cardToken, errText sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, device_session_id, card_token, status, error, created_at
		FROM risk_publications WHERE id = $1
	`, id).Scan(&p.ID, &deviceSessionID, &cardToken, &p.Status, &errText, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrPublicationNotFound
	}
	if err != nil {
		return nil, err
	}
	p.DeviceSessionID = deviceSessionID.String
	p.CardToken = cardToken.String
	p.Error = errText.String
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
