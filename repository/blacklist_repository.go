package repository

import (
	"context"
	"database/sql"
	"go-auth-api/logger"
	"go-auth-api/model"
	"time"

	"github.com/sirupsen/logrus"
)

// IBlacklistRepository is the set of revoked token ids. Add must be atomic
// and idempotent: a second Add of the same jti reports false without error.
type IBlacklistRepository interface {
	Add(ctx context.Context, entry *model.BlacklistedToken) (bool, error)
	Contains(ctx context.Context, jti string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// BlacklistRepository stores revoked jtis in the blacklisted_tokens table.
type BlacklistRepository struct {
	DB *sql.DB
}

func NewBlacklistRepository(db *sql.DB) *BlacklistRepository {
	return &BlacklistRepository{DB: db}
}

func (r *BlacklistRepository) Add(ctx context.Context, entry *model.BlacklistedToken) (bool, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"jti":     entry.JTI,
		"user_id": entry.UserID,
	})
	log.Info("Executing query to blacklist a token")

	query := `INSERT INTO blacklisted_tokens (jti, user_id, expires_at) VALUES ($1, $2, $3) ON CONFLICT (jti) DO NOTHING`
	res, err := r.DB.ExecContext(ctx, query, entry.JTI, entry.UserID, entry.ExpiresAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute blacklist token query")
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *BlacklistRepository) Contains(ctx context.Context, jti string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM blacklisted_tokens WHERE jti = $1)`
	if err := r.DB.QueryRowContext(ctx, query, jti).Scan(&exists); err != nil {
		logger.Log.WithError(err).WithField("jti", jti).Error("Failed to execute blacklist lookup query")
		return false, err
	}
	return exists, nil
}

// DeleteExpired drops entries whose token would have expired anyway.
func (r *BlacklistRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM blacklisted_tokens WHERE expires_at <= $1`
	res, err := r.DB.ExecContext(ctx, query, now)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute delete expired blacklist entries query")
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	logger.Log.WithField("deleted", n).Info("Expired blacklist entries purged")
	return n, nil
}
