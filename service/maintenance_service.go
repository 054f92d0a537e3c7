package service

import (
	"context"
	"fmt"
	"go-auth-api/logger"
	"go-auth-api/repository"
	"time"

	"github.com/sirupsen/logrus"
)

// FlushResult reports how many dead rows each store dropped.
type FlushResult struct {
	RefreshTokens     int64 `json:"refresh_tokens"`
	BlacklistedTokens int64 `json:"blacklisted_tokens"`
}

// MaintenanceService purges ledger and blacklist rows whose tokens have
// expired. Nothing in the request path depends on it running.
type MaintenanceService struct {
	tokenRepo     repository.ITokenRepository
	blacklistRepo repository.IBlacklistRepository
	now           func() time.Time
}

func NewMaintenanceService(tokenRepo repository.ITokenRepository, blacklistRepo repository.IBlacklistRepository) *MaintenanceService {
	return &MaintenanceService{tokenRepo: tokenRepo, blacklistRepo: blacklistRepo, now: time.Now}
}

func (s *MaintenanceService) FlushExpired(ctx context.Context) (FlushResult, error) {
	var res FlushResult
	now := s.now()

	n, err := s.tokenRepo.DeleteExpired(ctx, now)
	if err != nil {
		return res, fmt.Errorf("could not flush refresh tokens: %w", err)
	}
	res.RefreshTokens = n

	n, err = s.blacklistRepo.DeleteExpired(ctx, now)
	if err != nil {
		return res, fmt.Errorf("could not flush blacklisted tokens: %w", err)
	}
	res.BlacklistedTokens = n

	logger.Log.WithFields(logrus.Fields{
		"refresh_tokens":     res.RefreshTokens,
		"blacklisted_tokens": res.BlacklistedTokens,
	}).Info("Expired tokens flushed")
	return res, nil
}
