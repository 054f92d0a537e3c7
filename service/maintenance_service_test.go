package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceService_FlushExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("both stores purged at the same instant", func(t *testing.T) {
		ledger := new(MockTokenRepository)
		blacklist := new(MockBlacklistRepository)
		svc := NewMaintenanceService(ledger, blacklist)
		svc.now = func() time.Time { return now }

		ledger.On("DeleteExpired", ctx, now).Return(int64(3), nil).Once()
		blacklist.On("DeleteExpired", ctx, now).Return(int64(2), nil).Once()

		res, err := svc.FlushExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, FlushResult{RefreshTokens: 3, BlacklistedTokens: 2}, res)
		ledger.AssertExpectations(t)
		blacklist.AssertExpectations(t)
	})

	t.Run("ledger failure stops the flush", func(t *testing.T) {
		ledger := new(MockTokenRepository)
		blacklist := new(MockBlacklistRepository)
		svc := NewMaintenanceService(ledger, blacklist)

		ledger.On("DeleteExpired", ctx, mock.Anything).Return(int64(0), errors.New("db down")).Once()

		_, err := svc.FlushExpired(ctx)
		assert.Error(t, err)
		blacklist.AssertNotCalled(t, "DeleteExpired", mock.Anything, mock.Anything)
	})
}
