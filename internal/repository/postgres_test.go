package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/crunchy-waffle/internal/model"
)

// newPostgresRepository подключается к БД из DATABASE_URI. Без неё тест пропускается.
func newPostgresRepository(t *testing.T) *PostgresRepository {
	t.Helper()

	dsn := os.Getenv("DATABASE_URI")
	if dsn == "" {
		t.Skip("DATABASE_URI is not set")
	}

	repo, err := NewPostgresRepository(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// createTestUser создаёт пользователя с уникальными логином и телефоном и удаляет его и его заказы после теста.
func createTestUser(t *testing.T, repo *PostgresRepository) *model.User {
	t.Helper()
	ctx := context.Background()

	suffix := uuid.NewString()[:8]
	u, err := repo.CreateUser(ctx, "user-"+suffix, "phone-"+suffix, []byte("h"), model.RoleUser)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = repo.pool.Exec(context.Background(), `DELETE FROM orders WHERE username = $1`, u.Username)
		_, _ = repo.pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, u.ID)
	})
	return u
}

func TestPostgresApproveOrder_ConcurrentAppliesOnce(t *testing.T) {
	repo := newPostgresRepository(t)
	ctx := context.Background()
	u := createTestUser(t, repo)

	_, err := repo.AdjustBalance(ctx, u.Phone, 500)
	require.NoError(t, err)

	order := &model.Order{Username: u.Username, Total: 200, WalletDeducted: 100, PointsEarned: 20, TransactionID: "N/A"}
	require.NoError(t, repo.CreateOrder(ctx, order))

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		processed int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ApproveOrder(ctx, order.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrAlreadyProcessed):
				processed++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, processed)

	got, err := repo.GetUserByIdentifier(ctx, u.Username)
	require.NoError(t, err)
	assert.Equal(t, 400.0, got.WalletBalance)
	assert.Equal(t, int64(20), got.LoyaltyPoints)
}

func TestPostgresApproveOrder_NotFoundAndAlreadyProcessed(t *testing.T) {
	repo := newPostgresRepository(t)
	ctx := context.Background()
	u := createTestUser(t, repo)

	_, err := repo.ApproveOrder(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	order := &model.Order{Username: u.Username, Total: 10, PointsEarned: 1, TransactionID: "N/A"}
	require.NoError(t, repo.CreateOrder(ctx, order))

	approved, err := repo.ApproveOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusApproved, approved.Status)

	_, err = repo.ApproveOrder(ctx, order.ID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestPostgresApproveOrder_MissingOwnerRollsBack(t *testing.T) {
	repo := newPostgresRepository(t)
	ctx := context.Background()

	ghost := "ghost-" + uuid.NewString()[:8]
	t.Cleanup(func() {
		_, _ = repo.pool.Exec(context.Background(), `DELETE FROM orders WHERE username = $1`, ghost)
	})

	order := &model.Order{Username: ghost, Total: 10, PointsEarned: 1, TransactionID: "N/A"}
	require.NoError(t, repo.CreateOrder(ctx, order))

	_, err := repo.ApproveOrder(ctx, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	orders, err := repo.GetOrdersByUser(ctx, ghost)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, model.OrderStatusPending, orders[0].Status)
}

func TestPostgresAdjustBalance_OutOfRange(t *testing.T) {
	repo := newPostgresRepository(t)
	ctx := context.Background()
	u := createTestUser(t, repo)

	_, err := repo.AdjustBalance(ctx, u.Phone, 9e16)
	require.NoError(t, err)

	_, err = repo.AdjustBalance(ctx, u.Phone, 9e16)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "serialization failure", err: &pgconn.PgError{Code: pgerrcode.SerializationFailure}, want: true},
		{name: "deadlock", err: fmt.Errorf("approve: %w", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}), want: true},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), want: true},
		{name: "unique violation", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, want: false},
		{name: "already processed", err: fmt.Errorf("%w: order 1", ErrAlreadyProcessed), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}

func TestIsOutOfRange(t *testing.T) {
	assert.True(t, isOutOfRange(&pgconn.PgError{Code: pgerrcode.NumericValueOutOfRange}))
	assert.True(t, isOutOfRange(fmt.Errorf("update: %w", &pgconn.PgError{Code: pgerrcode.CheckViolation})))
	assert.False(t, isOutOfRange(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.False(t, isOutOfRange(errors.New("boom")))
}

func withFastRetries(t *testing.T) {
	t.Helper()
	saved := retryDelays
	retryDelays = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	t.Cleanup(func() { retryDelays = saved })
}

func TestWithRetry(t *testing.T) {
	withFastRetries(t)
	repo := &PostgresRepository{}
	serialization := &pgconn.PgError{Code: pgerrcode.SerializationFailure}

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := repo.withRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return serialization
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after last delay", func(t *testing.T) {
		calls := 0
		err := repo.withRetry(context.Background(), func() error {
			calls++
			return serialization
		})
		assert.ErrorIs(t, err, serialization)
		assert.Equal(t, len(retryDelays)+1, calls)
	})

	t.Run("does not retry domain errors", func(t *testing.T) {
		calls := 0
		err := repo.withRetry(context.Background(), func() error {
			calls++
			return ErrAlreadyProcessed
		})
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		calls := 0
		err := repo.withRetry(ctx, func() error {
			calls++
			return serialization
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}
