// internal/pkg/txn/txn_test.go
package txn

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestRunWithRetry_SucceedsFirstAttempt(t *testing.T) {
	db := newTestDB(t)

	calls := 0
	err := RunWithRetry(db, 3, time.Millisecond, func(tx *gorm.DB) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRunWithRetry_RetriesOnSerializationFailure(t *testing.T) {
	db := newTestDB(t)

	calls := 0
	err := RunWithRetry(db, 3, time.Millisecond, func(tx *gorm.DB) error {
		calls++
		if calls < 3 {
			return errors.New("ERROR: could not serialize access due to concurrent update (SQLSTATE 40001)")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRunWithRetry_ExhaustsAttempts(t *testing.T) {
	db := newTestDB(t)

	conflict := errors.New("deadlock detected")
	calls := 0
	err := RunWithRetry(db, 3, time.Millisecond, func(tx *gorm.DB) error {
		calls++
		return conflict
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, conflict)
}

func TestRunWithRetry_DoesNotRetryOrdinaryErrors(t *testing.T) {
	db := newTestDB(t)

	boom := errors.New("quotation not found")
	calls := 0
	err := RunWithRetry(db, 5, time.Millisecond, func(tx *gorm.DB) error {
		calls++
		return boom
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, boom)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("record not found")))
	assert.True(t, IsRetryable(errors.New("SQLSTATE 40001")))
	assert.True(t, IsRetryable(errors.New("ERROR: deadlock detected (SQLSTATE 40P01)")))
	assert.True(t, IsRetryable(errors.New("database is locked")))
}
