// internal/pkg/txn/txn.go
package txn

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// RunWithRetry executes fn inside a database transaction, retrying the whole
// transaction up to maxAttempts times when the commit fails on a concurrency
// conflict. Non-retryable errors are returned as-is after the rollback.
func RunWithRetry(db *gorm.DB, maxAttempts int, backoff time.Duration, fn func(tx *gorm.DB) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = db.Transaction(fn)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt < maxAttempts {
			time.Sleep(backoff * time.Duration(attempt))
		}
	}
	return err
}

// IsRetryable reports whether an error is a transient concurrency conflict
// worth retrying: serialization failures (40001), deadlocks (40P01) and
// SQLite busy errors in tests.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "40001") ||
		strings.Contains(msg, "40P01") ||
		strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize") ||
		strings.Contains(msg, "database is locked")
}

// IsNotFound reports whether err is gorm's record-not-found error
func IsNotFound(err error) bool {
	return err == gorm.ErrRecordNotFound
}
