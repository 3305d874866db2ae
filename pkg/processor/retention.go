package processor

import (
	"time"

	"changelog-join/pkg/common_errors"

	"golang.org/x/xerrors"
)

// RetentionConfig bounds how long buffered rows survive without being
// touched. Cleanup is active iff MinRetention > 0.
type RetentionConfig struct {
	MinRetention time.Duration
	MaxRetention time.Duration
}

func NewRetentionConfig(minRetention, maxRetention time.Duration) (RetentionConfig, error) {
	rc := RetentionConfig{MinRetention: minRetention, MaxRetention: maxRetention}
	if rc.CleanupEnabled() && maxRetention < minRetention {
		return RetentionConfig{}, xerrors.Errorf("min %v, max %v: %w",
			minRetention, maxRetention, common_errors.ErrInvalidRetention)
	}
	return rc, nil
}

func (rc RetentionConfig) CleanupEnabled() bool {
	return rc.MinRetention > 0
}

func (rc RetentionConfig) NextExpiry(now int64, oldExpireAt int64) int64 {
	return NextExpiry(now, oldExpireAt, rc.MinRetention.Milliseconds(),
		rc.MaxRetention.Milliseconds(), rc.CleanupEnabled())
}

// NextExpiry only hands out a fresh deadline once an entry is within
// minRetentionMs of its old one; otherwise the old deadline stands.
func NextExpiry(now, oldExpireAt, minRetentionMs, maxRetentionMs int64, cleanupEnabled bool) int64 {
	if !cleanupEnabled {
		return oldExpireAt
	}
	if now+minRetentionMs > oldExpireAt {
		return now + maxRetentionMs
	}
	return oldExpireAt
}
