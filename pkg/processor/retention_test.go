package processor

import (
	"testing"
	"time"

	"changelog-join/pkg/commtypes"
	"changelog-join/pkg/common_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestNextExpiryHysteresis(t *testing.T) {
	rc, err := NewRetentionConfig(time.Second, 2*time.Second)
	require.NoError(t, err)
	require.True(t, rc.CleanupEnabled())

	exp := rc.NextExpiry(0, commtypes.NoExpiration)
	assert.Equal(t, int64(2000), exp)
	exp = rc.NextExpiry(1500, exp)
	assert.Equal(t, int64(3500), exp)
	exp = rc.NextExpiry(1600, exp)
	assert.Equal(t, int64(3500), exp)
	// exactly min retention away keeps the old deadline
	assert.Equal(t, int64(3500), rc.NextExpiry(2500, exp))
	assert.Equal(t, int64(4501), rc.NextExpiry(2501, exp))
}

func TestNextExpiryDisabled(t *testing.T) {
	rc, err := NewRetentionConfig(0, 0)
	require.NoError(t, err)
	assert.False(t, rc.CleanupEnabled())
	assert.Equal(t, commtypes.NoExpiration, rc.NextExpiry(123456, commtypes.NoExpiration))
	assert.Equal(t, int64(42), NextExpiry(1000, 42, 10, 20, false))
}

func TestNextExpiryIsMonotonic(t *testing.T) {
	rc, err := NewRetentionConfig(300*time.Millisecond, 700*time.Millisecond)
	require.NoError(t, err)
	exp := commtypes.NoExpiration
	for now := int64(0); now < 5000; now += 37 {
		next := rc.NextExpiry(now, exp)
		assert.GreaterOrEqual(t, next, exp)
		assert.GreaterOrEqual(t, next, now+300)
		assert.LessOrEqual(t, next, now+700)
		exp = next
	}
}

func TestNewRetentionConfigRejectsInvertedBounds(t *testing.T) {
	_, err := NewRetentionConfig(2*time.Second, time.Second)
	assert.True(t, xerrors.Is(err, common_errors.ErrInvalidRetention))
	// bounds are not checked while cleanup is off
	_, err = NewRetentionConfig(0, -time.Second)
	assert.NoError(t, err)
}
