package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwatch/shelfwatch/pkg/clock"
)

func TestNewWallClock_InvalidZone(t *testing.T) {
	_, err := clock.NewWallClock("Not/AZone")
	assert.Error(t, err)
}

func TestWallClock_Today_Format(t *testing.T) {
	c, err := clock.NewWallClock("UTC")
	require.NoError(t, err)

	today := c.Today()
	_, perr := time.Parse(clock.DateLayout, today)
	assert.NoError(t, perr)
}

func TestFixed_TimezoneDateBoundary(t *testing.T) {
	// 23:30 UTC on Aug 22 is already Aug 23 in Istanbul (UTC+3)
	ist, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)

	utcInstant := time.Date(2025, 8, 22, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "2025-08-22", clock.Fixed{Instant: utcInstant}.Today())
	assert.Equal(t, "2025-08-23", clock.Fixed{Instant: utcInstant.In(ist)}.Today())
}

func TestFixed_HalfHourOffsetZone(t *testing.T) {
	// Asia/Kathmandu is UTC+5:45; 18:20 UTC is already the next day there
	ktm, err := time.LoadLocation("Asia/Kathmandu")
	require.NoError(t, err)

	utcInstant := time.Date(2025, 12, 31, 18, 20, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-01", clock.Fixed{Instant: utcInstant.In(ktm)}.Today())
}
