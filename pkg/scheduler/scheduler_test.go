package scheduler_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwatch/shelfwatch/pkg/model"
	"github.com/shelfwatch/shelfwatch/pkg/scheduler"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func noopAction(context.Context) (model.CheckResult, error) {
	return model.ResultNone, nil
}

func TestNew_InvalidSpec(t *testing.T) {
	tests := []struct {
		name string
		spec scheduler.Spec
	}{
		{"hour too large", scheduler.Spec{Hour: 24, Timezone: "UTC"}},
		{"negative minute", scheduler.Spec{Minute: -1, Timezone: "UTC"}},
		{"second too large", scheduler.Spec{Second: 60, Timezone: "UTC"}},
		{"unknown timezone", scheduler.Spec{Hour: 8, Timezone: "Not/AZone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scheduler.New(tt.spec, noopAction, testLogger())
			assert.Error(t, err)
		})
	}
}

func TestScheduler_NextRunMatchesSpec(t *testing.T) {
	spec := scheduler.Spec{Hour: 8, Minute: 0, Second: 0, Timezone: "Europe/Istanbul"}
	s, err := scheduler.New(spec, noopAction, testLogger())
	require.NoError(t, err)

	loc, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)

	next := s.NextRun().In(loc)
	assert.Equal(t, 8, next.Hour())
	assert.Equal(t, 0, next.Minute())
	assert.Equal(t, 0, next.Second())
	assert.True(t, next.After(time.Now()))
	assert.True(t, next.Before(time.Now().Add(25*time.Hour)), "daily schedule fires within a day")
}

func TestScheduler_NextRunInConfiguredZone(t *testing.T) {
	// The firing time must track the configured zone, not the host's
	// local time, whatever zone the process runs in.
	zones := []string{"America/Sao_Paulo", "Asia/Kathmandu", "UTC"}

	for _, tz := range zones {
		t.Run(tz, func(t *testing.T) {
			spec := scheduler.Spec{Hour: 8, Minute: 30, Timezone: tz}
			s, err := scheduler.New(spec, noopAction, testLogger())
			require.NoError(t, err)

			loc, err := time.LoadLocation(tz)
			require.NoError(t, err)

			next := s.NextRun().In(loc)
			assert.Equal(t, 8, next.Hour())
			assert.Equal(t, 30, next.Minute())
		})
	}
}

func TestScheduler_FiresAction(t *testing.T) {
	fired := make(chan struct{}, 1)
	action := func(context.Context) (model.CheckResult, error) {
		select {
		case fired <- struct{}{}:
		default:
		}
		return model.ResultNone, nil
	}

	// Schedule for two seconds from now in UTC
	at := time.Now().UTC().Add(2 * time.Second)
	spec := scheduler.Spec{Hour: at.Hour(), Minute: at.Minute(), Second: at.Second(), Timezone: "UTC"}

	s, err := scheduler.New(spec, action, testLogger())
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not fire at the configured time")
	}
}

func TestScheduler_StopWaitsForInFlight(t *testing.T) {
	spec := scheduler.Spec{Hour: 8, Timezone: "UTC"}
	s, err := scheduler.New(spec, noopAction, testLogger())
	require.NoError(t, err)

	s.Start()
	s.Stop()
}
