package identifier_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gracewave/gracewave/modules/church/domain/identifier"
	"github.com/gracewave/gracewave/pkg/metrics"
)

func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.March, 15, 0, 0, 0, 0, time.UTC)
	}
}

func TestGenerator_Generate(t *testing.T) {
	t.Run("produces a well-formed identifier", func(t *testing.T) {
		gen := identifier.NewGenerator(
			"GW",
			100,
			func(ctx context.Context, id string) (bool, error) { return false, nil },
			identifier.WithClock(fixedClock(2026)),
		)

		id, err := gen.Generate(context.Background())
		require.NoError(t, err)
		assert.True(t, identifier.Valid(id), "generated id %q does not match scheme", id)
		assert.Regexp(t, `^GW-2026-[A-Z0-9]{9}$`, id)
	})

	t.Run("retries past taken candidates", func(t *testing.T) {
		attemptsBefore := testutil.ToFloat64(metrics.IdentifierAttempts)
		collisionsBefore := testutil.ToFloat64(metrics.IdentifierCollisions)

		var probes int
		gen := identifier.NewGenerator(
			"GW",
			100,
			func(ctx context.Context, id string) (bool, error) {
				probes++
				return probes <= 3, nil
			},
		)

		id, err := gen.Generate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 4, probes)
		assert.True(t, identifier.Valid(id))

		assert.Equal(t, float64(4), testutil.ToFloat64(metrics.IdentifierAttempts)-attemptsBefore)
		assert.Equal(t, float64(3), testutil.ToFloat64(metrics.IdentifierCollisions)-collisionsBefore)
	})

	t.Run("exhausts the attempt budget", func(t *testing.T) {
		var probes int
		gen := identifier.NewGenerator(
			"GW",
			5,
			func(ctx context.Context, id string) (bool, error) {
				probes++
				return true, nil
			},
		)

		_, err := gen.Generate(context.Background())
		require.ErrorIs(t, err, identifier.ErrGenerationExhausted)
		assert.Equal(t, 5, probes)
	})

	t.Run("successive identifiers differ", func(t *testing.T) {
		gen := identifier.NewGenerator(
			"GW",
			100,
			func(ctx context.Context, id string) (bool, error) { return false, nil },
		)

		seen := map[string]struct{}{}
		for i := 0; i < 50; i++ {
			id, err := gen.Generate(context.Background())
			require.NoError(t, err)
			seen[id] = struct{}{}
		}
		assert.Len(t, seen, 50)
	})
}

func TestValid(t *testing.T) {
	cases := []struct {
		name string
		id   string
		want bool
	}{
		{"well-formed", "GW-2026-ABC123XYZ", true},
		{"long prefix", "CHURCH-1999-000000000", true},
		{"lowercase suffix", "GW-2026-abc123xyz", false},
		{"short suffix", "GW-2026-ABC123", false},
		{"missing year", "GW-ABC123XYZ", false},
		{"two-digit year", "GW-26-ABC123XYZ", false},
		{"digit prefix", "G1-2026-ABC123XYZ", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, identifier.Valid(tc.id))
		})
	}
}
