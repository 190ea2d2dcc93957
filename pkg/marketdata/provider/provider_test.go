package provider

import (
	"context"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairview-lab/terminal-gateway/internal/synthetic"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

func TestNewProvider(t *testing.T) {
	gen := synthetic.NewGenerator(42)

	tests := []struct {
		name         string
		providerType ProviderType
		apiKey       string
		shouldError  bool
	}{
		{name: "synthetic", providerType: ProviderSynthetic, apiKey: "", shouldError: false},
		{name: "polygon with key", providerType: ProviderPolygon, apiKey: "test-key", shouldError: false},
		{name: "polygon without key", providerType: ProviderPolygon, apiKey: "", shouldError: true},
		{name: "unknown type", providerType: "bloomberg", apiKey: "", shouldError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.providerType, tt.apiKey, gen)
			if tt.shouldError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, p)
			}
		})
	}
}

func TestPolygonProviderRequiresAPIKey(t *testing.T) {
	_, err := NewPolygonProvider("")
	require.Error(t, err)
	assert.True(t, errors.HasKind(err, errors.KindDataProvider))
}

func TestSyntheticProviderListInstruments(t *testing.T) {
	p := NewSyntheticProvider(synthetic.NewGenerator(42))

	instruments, err := p.ListInstruments(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, instruments)
}

func TestSyntheticProviderSnapshotPositive(t *testing.T) {
	p := NewSyntheticProvider(synthetic.NewGenerator(42))

	point, err := p.GetSnapshot(context.Background(), "US10Y")
	require.NoError(t, err)
	assert.Equal(t, "US10Y", point.Ticker)
	assert.Greater(t, point.Price, 0.0)
}

func TestSyntheticProviderPreviousClose(t *testing.T) {
	p := NewSyntheticProvider(synthetic.NewGenerator(42))

	point, err := p.GetPreviousClose(context.Background(), "US10Y")
	require.NoError(t, err)
	require.True(t, point.PreviousClose.IsSome())
	assert.Equal(t, point.Price, point.PreviousClose.Unwrap())
}

func TestSyntheticProviderDailyBars(t *testing.T) {
	p := NewSyntheticProvider(synthetic.NewGenerator(42))

	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)    // Tuesday
	start := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC) // prior Monday

	bars, err := p.GetDailyBars(context.Background(), "SPY", start, end)
	require.NoError(t, err)
	// Mon 24 .. Tue 1 spans 7 weekdays.
	assert.Len(t, bars, 7)

	for _, b := range bars {
		assert.Greater(t, b.Value, 0.0)
	}
}

func TestSyntheticProviderDailyBarsEmptyWindow(t *testing.T) {
	p := NewSyntheticProvider(synthetic.NewGenerator(42))

	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	bars, err := p.GetDailyBars(context.Background(), "SPY", start, end)
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestWeekdaysBetween(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{
			name:  "single weekday",
			start: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			want:  1,
		},
		{
			name:  "full week",
			start: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
			want:  5,
		},
		{
			name:  "weekend only",
			start: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
			want:  0,
		},
		{
			name:  "inverted window",
			start: time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, weekdaysBetween(tt.start, tt.end))
		})
	}
}

func TestAssetTypeFromPolygon(t *testing.T) {
	assert.True(t, assetTypeFromPolygon("").IsNone())
	assert.Equal(t, "INDEX_FUND", string(assetTypeFromPolygon("ETF").Unwrap()))
	assert.Equal(t, "OTHER", string(assetTypeFromPolygon("CS").Unwrap()))
}

func TestSnapshotPriceFallbackOrder(t *testing.T) {
	tests := []struct {
		name string
		snap models.TickerSnapshot
		want float64
	}{
		{
			name: "last trade wins",
			snap: models.TickerSnapshot{
				LastTrade: models.LastTradeSnapshot{Price: 101.5},
				Day:       models.DaySnapshot{Close: 100.0},
				Minute:    models.MinuteSnapshot{Close: 99.5},
			},
			want: 101.5,
		},
		{
			name: "day close when no trade",
			snap: models.TickerSnapshot{
				Day:    models.DaySnapshot{Close: 100.0},
				Minute: models.MinuteSnapshot{Close: 99.5},
			},
			want: 100.0,
		},
		{
			name: "minute bar as last resort",
			snap: models.TickerSnapshot{
				Minute: models.MinuteSnapshot{Close: 99.5},
			},
			want: 99.5,
		},
		{
			name: "empty snapshot",
			snap: models.TickerSnapshot{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, snapshotPrice(tt.snap))
		})
	}
}
