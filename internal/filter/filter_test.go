package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winrate/pkg/model"
)

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOTC(t *testing.T) {
	trades := []model.Trade{
		{Asset: "EUR/USD"},
		{Asset: "GBP/JPY (OTC)"},
		{Asset: "AUD/USD"},
	}

	assert.Len(t, OTC(trades, OnlyOTC), 1)
	assert.Len(t, OTC(trades, NoOTC), 2)
	assert.Len(t, OTC(trades, AllAssets), 3)
}

func TestParseOTCMode(t *testing.T) {
	for in, want := range map[string]OTCMode{"1": OnlyOTC, " 2 ": NoOTC, "3": AllAssets} {
		got, err := ParseOTCMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseOTCMode("4")
	assert.Error(t, err)
}

func TestExpiration(t *testing.T) {
	trades := []model.Trade{
		{Asset: "A", ExpirationSec: 60},
		{Asset: "B", ExpirationSec: 300},
		{Asset: "C", ExpirationSec: 60},
	}

	assert.Len(t, Expiration(trades, 0), 3)
	assert.Len(t, Expiration(trades, 60), 2)
	assert.Empty(t, Expiration(trades, 30))
}

func TestPeriod(t *testing.T) {
	trades := []model.Trade{
		{Asset: "A", OpenTime: at("2024-01-01 10:00")},
		{Asset: "B", OpenTime: at("2024-01-02 10:00")},
		{Asset: "C", OpenTime: at("2024-01-03 10:00")},
	}
	from := at("2024-01-02 00:00")
	to := at("2024-01-02 23:59")

	assert.Len(t, Period(trades, nil, nil), 3)
	assert.Len(t, Period(trades, &from, nil), 2)
	assert.Len(t, Period(trades, nil, &to), 2)

	got := Period(trades, &from, &to)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].Asset)

	exact := at("2024-01-02 10:00")
	assert.Len(t, Period(trades, &exact, &exact), 1, "bounds are inclusive")
}

func TestParsePeriodBound(t *testing.T) {
	ref := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		isStart bool
		want    time.Time
	}{
		{"day first date start", "05.03.2024", true, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"day first date end", "05.03.2024", false, time.Date(2024, 3, 5, 23, 59, 59, 0, time.UTC)},
		{"single digit day", "5.3.2024", true, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"iso date", "2024-03-05", true, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"date with time end keeps time", "05.03.2024 14:30", false, time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)},
		{"time only uses ref date", "09:15", true, time.Date(2024, 3, 15, 9, 15, 0, 0, time.UTC)},
		{"no year uses ref year", "01.02", true, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePeriodBound(tt.input, ref, tt.isStart)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	_, err := ParsePeriodBound("next tuesday", ref, true)
	assert.Error(t, err)
	_, err = ParsePeriodBound("  ", ref, true)
	assert.Error(t, err)
}
