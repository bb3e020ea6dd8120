package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestPeriods(t *testing.T) {
	custom, err := NewCustom(date(2024, 3, 10), date(2024, 4, 9))
	require.NoError(t, err)

	tests := []struct {
		period    Period
		name      string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{name: "literal month", period: LiteralMonth{Year: 2024, Month: time.February}, wantStart: date(2024, 2, 1), wantEnd: date(2024, 2, 29)},
		{name: "literal december", period: LiteralMonth{Year: 2023, Month: time.December}, wantStart: date(2023, 12, 1), wantEnd: date(2023, 12, 31)},
		{name: "paydate month", period: PaydateMonth{Year: 2024, Month: time.January}, wantStart: date(2024, 1, 5), wantEnd: date(2024, 2, 1)},
		{name: "paydate december", period: PaydateMonth{Year: 2024, Month: time.December}, wantStart: date(2024, 12, 6), wantEnd: date(2025, 1, 2)},
		{name: "yearly", period: Yearly{Year: 2024}, wantStart: date(2024, 1, 5), wantEnd: date(2025, 1, 2)},
		{name: "custom", period: custom, wantStart: date(2024, 3, 10), wantEnd: date(2024, 4, 9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStart, tt.period.Start())
			end := tt.period.End()
			assert.Equal(t, tt.wantEnd.Format("2006-01-02"), end.Format("2006-01-02"))
			assert.Equal(t, 23, end.Hour())

			assert.True(t, Contains(tt.period, tt.wantStart))
			assert.True(t, Contains(tt.period, tt.wantEnd.Add(12*time.Hour)))
			assert.False(t, Contains(tt.period, tt.wantStart.Add(-time.Nanosecond)))
			assert.False(t, Contains(tt.period, tt.wantEnd.AddDate(0, 0, 1)))

			assert.False(t, Elapsed(tt.period, tt.wantEnd.Add(20*time.Hour)))
			assert.True(t, Elapsed(tt.period, tt.wantEnd.AddDate(0, 0, 1)))
		})
	}
}

func TestNewCustomRejectsInvertedRange(t *testing.T) {
	_, err := NewCustom(date(2024, 5, 1), date(2024, 4, 1))
	assert.Error(t, err)
}
