package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		today time.Time
		day   int
		want  time.Time
	}{
		{today: date(2026, 3, 2), day: 5, want: date(2026, 3, 5)},
		{today: date(2026, 3, 5), day: 5, want: date(2026, 3, 5)},
		{today: date(2026, 3, 6), day: 5, want: date(2026, 4, 5)},
		{today: date(2026, 12, 20), day: 1, want: date(2027, 1, 1)},
		{today: date(2026, 1, 31), day: 28, want: date(2026, 2, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.today.Format(time.DateOnly), func(t *testing.T) {
			assert.Equal(t, tt.want, nextOccurrence(tt.today, tt.day))
		})
	}
}

func TestPeriodKey(t *testing.T) {
	id := uuid.MustParse("7b0c7a8e-35a4-4bd1-9d2a-0c6c3e3b8f10")

	assert.Equal(t, "7b0c7a8e-35a4-4bd1-9d2a-0c6c3e3b8f10:2026-09", periodKey(id, date(2026, 9, 30)))
	// the key follows the UTC calendar month
	local := time.Date(2026, 10, 1, 1, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, "7b0c7a8e-35a4-4bd1-9d2a-0c6c3e3b8f10:2026-09", periodKey(id, local))
}

func TestUtcDate(t *testing.T) {
	in := time.Date(2026, 5, 1, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))
	assert.Equal(t, date(2026, 5, 2), utcDate(in))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
