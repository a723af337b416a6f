package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlots(t *testing.T) {
	slots := Slots()

	require.Len(t, slots, SlotCount)
	assert.Equal(t, "08:00", slots[0])
	assert.Equal(t, "22:45", slots[len(slots)-1])
	assert.Equal(t, "08:15", slots[1])
}

func TestMinutesOfDayRoundTrip(t *testing.T) {
	for _, key := range Slots() {
		m, err := MinutesOfDay(key)
		require.NoError(t, err)
		assert.Equal(t, key, KeyFromMinutes(m))
	}
}

func TestMinutesOfDay(t *testing.T) {
	tests := []struct {
		key     string
		want    int
		wantErr bool
	}{
		{key: "08:00", want: 480},
		{key: "22:45", want: 1365},
		{key: "00:00", want: 0},
		// Hours wrap by modulo rather than failing.
		{key: "24:00", want: 0},
		{key: "25:30", want: 90},
		{key: "08:60", wantErr: true},
		{key: "garbage", wantErr: true},
		{key: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m, err := MinutesOfDay(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m)
		})
	}
}

func TestSlotIndex(t *testing.T) {
	assert.Equal(t, 0, SlotIndex("08:00"))
	assert.Equal(t, 1, SlotIndex("08:15"))
	assert.Equal(t, SlotCount-1, SlotIndex("22:45"))

	// Off-grid values render nowhere.
	assert.Equal(t, -1, SlotIndex("07:45"))
	assert.Equal(t, -1, SlotIndex("23:00"))
	assert.Equal(t, -1, SlotIndex("08:07"))
	assert.Equal(t, -1, SlotIndex("not-a-time"))
}

func TestSpanSlots(t *testing.T) {
	assert.Equal(t, 4, SpanSlots("10:00", "11:00", DefaultDuration))
	assert.Equal(t, 1, SpanSlots("10:00", "10:15", DefaultDuration))

	// Partial slots round up.
	assert.Equal(t, 2, SpanSlots("10:00", "10:20", DefaultDuration))
	assert.Equal(t, 1, SpanSlots("10:00", "10:01", DefaultDuration))

	// Missing end falls back to the default duration.
	assert.Equal(t, 4, SpanSlots("10:00", "", DefaultDuration))
	assert.Equal(t, 2, SpanSlots("10:00", "", 30*time.Minute))

	// Degenerate intervals still occupy one row.
	assert.Equal(t, 1, SpanSlots("10:00", "10:00", DefaultDuration))
	assert.Equal(t, 1, SpanSlots("10:00", "09:00", DefaultDuration))
}
