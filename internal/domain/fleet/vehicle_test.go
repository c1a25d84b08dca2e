package fleet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewOutwardUsage(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	u := NewOutwardUsage(3, 41, date, "PPF Install", " Ravi ")

	assert.Equal(t, uint64(3), u.VehicleID)
	assert.Equal(t, "Outward - PPF Install", u.Purpose)
	assert.Equal(t, ReferenceTypeOutward, u.ReferenceType)
	assert.Equal(t, uint64(41), u.ReferenceID)
	assert.Equal(t, "Ravi", u.DriverName)
	assert.Equal(t, "Auto-logged from Outward #41", u.Remarks)
	assert.Equal(t, date, u.UsageDate)

	assert.Equal(t, "Outward", NewOutwardUsage(3, 42, date, "", "").Purpose)
}
