package serial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWarrantyConfig(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("enabled requires positive duration and valid unit", func(t *testing.T) {
		assert.True(t, WarrantyConfig{Duration: 12, Unit: WarrantyUnitMonths}.Enabled())
		assert.False(t, WarrantyConfig{Duration: 0, Unit: WarrantyUnitMonths}.Enabled())
		assert.False(t, WarrantyConfig{Duration: 12, Unit: "FORTNIGHTS"}.Enabled())
		assert.False(t, WarrantyConfig{}.Enabled())
	})

	t.Run("end date by days", func(t *testing.T) {
		end := WarrantyConfig{Duration: 90, Unit: WarrantyUnitDays}.EndDate(start)
		assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("end date by months", func(t *testing.T) {
		end := WarrantyConfig{Duration: 6, Unit: WarrantyUnitMonths}.EndDate(start)
		assert.Equal(t, time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("end date by years", func(t *testing.T) {
		end := WarrantyConfig{Duration: 2, Unit: WarrantyUnitYears}.EndDate(start)
		assert.Equal(t, time.Date(2028, 1, 15, 0, 0, 0, 0, time.UTC), end)
	})
}

func TestSerialUnitUnderWarranty(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("window is inclusive on both ends", func(t *testing.T) {
		unit := &SerialUnit{WarrantyStartDate: &start, WarrantyEndDate: &end}
		assert.True(t, unit.UnderWarranty(start))
		assert.True(t, unit.UnderWarranty(end))
		assert.True(t, unit.UnderWarranty(start.AddDate(0, 6, 0)))
		assert.False(t, unit.UnderWarranty(start.AddDate(0, 0, -1)))
		assert.False(t, unit.UnderWarranty(end.AddDate(0, 0, 1)))
	})

	t.Run("no warranty window means never covered", func(t *testing.T) {
		unit := &SerialUnit{}
		assert.False(t, unit.UnderWarranty(start))
	})
}
