package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingAmount(t *testing.T) {
	date := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("bad date %s: %v", s, err)
		}
		return d
	}

	t.Run("two month stay charges two blocks", func(t *testing.T) {
		amount := BookingAmount(1000, date("2024-01-01"), date("2024-03-01"))
		assert.Equal(t, float64(2000), amount)
	})

	t.Run("exactly thirty days charges one block", func(t *testing.T) {
		amount := BookingAmount(1000, date("2024-01-01"), date("2024-01-31"))
		assert.Equal(t, float64(1000), amount)
	})

	t.Run("partial block charges a full block", func(t *testing.T) {
		amount := BookingAmount(1000, date("2024-01-01"), date("2024-02-05"))
		assert.Equal(t, float64(2000), amount)
	})

	t.Run("single day charges one block", func(t *testing.T) {
		amount := BookingAmount(500, date("2024-01-01"), date("2024-01-02"))
		assert.Equal(t, float64(500), amount)
	})

	t.Run("zero or negative period charges nothing", func(t *testing.T) {
		assert.Equal(t, float64(0), BookingAmount(1000, date("2024-01-01"), date("2024-01-01")))
		assert.Equal(t, float64(0), BookingAmount(1000, date("2024-02-01"), date("2024-01-01")))
	})
}
