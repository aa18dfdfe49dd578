package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBoardFilterNormalize(t *testing.T) {
	t.Run("Empty filter falls back to defaults", func(t *testing.T) {
		filter := BoardFilter{}
		filter.Normalize()

		assert.Equal(t, BoardDepartures, filter.Board)
		assert.Equal(t, StatusFilterActive, filter.Status)
	})

	t.Run("Case and whitespace are forgiven", func(t *testing.T) {
		filter := BoardFilter{Board: " Arrivals ", Status: " INACTIVE ", Search: "  vie "}
		filter.Normalize()

		assert.Equal(t, BoardArrivals, filter.Board)
		assert.Equal(t, StatusFilterInactive, filter.Status)
		assert.Equal(t, "vie", filter.Search)
	})

	t.Run("Unknown values fall back to defaults", func(t *testing.T) {
		filter := BoardFilter{Board: "cargo", Status: "maybe"}
		filter.Normalize()

		assert.Equal(t, BoardDepartures, filter.Board)
		assert.Equal(t, StatusFilterActive, filter.Status)
	})
}

func TestBoardFilterIsZero(t *testing.T) {
	assert.True(t, (&BoardFilter{}).IsZero())

	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	gateID := int64(3)

	tests := []struct {
		name   string
		filter BoardFilter
	}{
		{"board set", BoardFilter{Board: BoardArrivals}},
		{"status set", BoardFilter{Status: StatusFilterActive}},
		{"search set", BoardFilter{Search: "PR"}},
		{"gate set", BoardFilter{GateID: &gateID}},
		{"delayed only", BoardFilter{DelayedOnly: true}},
		{"date set", BoardFilter{Date: &date}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, tt.filter.IsZero())
		})
	}
}
