package time_grid

import (
	"errors"
	"fmt"

	"github.com/klokku/agenda/pkg/timezone"
)

var ErrOutOfRangeConfig = errors.New("grid hours out of range")

const (
	// DefaultHeaderPixels is the height of the date header drawn above each column.
	DefaultHeaderPixels = 50
	// DefaultPixelsPerHour matches one hour row of the rendered grid.
	DefaultPixelsPerHour = 60
	// MinHeightPercent is the sliver drawn for events with no visible duration.
	MinHeightPercent = 1.0
)

// GridConfig describes one render of the grid. Days are the visible columns
// in the order given by the caller and are expected to be distinct; when a
// date repeats, events go to its first column.
type GridConfig struct {
	StartHour     int
	EndHour       int
	Days          []timezone.Date
	HeaderPixels  float64
	PixelsPerHour float64
}

func (c GridConfig) Validate() error {
	if c.StartHour < 0 || c.StartHour > 24 || c.EndHour < 0 || c.EndHour > 24 {
		return fmt.Errorf("%w: hours must be within [0,24], got %d-%d", ErrOutOfRangeConfig, c.StartHour, c.EndHour)
	}
	if c.StartHour >= c.EndHour {
		return fmt.Errorf("%w: start hour %d must be before end hour %d", ErrOutOfRangeConfig, c.StartHour, c.EndHour)
	}
	if c.HeaderPixels < 0 || c.PixelsPerHour < 0 {
		return fmt.Errorf("%w: negative pixel sizes", ErrOutOfRangeConfig)
	}
	return nil
}

// Span is the number of visible hours.
func (c GridConfig) Span() int {
	return c.EndHour - c.StartHour
}

func (c GridConfig) headerPixels() float64 {
	if c.HeaderPixels == 0 {
		return DefaultHeaderPixels
	}
	return c.HeaderPixels
}

func (c GridConfig) pixelsPerHour() float64 {
	if c.PixelsPerHour == 0 {
		return DefaultPixelsPerHour
	}
	return c.PixelsPerHour
}

// ColumnOf returns the index of the column showing d, or -1.
func (c GridConfig) ColumnOf(d timezone.Date) int {
	for i, day := range c.Days {
		if day.Equal(d) {
			return i
		}
	}
	return -1
}
