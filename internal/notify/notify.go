//nolint:tagliatelle // superior snake-case yo.
package notify

//go:generate mockgen -package mocks -destination mocks/mock_sink.go github.com/ethpandaops/raid-crawler/internal/notify Sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethpandaops/raid-crawler/internal/raid"
)

// Notification announces one raid that satisfied a filter.
type Notification struct {
	Filter    string         `json:"filter"`
	Raid      raid.Raid      `json:"raid"`
	Encounter raid.Encounter `json:"encounter"`
	Rewards   []raid.Reward  `json:"rewards"`
	Stars     int            `json:"stars"`
	Shiny     bool           `json:"shiny"`
	Elapsed   string         `json:"elapsed"`
	Color     string         `json:"color"`
	Sprite    string         `json:"sprite"`
}

// Sink delivers notifications.
type Sink interface {
	Send(ctx context.Context, n Notification) error
}

// Build assembles the notification for one snapshot entry.
func Build(filterName string, entry raid.Entry, elapsed time.Duration) Notification {
	return Notification{
		Filter:    filterName,
		Raid:      entry.Raid,
		Encounter: entry.Encounter,
		Rewards:   entry.Rewards,
		Stars:     entry.Stars,
		Shiny:     entry.Shiny,
		Elapsed:   FormatElapsed(elapsed),
		Color:     entry.Raid.TeraType.HexColor(),
		Sprite:    raid.SpriteName(entry.Encounter.Species, entry.Encounter.Form, entry.Shiny),
	}
}

// FormatElapsed renders d as DD:HH:MM:SS.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	return fmt.Sprintf("%02d:%02d:%02d:%02d", days, hours, minutes, seconds)
}

// Multi sends to every sink and joins the errors.
type Multi []Sink

var _ Sink = Multi(nil)

// Send implements Sink.
func (m Multi) Send(ctx context.Context, n Notification) error {
	var errs []error

	for _, s := range m {
		if err := s.Send(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
