package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSink writes notifications to the log.
type LogSink struct {
	log logrus.FieldLogger
}

var _ Sink = (*LogSink)(nil)

// NewLogSink creates a log sink.
func NewLogSink(log logrus.FieldLogger) *LogSink {
	return &LogSink{log: log.WithField("component", "notify")}
}

// Send implements Sink.
func (l *LogSink) Send(_ context.Context, n Notification) error {
	l.log.WithFields(logrus.Fields{
		"filter":  n.Filter,
		"seed":    n.Raid.Seed,
		"region":  n.Raid.Region.String(),
		"species": n.Encounter.Species,
		"stars":   n.Stars,
		"shiny":   n.Shiny,
		"tera":    n.Raid.TeraType.String(),
		"elapsed": n.Elapsed,
	}).Info("Raid matched filter")

	return nil
}
