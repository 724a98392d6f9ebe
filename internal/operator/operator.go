//nolint:tagliatelle // superior snake-case yo.
package operator

//go:generate mockgen -package mocks -destination mocks/mock_reporter.go github.com/ethpandaops/raid-crawler/internal/operator Reporter

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Level is the severity of an operator message.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Kind groups operator messages for consumers of the stream.
type Kind string

const (
	KindStatus     Kind = "status"
	KindDiagnostic Kind = "diagnostic"
	KindCorrupted  Kind = "corrupted_read"
	KindError      Kind = "error"
	KindProgress   Kind = "progress"
	KindStats      Kind = "search_stats"
	KindMatch      Kind = "match"
)

// Message is one operator-facing report.
type Message struct {
	Time   time.Time      `json:"time"`
	Level  Level          `json:"level"`
	Kind   Kind           `json:"kind"`
	Text   string         `json:"text"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Reporter receives operator messages. Report must not block.
type Reporter interface {
	Report(msg Message)
}

// Info builds an info message.
func Info(kind Kind, text string, fields map[string]any) Message {
	return Message{Time: time.Now(), Level: LevelInfo, Kind: kind, Text: text, Fields: fields}
}

// Warn builds a warning message.
func Warn(kind Kind, text string, fields map[string]any) Message {
	return Message{Time: time.Now(), Level: LevelWarn, Kind: kind, Text: text, Fields: fields}
}

// Error builds an error message from err.
func Error(text string, err error) Message {
	msg := Message{Time: time.Now(), Level: LevelError, Kind: KindError, Text: text}
	if err != nil {
		msg.Fields = map[string]any{"error": err.Error()}
	}

	return msg
}

// LogReporter writes messages to a logger.
type LogReporter struct {
	log logrus.FieldLogger
}

var _ Reporter = (*LogReporter)(nil)

// NewLogReporter creates a reporter that logs every message.
func NewLogReporter(log logrus.FieldLogger) *LogReporter {
	return &LogReporter{log: log.WithField("component", "operator")}
}

// Report implements Reporter.
func (l *LogReporter) Report(msg Message) {
	entry := l.log.WithField("kind", msg.Kind)
	if len(msg.Fields) > 0 {
		entry = entry.WithFields(logrus.Fields(msg.Fields))
	}

	switch msg.Level {
	case LevelError:
		entry.Error(msg.Text)
	case LevelWarn:
		entry.Warn(msg.Text)
	default:
		entry.Info(msg.Text)
	}
}

// Multi fans a message out to several reporters.
type Multi []Reporter

var _ Reporter = Multi(nil)

// Report implements Reporter.
func (m Multi) Report(msg Message) {
	for _, r := range m {
		r.Report(msg)
	}
}
