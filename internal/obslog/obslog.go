// Package obslog wires the framework's zerolog-based process logger and
// bridges it to engine.LogListener/engine.EventListener so a host program can
// subscribe its context's log and state-change bus straight into the
// process-wide logger. Grounded on
// Andrei-cloud-go_hsm/internal/logging/logging.go's InitLogger (human/JSON
// output switch, global level) and structured-field logging style.
package obslog

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pluffgo/pluffgo/internal/engine"
)

// Init configures the global zerolog logger. human selects a
// console-formatted writer over newline-delimited JSON; debug lowers the
// global level to Debug.
func Init(debug, human bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	base := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if human {
		log.Logger = base.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339Nano,
		})
	} else {
		log.Logger = base
	}
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

var severityLevels = map[engine.Severity]zerolog.Level{
	engine.SeverityDebug:   zerolog.DebugLevel,
	engine.SeverityInfo:    zerolog.InfoLevel,
	engine.SeverityWarning: zerolog.WarnLevel,
	engine.SeverityError:   zerolog.ErrorLevel,
	engine.SeverityFatal:   zerolog.FatalLevel,
}

// LogListener returns an engine.LogListener that writes each record to the
// global zerolog logger with structured fields.
func LogListener() engine.LogListener {
	return func(rec engine.LogRecord) {
		lvl, ok := severityLevels[rec.Severity]
		if !ok {
			lvl = zerolog.InfoLevel
		}
		log.WithLevel(lvl).
			Str("event", "plugin_log").
			Str("source", rec.Source).
			Msg(rec.Message)
	}
}

// EventListener returns an engine.EventListener that logs every plug-in
// state transition at Info level.
func EventListener() engine.EventListener {
	return func(ev engine.PluginEvent) {
		log.Info().
			Str("event", "plugin_state_change").
			Str("plugin", ev.PluginID).
			Str("from", ev.OldState.String()).
			Str("to", ev.NewState.String()).
			Msg("plug-in state changed")
	}
}
