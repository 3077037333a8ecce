package storage

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// badgerLogger routes badger's printf-style logging into zerolog.
// Badger is chatty at info level, so info and debug lines go to debug.
type badgerLogger struct {
	log zerolog.Logger
}

func newBadgerLogger(l zerolog.Logger) *badgerLogger {
	return &badgerLogger{log: l.With().Str("component", "badger").Logger()}
}

func (b *badgerLogger) Errorf(format string, args ...interface{}) {
	b.log.Error().Msg(trim(format, args))
}

func (b *badgerLogger) Warningf(format string, args ...interface{}) {
	b.log.Warn().Msg(trim(format, args))
}

func (b *badgerLogger) Infof(format string, args ...interface{}) {
	b.log.Debug().Msg(trim(format, args))
}

func (b *badgerLogger) Debugf(format string, args ...interface{}) {
	b.log.Trace().Msg(trim(format, args))
}

func trim(format string, args []interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
