// Package logging wires up the package-level zerolog logger used by
// the docking CLI. The Metropolis/BFGS driver in internal/dock does not
// use it; its Verbose progress lines go to stdout via fmt.Printf.
package logging

import (
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Log is the shared console logger: caller-tagged, human-readable
// output to stderr.
var Log = zlog.With().Caller().Logger().Output(zerolog.ConsoleWriter{Out: os.Stderr})

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// SetLevel adjusts the global minimum log level, used by the CLI's
// --verbose flag.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
