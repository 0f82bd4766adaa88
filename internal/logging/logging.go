// Package logging provides the single logrus logger shared across the
// engine. Components accept a *logrus.Logger in their constructors rather
// than reaching for a global, mirroring how the teacher threads a logger
// through its depsgraph.Builder; New collapses the teacher's separate
// debug-env-var println helper into one logger with a level instead of two
// parallel logging paths.
package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds a *logrus.Logger whose level is taken from BELAF_DEBUG (or the
// legacy DEBUG variable, honored for operators migrating scripts) and text
// formatting suited to a terminal.
func New() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	if debugEnabled() {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

func debugEnabled() bool {
	for _, v := range []string{os.Getenv("BELAF_DEBUG"), os.Getenv("DEBUG")} {
		if strings.EqualFold(v, "true") || v == "1" {
			return true
		}
	}
	return false
}
