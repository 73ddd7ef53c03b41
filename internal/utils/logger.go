package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// SetupLogger configures the global logrus logger for env and level
func SetupLogger(env, level string) {
	logrus.SetOutput(os.Stdout)
	if env == "development" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithField("level", level).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
