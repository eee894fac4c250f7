package utils

import (
	"fmt"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
)

var Log = logrus.New()

// SetLogLevel maps the --loglevel flag onto utils.Log.
func SetLogLevel(level string) error {
	// We are not using logrus' trace and panic levels
	switch strings.ToLower(level) {
	case "debug":
		Log.SetLevel(log.DebugLevel)
	case "info", "":
		Log.SetLevel(log.InfoLevel)
	case "warning", "warn":
		Log.SetLevel(log.WarnLevel)
	case "error":
		Log.SetLevel(log.ErrorLevel)
	case "fatal":
		Log.SetLevel(log.FatalLevel)
	default:
		return fmt.Errorf("bad log level %q, available: debug, info, warn, error, fatal", level)
	}
	return nil
}

// ExpandPath resolves a leading ~ in a configured file path.
func ExpandPath(path string) string {
	expanded, err := homedir.Expand(strings.TrimSpace(path))
	if err != nil {
		Log.Debugf("Could not expand %q: %v", path, err)
		return path
	}
	return expanded
}

// MaxLen returns the length in characters of the longest string.
func MaxLen(values ...string) int {
	longest := 0
	for _, v := range values {
		if n := len([]rune(v)); n > longest {
			longest = n
		}
	}
	return longest
}
