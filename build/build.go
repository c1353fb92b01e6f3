// Build metadata, set at link time:
//
// go build -ldflags "-X soundamp/build.version=abcdefg -X soundamp/build.timestamp=1482510310"

package build

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"
)

var (
	version   string
	timestamp string // Unix epoch
)

// Errors returned by Time()
var (
	ErrBlankTimestamp   = errors.New("build timestamp not set")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

// Version string, n/a when not set
func Version() string {
	return orNA(version)
}

// Operating system the binary was built for
func OS() string {
	return runtime.GOOS
}

// Architecture the binary was built for
func Architecture() string {
	return runtime.GOARCH
}

// Returns the build time, errors if the timestamp was not set or is invalid
func Time() (time.Time, error) {
	if timestamp == "" {
		return time.Time{}, ErrBlankTimestamp
	}
	i, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return time.Time{}, ErrInvalidTimestamp
	}
	return time.Unix(i, 0).UTC(), nil
}

// Returns the time in string format, n/a when not set
func TimeStr() string {
	t, err := Time()
	if err != nil {
		return "n/a"
	}
	return t.Format("Monday January 2 2006 at 15:04:05 MST")
}

// Multi line summary printed by the build command
func String() string {
	return fmt.Sprintf("OS: %s\nArchitecture: %s\nVersion: %s\nTime: %s\n",
		OS(), Architecture(), Version(), TimeStr())
}
