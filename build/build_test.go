package build

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTime(t *testing.T) {
	tt := []struct {
		name      string
		timestamp string
		expected  time.Time
		str       string
		err       error
	}{
		{
			"blank",
			"",
			time.Time{},
			"n/a",
			ErrBlankTimestamp,
		},
		{
			"invalid",
			"yesterday",
			time.Time{},
			"n/a",
			ErrInvalidTimestamp,
		},
		{
			"valid",
			"1482510310",
			time.Unix(1482510310, 0).UTC(),
			"Friday December 23 2016 at 16:25:10 UTC",
			nil,
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			defer func(old string) { timestamp = old }(timestamp)
			timestamp = tc.timestamp
			v, err := Time()
			assert.Equal(t, tc.err, err)
			assert.Equal(t, tc.expected, v)
			assert.Equal(t, tc.str, TimeStr())
		})
	}
}

func TestVersion(t *testing.T) {
	defer func(old string) { version = old }(version)
	version = ""
	assert.Equal(t, "n/a", Version())
	version = "abcdefg"
	assert.Equal(t, "abcdefg", Version())
	assert.Contains(t, String(), "Version: abcdefg")
	assert.Contains(t, String(), "OS: "+runtime.GOOS)
	assert.Equal(t, runtime.GOARCH, Architecture())
}
