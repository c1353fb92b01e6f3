package cli

import (
	"testing"
	"time"

	"soundamp/audio"
	"soundamp/gain"
	"soundamp/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDryRunBackend(t *testing.T) {
	serveCmdDryRun = true
	defer func() { serveCmdDryRun = false }()
	b, l, release, err := backend()
	require.NoError(t, err)
	defer release.Close()
	require.IsType(t, &audio.MockBackend{}, b)
	inputs, err := l.Inputs()
	require.NoError(t, err)
	assert.Len(t, inputs, 2)

	s := router.New(b, l, gain.New(1, 0), audio.Options{Capacity: 4800})
	s.Start()
	defer s.Close()
	require.NoError(t, s.Submit(router.Start{Input: 0, Output: -1}))
	select {
	case n := <-s.Notifications():
		require.Equal(t, router.LinkedNotification, n.Type)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no notification")
	}
	// the ticker drives the link's callbacks
	assert.Eventually(t, func() bool {
		stats := s.Link().Stats()
		return stats.InputCalls > 0 && stats.OutputCalls > 0
	}, 2*time.Second, DRY_RUN_TICK)
}

func TestCommands(t *testing.T) {
	names := []string{}
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "devices", "start", "gain", "console", "build"})
}
