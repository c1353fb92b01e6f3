package cli

import (
	"fmt"
	"io"
	"time"

	"soundamp/audio"
	"soundamp/device"
	"soundamp/event"
	"soundamp/gain"
	"soundamp/logger"
	"soundamp/router"
	"soundamp/run"
	"soundamp/sockets/nats"
	"soundamp/sockets/unix"
	"soundamp/sockets/web"

	"github.com/spf13/cobra"
)

// Dry runs tick the mock backend every DRY_RUN_TICK, 10ms of audio at 48kHz
const (
	DRY_RUN_TICK   = time.Millisecond * 10
	DRY_RUN_FRAMES = 480
)

var (
	serveCmdDryRun bool
	serveCmdInput  int
	serveCmdOutput int
)

// Ticks a mock backend like a sound card would run its callbacks
func tick(b *audio.MockBackend, closeC <-chan struct{}) {
	logger.Debug("start dry run ticker")
	defer logger.Debug("exit dry run ticker")
	ticker := time.NewTicker(DRY_RUN_TICK)
	defer ticker.Stop()
	for {
		select {
		case <-closeC:
			return
		case <-ticker.C:
			b.Tick(DRY_RUN_FRAMES)
		}
	}
}

// Audio backend and device lister, the returned closer releases the backend
func backend() (audio.Backend, device.Lister, io.Closer, error) {
	if serveCmdDryRun {
		b := audio.NewMockBackend()
		l := device.NewStatic(
			[]string{"mock microphone", "mock line in"},
			[]string{"mock speakers"})
		closeC := make(chan struct{})
		go tick(b, closeC)
		return b, l, closerFunc(func() error {
			close(closeC)
			return nil
		}), nil
	}
	pa := audio.NewPortAudio(audio.NewConfig())
	if err := pa.Initialize(); err != nil {
		return nil, nil, nil, err
	}
	return pa, device.PortAudio{}, closerFunc(pa.Terminate), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the audio router",
	Run: func(cmd *cobra.Command, args []string) {
		b, l, release, err := backend()
		if err != nil {
			logger.WithError(err).Error("unable to start audio backend")
			return
		}
		defer release.Close()
		supervisor := router.New(
			b,
			l,
			gain.NewFromConfig(gain.NewConfig()),
			audio.OptionsFromConfig(audio.NewConfig()))
		supervisor.Start()
		defer supervisor.Close()
		hub := event.NewHub(supervisor)
		hub.Start(supervisor.Notifications())
		defer hub.Close()
		// Control surfaces, closed before the hub
		var closers []io.Closer
		defer func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i].Close()
			}
		}()
		server := unix.NewServer(unix.NewConfig(), hub)
		closers = append(closers, server)
		go func() {
			if err := server.Listen(); err != nil {
				logger.WithError(err).Error("unix socket server failed")
			}
		}()
		if wc := web.NewConfig(); wc.Enabled() {
			ws := web.New(wc, hub)
			ws.Start()
			closers = append(closers, ws)
		}
		if nc := nats.NewConfig(); nc.Enabled() {
			client, err := nats.Dial(nc, hub)
			if err != nil {
				logger.WithError(err).Error("unable to connect to nats")
			} else if err := client.Start(); err != nil {
				client.Close()
				logger.WithError(err).Error("unable to subscribe to nats")
			} else {
				closers = append(closers, client)
			}
		}
		if serveCmdInput >= 0 {
			supervisor.Submit(router.Start{
				Input:  serveCmdInput,
				Output: serveCmdOutput,
			})
		}
		logger.Info("soundamp running")
		sig := run.UntilQuit()
		logger.WithField("signal", fmt.Sprint(sig)).Info("shutting down")
	},
}

func init() {
	serveCmd.Flags().BoolVar(
		&serveCmdDryRun,
		"dry-run",
		false,
		"Route between mock devices instead of sound cards")
	serveCmd.Flags().IntVarP(
		&serveCmdInput,
		"input",
		"i",
		-1,
		"Input device to route on startup, see the devices command")
	serveCmd.Flags().IntVarP(
		&serveCmdOutput,
		"output",
		"o",
		-1,
		"Output device to route to on startup, the default output when negative")
}
