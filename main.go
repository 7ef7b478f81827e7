package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"frailes/internal/app"
	"frailes/internal/config"
	"frailes/internal/eventpublisher/event"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {

	cnf := config.LoadConfigOrPanic()
	setupLogger(cnf.App)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	defer close(sigs)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	site, closeClients, err := app.Bootstrap(ctx, cnf)
	if err != nil {
		panic(err)
	}
	defer closeClients()

	events := site.Watch(ctx)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return site.Start(gctx)
	})
	group.Go(func() error {
		for e := range events {
			logEvent(e)
		}
		return nil
	})

	select {
	case <-sigs:
		// Received a termination signal, continue to shutdown
	case <-gctx.Done():
		// errgroup encountered an error, continue to shutdown
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), time.Second*5)
	defer flushCancel()
	site.Stop(flushCtx)

	cancel() // cancel the root context to signal all the consumers

	select {
	case <-time.After(time.Second * 5):
		// Give enough time to close all the pending resources
	case <-sigs:
		// Forcefully terminate the app with a signal
	}

	os.Exit(1)
}

func setupLogger(cnf config.App) {
	level, err := zerolog.ParseLevel(cnf.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func logEvent(e event.Event) {
	switch e.Type {
	case event.StoreFailed, event.EditFailed:
		log.Error().Err(e.Err).Str("source", e.Source).Msgf("%s", e.Type)
	case event.StoreReady:
		log.Info().Str("source", e.Source).Msg("store is ready")
	default:
		log.Debug().Str("source", e.Source).Msgf("%s", e.Type)
	}
}
