package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-session/internal/config"
	"github.com/rocketscienceinc/tictactoe-session/internal/render"
	"github.com/rocketscienceinc/tictactoe-session/internal/repository"
	"github.com/rocketscienceinc/tictactoe-session/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-session/internal/service"
	"github.com/rocketscienceinc/tictactoe-session/internal/session"
	"github.com/rocketscienceinc/tictactoe-session/internal/transport/line"
	"github.com/rocketscienceinc/tictactoe-session/internal/transport/websocket"
	"github.com/rocketscienceinc/tictactoe-session/transport/rest"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	renderer, err := render.New(conf.Locale, conf.Color)
	if err != nil {
		return fmt.Errorf("could not create renderer: %w", err)
	}

	var observers []session.ParticipantLink

	if conf.Redis.Enabled {
		mirror, closeMirror, mirrorErr := startEventMirror(ctx, logger, conf)
		if mirrorErr != nil {
			return mirrorErr
		}
		defer closeMirror()

		observers = append(observers, mirror)
	}

	host := session.NewHost(logger, observers...)
	lineHandler := line.NewHandler(logger, host, renderer, conf.SendBuffer)

	// run TCP line server
	tcpErrCh := make(chan error, 1)
	tcpDone := make(chan struct{})
	go func() {
		defer close(tcpDone)
		log.Info("Starting TCP server", "port", conf.TCPPort)
		if tcpErr := line.NewServer(logger, lineHandler).Start(ctx, conf.TCPPort); tcpErr != nil {
			log.Error("TCP server error", "error", tcpErr)
			tcpErrCh <- tcpErr
		}
	}()

	// run HTTP server with the websocket endpoint
	httpErrCh := make(chan error, 1)
	httpDone := make(chan struct{})
	go func() {
		defer close(httpDone)
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		wsServer := websocket.New(logger, lineHandler)
		router := rest.NewRouter(logger, host, wsServer.Handler(ctx))
		if httpErr := rest.Start(ctx, conf.HTTPPort, router); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	var runErr error
	select {
	case err = <-tcpErrCh:
		runErr = fmt.Errorf("TCP server error: %w", err)
	case err = <-httpErrCh:
		runErr = fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	// connections must be gone before the mirror closes
	cancel()
	<-tcpDone
	<-httpDone
	lineHandler.Wait()

	return runErr
}

// startEventMirror connects to Redis and starts publishing every session
// broadcast. The returned func stops the mirror and closes the connection.
func startEventMirror(ctx context.Context, logger *slog.Logger, conf *config.Config) (*service.EventMirror, func(), error) {
	log := logger.With("component", "app")

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedis(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	eventRepo := repository.NewEventRepository(redisStorage, conf.Redis.ChannelPrefix)
	mirror := service.NewEventMirror(logger, eventRepo)

	// outlives ctx so broadcasts made while connections shut down are still
	// published; closeMirror drains it
	runCtx := context.WithoutCancel(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if mirrorErr := mirror.Run(runCtx); mirrorErr != nil {
			log.Error("event mirror error", "error", mirrorErr)
		}
	}()

	closeMirror := func() {
		mirror.Close()
		<-done

		if closeErr := redisStorage.Close(); closeErr != nil {
			log.Error("could not close redis storage", "error", closeErr)
		}
	}

	return mirror, closeMirror, nil
}
