package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TwistedChess/game/config"
	"TwistedChess/game/relay"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

var log = slog.Default().With("package", "main")

func main() {
	configPath := flag.String("config", os.Getenv(config.EnvPrefix+"CONFIG"), "path to a .toml or .yaml config file")
	httpAddr := flag.String("http", "", "HTTP/WebSocket listen address (overrides config)")
	tcpAddr := flag.String("tcp", "", "raw TCP relay listen address (overrides config, \"off\" disables)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	switch *tcpAddr {
	case "":
	case "off":
		cfg.TCPAddr = ""
	default:
		cfg.TCPAddr = *tcpAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))
	log = slog.Default().With("package", "main")
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	hub := relay.NewHub()
	srv := newRelayServer(hub, cfg.WriteTimeout.Duration, cfg.HandshakeTimeout.Duration, cfg.MaxMessageBytes)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handlers.CombinedLoggingHandler(os.Stdout, srv.routes()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		log.Info("server starting", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- errors.Wrap(err, "http")
			return
		}
		errc <- nil
	}()

	var tcpSrv *relay.TCPServer
	if cfg.TCPAddr != "" {
		tcpSrv = relay.NewTCPServer(hub, cfg.HandshakeTimeout.Duration, cfg.WriteTimeout.Duration)
		if _, err := tcpSrv.Listen(cfg.TCPAddr); err != nil {
			httpSrv.Close()
			return err
		}
		go func() {
			errc <- errors.WithMessage(tcpSrv.Serve(ctx), "tcp")
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errc:
	}
	return multierror.Append(runErr, shutdown(httpSrv, tcpSrv)).ErrorOrNil()
}

func shutdown(httpSrv *http.Server, tcpSrv *relay.TCPServer) error {
	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var result *multierror.Error
	if err := httpSrv.Shutdown(ctx); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "http shutdown"))
	}
	if tcpSrv != nil {
		if err := tcpSrv.Close(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "tcp shutdown"))
		}
	}
	return result.ErrorOrNil()
}
