package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"envirostream/config"
	"envirostream/observability"
	"envirostream/pipeline"
	"envirostream/sensor"
	"envirostream/storage"
	"envirostream/stream"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stdout, nil)))
	log := slog.Default()

	cfg, err := config.Load(".")
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}

	buf := storage.NewBuffer(cfg.Buffer.Capacity)
	hub := stream.NewHub(cfg.Stream.QueueLen, log)
	met := observability.NewMetrics(
		func() float64 { return float64(buf.Size()) },
		func() float64 { return float64(hub.Len()) },
	)
	pipe := pipeline.New(buf, hub, met, log)
	gen := sensor.NewGenerator()

	pipe.Bootstrap(gen, cfg.Bootstrap.Count, cfg.Bootstrap.Spacing)

	srv := &server{cfg: cfg, buf: buf, hub: hub, pipe: pipe, met: met, log: log}
	httpSrv := &http.Server{Addr: cfg.Server.Addr, Handler: srv.routes()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.MQTT.Enabled {
		src := sensor.NewMQTTSource(sensor.MQTTConfig{
			Broker:          cfg.MQTT.Broker,
			Port:            cfg.MQTT.Port,
			Topic:           cfg.MQTT.Topic,
			Username:        cfg.MQTT.Username,
			Password:        cfg.MQTT.Password,
			UseTLS:          cfg.MQTT.UseTLS,
			InsecureSkipTLS: cfg.MQTT.InsecureSkipTLS,
		}, pipe.Ingest, met.OutOfRange, log)
		if err := src.Start(); err != nil {
			log.Error("mqtt source failed", "error", err)
			os.Exit(1)
		}
		defer src.Stop()
	} else {
		g.Go(func() error {
			return pipe.Run(ctx, gen, cfg.Producer.Interval)
		})
	}

	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
