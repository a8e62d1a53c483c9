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

	"github.com/gin-gonic/gin"
	"github.com/poiesic/faqmatch/api"
	"github.com/poiesic/faqmatch/assistant"
	"github.com/poiesic/faqmatch/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func serveCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	asst, err := db.NewAssistant(assistant.WithMetrics(m))
	if err != nil {
		return err
	}

	count, err := db.QARepository().CountQAItems(c.Context)
	if err != nil {
		return err
	}
	m.SetKnowledgeBaseItems(count)
	if count == 0 {
		slog.Warn("knowledge base is empty; run the seed or import command to add items")
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.NewAPI(asst, db.QARepository(),
		api.WithMetrics(m, reg),
		api.WithLogger(slog.Default())))

	server := &http.Server{
		Addr:              c.String("addr"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("faqmatch listening", "addr", server.Addr, "items", count, "language", db.Config().Language)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Duration("shutdown-timeout"))
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("faqmatch stopped")
	return nil
}
