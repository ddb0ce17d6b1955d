package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brandlift/mediaplanner/internal/analysis"
	"github.com/brandlift/mediaplanner/internal/auth"
	"github.com/brandlift/mediaplanner/internal/config"
	"github.com/brandlift/mediaplanner/internal/history"
	"github.com/brandlift/mediaplanner/internal/httpapi"
	"github.com/brandlift/mediaplanner/internal/planner"
	"github.com/brandlift/mediaplanner/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	listen := flag.String("listen", "", "Listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shCancel()
		if err := shutdownTracing(shCtx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	caller, err := analysis.NewAnthropicCallerFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	// History and auth are optional: without both, the calculator runs
	// in anonymous mode and persists nothing.
	var store *history.Store
	if cfg.HistoryDBPath != "" {
		store, err = history.NewStore(cfg.HistoryDBPath)
		if err != nil {
			log.Printf("history disabled, store open failed: %v", err)
			store = nil
		} else {
			defer store.Close()
		}
	}
	var verifier *auth.Verifier
	if cfg.JWTSecret != "" {
		verifier, err = auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
		if err != nil {
			log.Fatal(err)
		}
	}

	session := planner.NewSession(planner.CampaignInputs{})
	handler := httpapi.NewServer(session, caller, store, verifier)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shCancel()
		_ = srv.Shutdown(shCtx)
	}()

	log.Printf("starting mediaplan-server (listen=%s, history=%t, auth=%t)", cfg.ListenAddr, store != nil, verifier != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
