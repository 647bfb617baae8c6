package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/satindergrewal/harmonix/internal/api"
	"github.com/satindergrewal/harmonix/internal/audio"
	"github.com/satindergrewal/harmonix/internal/autodj"
	"github.com/satindergrewal/harmonix/internal/catalog"
	"github.com/satindergrewal/harmonix/internal/config"
	"github.com/satindergrewal/harmonix/internal/generation"
	"github.com/satindergrewal/harmonix/internal/ollama"
	"github.com/satindergrewal/harmonix/internal/stream"
	"github.com/satindergrewal/harmonix/internal/worker"
)

const (
	sentryFlushTimeout = 2 * time.Second
	shutdownTimeout    = 10 * time.Second
	stationName        = "Harmonix Radio"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "harmonix@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Debug:            !cfg.IsProduction(),
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
			cfg.SentryDSN = ""
		} else {
			log.Printf("Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("Sentry not configured (SENTRY_DSN not set)")
	}

	if err := run(cfg); err != nil {
		sentry.CaptureException(err)
		sentry.Flush(sentryFlushTimeout)
		log.Fatal(err)
	}
}

func run(cfg config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("harmonix %s starting up...", releaseVersion)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load modifier catalog: %w", err)
	}
	svc := generation.NewService(cat, cfg.Workers, cfg.MaxDuration)

	var radio *api.Radio
	if cfg.RadioEnabled {
		radio = startRadio(ctx, cfg, svc)
	} else {
		log.Println("Radio disabled (RADIO_ENABLED=false)")
	}

	workerDone := make(chan error, 1)
	if cfg.NATSURL != "" {
		w, err := worker.Connect(cfg.NATSURL, cfg.NATSSubject, cfg.NATSQueue, svc)
		if err != nil {
			return err
		}
		go func() { workerDone <- w.Run(ctx) }()
	} else {
		workerDone <- nil
		log.Println("NATS not configured (set NATS_URL to serve render requests)")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.SetupRouter(svc, radio, api.Options{
		Version: releaseVersion,
		Sentry:  cfg.SentryDSN != "",
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if radio != nil {
			radio.WebRTC.Close()
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP shutdown: %v", err)
		}
	}()

	log.Printf("Listening on :%d", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}

	if err := <-workerDone; err != nil {
		return fmt.Errorf("render worker: %w", err)
	}
	log.Println("Goodbye")
	return nil
}

// startRadio wires the scheduler, pipeline and transports, and starts their
// loops on ctx.
func startRadio(ctx context.Context, cfg config.Config, svc *generation.Service) *api.Radio {
	pipeline := audio.NewPipeline(cfg.CrossfadeDuration)
	go pipeline.Run(ctx)

	broadcaster := stream.NewBroadcaster()
	go broadcaster.Run(ctx, pipeline.Frames())

	sched := autodj.NewScheduler(svc, pipeline, autodj.SchedulerConfig{
		StartingStyle: cfg.StartingStyle,
		TrackDuration: cfg.TrackDuration,
		BufferAhead:   cfg.BufferAhead,
		DwellMin:      cfg.DwellMin,
		DwellMax:      cfg.DwellMax,
		Temperature:   cfg.RadioTemperature,
	})

	// Ollama LLM (optional, enhances prompts and track names)
	var llmModel string
	if cfg.OllamaURL != "" {
		client := ollama.NewClient(cfg.OllamaURL, cfg.OllamaModel)

		readyCtx, readyCancel := context.WithTimeout(ctx, 30*time.Second)
		if client.WaitForReady(readyCtx) {
			gen := ollama.NewPromptGenerator(client)
			sched.SetPromptFunc(gen.GeneratePrompt)
			sched.SetNameFunc(func(ctx context.Context, style, _, prompt string) string {
				return gen.GenerateName(ctx, style, prompt)
			})
			llmModel = client.Model()
			log.Printf("Ollama connected: %s (LLM prompts enabled)", llmModel)
		} else {
			log.Println("Ollama not available, using static prompts")
		}
		readyCancel()
	} else {
		log.Println("Ollama not configured (set OLLAMA_URL to enable LLM prompts)")
	}

	// Idle detection: pause rendering when nobody is listening
	sched.SetListenerCountFunc(broadcaster.ListenerCount)
	go sched.Run(ctx)

	return &api.Radio{
		Scheduler:   sched,
		Pipeline:    pipeline,
		Broadcaster: broadcaster,
		WebRTC:      stream.NewWebRTCHandler(broadcaster),
		StationName: stationName,
		LLMModel:    llmModel,
		MaxDuration: int(cfg.MaxDuration),
	}
}
