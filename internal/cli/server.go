package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/logging"
	"timed-quiz-service/internal/metrics"
	transport "timed-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New(serviceName, cfg.Log.Level)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	b, err := openBackend(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	defer b.Close()

	if cfg.Storage.Driver == config.DriverMemory || cfg.Quiz.SeedSample {
		if err := seedSample(ctx, b.service, log); err != nil {
			log.WithError(err).Warn("seed sample quiz failed")
		}
	}

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(transport.RouterConfig{
			Service:  b.service,
			Metrics:  m,
			Gatherer: reg,
			Logger:   log,
		}),
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": finalPort, "driver": cfg.Storage.Driver}).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// seedSample stores the sample quiz when the store has none.
func seedSample(ctx context.Context, svc *app.QuizService, log logrus.FieldLogger) error {
	existing, err := svc.ListQuizzes(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	quiz, err := svc.SaveQuiz(ctx, sampleQuiz())
	if err != nil {
		return err
	}
	log.WithField("quiz_id", quiz.ID).Info("sample quiz seeded")
	return nil
}
