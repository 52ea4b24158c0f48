package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/example/task-tracker-demo/metrics"
	"github.com/example/task-tracker-demo/modules/activity"
	"github.com/example/task-tracker-demo/modules/api"
	"github.com/example/task-tracker-demo/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := loadConfig()

	rootCmd := &cobra.Command{
		Use:           "task-tracker",
		Short:         "Task tracking REST service",
		Long:          `A task tracking backend: CRUD over tasks with status and priority filters, served over HTTP and NATS request-reply.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.finalize()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(&cfg)
		},
	}
	cfg.bindFlags(rootCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the tasks table and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := task.Migrate(cfg.storeConfig()); err != nil {
				return err
			}
			log.Printf("Schema migrated (%s)", cfg.DBDriver)
			return nil
		},
	}
	rootCmd.AddCommand(migrateCmd)

	return rootCmd
}

// serve runs the application until a shutdown signal arrives.
func serve(cfg *Config) error {
	log.Println("=== Task Tracker - Fiber + GORM ===")

	logLevel := mono.LogLevelInfo
	if cfg.LogLevel == "error" {
		logLevel = mono.LogLevelError
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	logger := app.Logger()

	// Modules:
	// - task: core domain (database, request-reply services, emits events)
	// - activity: event consumer (recent task activity)
	// - api: driving adapter (Fiber HTTP server, depends on task)
	taskModule := task.NewModule(cfg.storeConfig(), metrics.NewPromMetrics(registry), logger.WithModule("task"))
	activityModule := activity.NewModule(cfg.ActivityCapacity, logger.WithModule("activity"))
	apiModule := api.NewModule(api.Config{
		Port:           cfg.HTTPPort,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AccessLog:      cfg.AccessLog,
		Transport:      cfg.TaskTransport,
	}, taskModule, activityModule.Feed(), registry, logger.WithModule("api"))

	if err := app.Register(taskModule); err != nil {
		return fmt.Errorf("failed to register task module: %w", err)
	}
	if err := app.Register(activityModule); err != nil {
		return fmt.Errorf("failed to register activity module: %w", err)
	}
	if err := app.Register(apiModule); err != nil {
		return fmt.Errorf("failed to register api module: %w", err)
	}

	if err := app.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
	return nil
}

func printStartupInfo(cfg *Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber")
	log.Println("  - ORM: GORM")
	log.Printf("  - Database: %s", cfg.DBDriver)
	log.Printf("  - Task transport: %s", cfg.TaskTransport)
	log.Printf("  - Activity feed capacity: %d", cfg.ActivityCapacity)
	log.Println("")
	log.Println("Events:")
	log.Println("  - TaskCreated, TaskUpdated, TaskDeleted, TasksCleared -> activity module")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", cfg.HTTPPort)
	log.Println("  GET    /api/v1/tasks                 - List tasks (?status=&priority=)")
	log.Println("  POST   /api/v1/tasks                 - Create a task")
	log.Println("  DELETE /api/v1/tasks?confirm=true    - Delete all tasks")
	log.Println("  GET    /api/v1/tasks/:id             - Get a task")
	log.Println("  PUT    /api/v1/tasks/:id             - Replace a task")
	log.Println("  PATCH  /api/v1/tasks/:id             - Partially update a task")
	log.Println("  PATCH  /api/v1/tasks/:id/status      - Change task status")
	log.Println("  DELETE /api/v1/tasks/:id             - Delete a task")
	log.Println("  GET    /api/v1/activity              - Recent task activity")
	log.Println("  GET    /tasks/                       - List tasks as a plain array")
	log.Println("  GET    /health                       - Health check")
	log.Println("  GET    /metrics                      - Prometheus metrics")
	log.Println("")
	log.Println("NATS Services:")
	log.Println("  services.task.{list,create,get,replace,patch,update-status,delete,delete-all}")
	log.Println("  services.activity.recent")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
