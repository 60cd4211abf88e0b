package main

import (
	"context"
	"log"
	"os"

	"github.com/example/taskflow/config"
	"github.com/example/taskflow/modules/activity"
	"github.com/example/taskflow/modules/api"
	"github.com/example/taskflow/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const defaultConfigPath = "taskflow.yaml"

func main() {
	log.Println("=== TaskFlow - Task Management API ===")

	configPath := os.Getenv("TASKFLOW_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.Shutdown.Timeout),
		mono.WithLogLevel(logLevel(cfg.Log.Level)),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	taskModule := task.NewModule(cfg.Database, logger)

	// Order: independent modules first, then modules with dependencies.
	// activity consumes task events, task is the core domain, api is the
	// driving adapter and reports the task module's health.
	app.Register(activity.NewModule(cfg.Activity.Capacity, logger))
	app.Register(taskModule)
	app.Register(api.NewModule(cfg.Server, cfg.Pagination, logger, taskModule))

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Shutdown.Timeout,
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
}

// logLevel maps a configured level name to the framework's level.
func logLevel(level string) mono.LogLevel {
	switch level {
	case config.LogLevelDebug:
		return mono.LogLevelDebug
	case config.LogLevelWarn:
		return mono.LogLevelWarn
	case config.LogLevelError:
		return mono.LogLevelError
	default:
		return mono.LogLevelInfo
	}
}

func printStartupInfo(cfg *config.Config) {
	base := cfg.Server.BasePath
	log.Println("")
	log.Println("Application started successfully!")
	log.Printf("Database: %s", cfg.Database.Driver)
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost%s):", cfg.Server.Addr())
	log.Printf("  POST   %s/tasks                 - Create a task", base)
	log.Printf("  GET    %s/tasks                 - List tasks (isCompleted, title, page, size, sort)", base)
	log.Printf("  GET    %s/tasks/:id             - Get a task by ID", base)
	log.Printf("  PUT    %s/tasks/:id             - Update a task", base)
	log.Printf("  PATCH  %s/tasks/:id/complete    - Mark a task complete", base)
	log.Printf("  PATCH  %s/tasks/:id/incomplete  - Mark a task incomplete", base)
	log.Printf("  DELETE %s/tasks/:id             - Delete a task", base)
	log.Println("  GET    /health                 - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
