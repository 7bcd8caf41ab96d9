// Package main runs the gymlog MCP server over stdio (for local editor/assistant use).
// The same MCP server is also mounted on the main backend at /mcp over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/2beens/gymlog/internal/catalog"
	"github.com/2beens/gymlog/internal/config"
	gymlogmcp "github.com/2beens/gymlog/internal/mcp"
	"github.com/2beens/gymlog/internal/stats"
	"github.com/2beens/gymlog/internal/storage"
	"github.com/2beens/gymlog/internal/workouts"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	// stdout carries the MCP protocol
	log.SetOutput(os.Stderr)

	if err := run(context.Background(), *env, *configPath); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, env, configPath string) error {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.StorageBackend == config.BackendMemory {
		log.Warnln("memory backend: the MCP server will only see an empty log")
	}

	backend, err := storage.Open(ctx, storage.OpenParams{
		Config:        cfg,
		RedisPassword: os.Getenv("GYMLOG_REDIS_PASS"),
		DBUser:        os.Getenv("GYMLOG_DB_USER"),
		DBPassword:    os.Getenv("GYMLOG_DB_PASS"),
		SharedBackend: true,
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer backend.Close()

	exerciseCatalog, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	customExercises := catalog.NewCustomStore(backend.Store, exerciseCatalog)
	store := workouts.NewStore(backend.Store, workouts.WithExerciseNames(customExercises.ExerciseName))
	statsService := stats.NewService(store, customExercises, cfg.Location(), nil)

	server := gymlogmcp.NewServer(statsService, store, customExercises)
	return server.Run(ctx, &mcp.StdioTransport{})
}
