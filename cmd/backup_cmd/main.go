package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/2beens/gymlog/internal/backup"
	"github.com/2beens/gymlog/internal/config"
	"github.com/2beens/gymlog/internal/logging"
	"github.com/2beens/gymlog/internal/storage"
	"github.com/2beens/gymlog/internal/workouts"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	credentialsFile := flag.String(
		"gd-creds",
		"./gymlog-drive-credentials.json",
		"google drive service account credentials json",
	)
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      backupLogsPath(cfg.LogsPath),
		LogToStdout:      true,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: "gymlog-backup",
	})

	log.Println("starting gymlog backup ...")

	if *credentialsFile == "" {
		log.Fatalln("google drive credentials json not specified")
	}
	credentialsFileBytes, err := os.ReadFile(*credentialsFile)
	if err != nil {
		log.Fatalf("unable to read credentials file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, credentialsFileBytes); err != nil {
		log.Fatalf("backup failed: %s", err)
	}
}

func run(ctx context.Context, cfg *config.Config, credentialsJson []byte) error {
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

	// authenticated transport on top of the traced one
	transport, err := htransport.NewTransport(
		ctx,
		otelhttp.NewTransport(http.DefaultTransport),
		option.WithCredentialsJSON(credentialsJson),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return fmt.Errorf("create google drive transport: %w", err)
	}

	uploader, err := backup.NewDriveUploader(ctx, option.WithHTTPClient(&http.Client{Transport: transport}))
	if err != nil {
		return fmt.Errorf("create google drive uploader: %w", err)
	}

	result, err := backup.Run(ctx, workouts.NewStore(backend.Store), uploader, time.Now())
	if err != nil {
		return err
	}
	if result.Partial {
		log.Warnf("backup %s is partial, some days could not be read", result.FileName)
	}

	if cfg.BackupUnixSocketAddrDir == "" {
		return nil
	}
	// the service may be down; the backup itself is already done
	if err := backup.SendReport(ctx, cfg.BackupUnixSocketAddrDir, cfg.BackupUnixSocketFileName, result); err != nil {
		log.Warnf("failed to report backup to the service: %s", err)
	}

	return nil
}

func backupLogsPath(serviceLogsPath string) string {
	if serviceLogsPath == "" {
		return ""
	}
	return serviceLogsPath + "-backup"
}
