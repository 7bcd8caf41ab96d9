// Package backup copies the workout log off the device as versioned export documents.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/internal/workouts"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Uploader stores one backup file and returns its remote id.
type Uploader interface {
	Upload(ctx context.Context, name string, content []byte) (string, error)
}

type exporter interface {
	Export(ctx context.Context) (*workouts.Export, error)
}

type Result struct {
	FileName string
	FileID   string
	Entries  int
	// some days could not be read and are missing from the file
	Partial  bool
	Duration time.Duration
}

// FileName is the name of the backup file taken at now.
func FileName(now time.Time) string {
	return fmt.Sprintf("workouts-%s.json", now.UTC().Format("20060102-150405"))
}

// Run exports the whole log and uploads it. Unreadable days are skipped and
// reported through Result.Partial; nothing is uploaded if the export fails entirely.
func Run(ctx context.Context, store exporter, uploader Uploader, now time.Time) (_ *Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backup.run")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	begin := time.Now()

	export, err := store.Export(ctx)
	partial := false
	if err != nil {
		if export == nil || !errors.Is(err, workouts.ErrCorruptData) {
			return nil, fmt.Errorf("export workouts: %w", err)
		}
		log.Warnf("backup will miss unreadable days: %s", err)
		partial = true
	}

	content, err := json.Marshal(export)
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}

	name := FileName(now)
	span.SetAttributes(
		attribute.String("file.name", name),
		attribute.Int("entries", len(export.Entries)),
	)

	fileID, err := uploader.Upload(ctx, name, content)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}

	log.Infof("backup %s saved [%s]: %d entries", name, fileID, len(export.Entries))

	return &Result{
		FileName: name,
		FileID:   fileID,
		Entries:  len(export.Entries),
		Partial:  partial,
		Duration: time.Since(begin),
	}, nil
}
