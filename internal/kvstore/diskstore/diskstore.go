package diskstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/2beens/gymlog/internal/kvstore"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/pkg"

	"go.opentelemetry.io/otel/attribute"
)

const (
	fileExt       = ".json"
	tempPrefix    = ".tmp-"
	dirPermission = 0o755
)

// Store keeps one file per key under rootPath.
type Store struct {
	rootPath string
	mutex    sync.RWMutex
}

var _ kvstore.Store = (*Store)(nil)

func New(rootPath string) (*Store, error) {
	if err := pkg.EnsureDir(rootPath); err != nil {
		return nil, fmt.Errorf("ensure root dir [%s]: %w", rootPath, err)
	}
	return &Store{
		rootPath: rootPath,
	}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.rootPath, url.PathEscape(key)+fileExt)
}

func (s *Store) Get(ctx context.Context, key string) (_ []byte, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "kvstore.disk.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("key", key))

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, kvstore.ErrKeyNotFound
		}
		return nil, fmt.Errorf("read [%s]: %w", key, err)
	}

	return value, nil
}

// Set replaces the key's file atomically (temp file + rename), so a crash
// mid-write never leaves a truncated value behind.
func (s *Store) Set(ctx context.Context, key string, value []byte) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "kvstore.disk.set")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("key", key))

	s.mutex.Lock()
	defer s.mutex.Unlock()

	tmp, err := os.CreateTemp(s.rootPath, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return fmt.Errorf("rename [%s]: %w", key, err)
	}

	return nil
}

func (s *Store) Keys(ctx context.Context, prefix string) (_ []string, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "kvstore.disk.keys")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	dirEntries, err := os.ReadDir(s.rootPath)
	if err != nil {
		return nil, fmt.Errorf("read root dir: %w", err)
	}

	keys := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, tempPrefix) || !strings.HasSuffix(name, fileExt) {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	return keys, nil
}
