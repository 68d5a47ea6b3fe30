package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sceneforge/rigkit/pkg/rig"
	"github.com/sceneforge/rigkit/pkg/scene"
)

// editSessionTTL bounds how long a finished run stays undoable.
const editSessionTTL = 24 * time.Hour

// RedisStorage implements the Storage interface using Redis for edit
// sessions and the filesystem for template assets
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStorage{
		client:  rdb,
		logger:  logger,
		dataDir: dataDir,
	}
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Template operations (filesystem-backed)

func (r *RedisStorage) ListTemplates(ctx context.Context) (map[string]string, error) {
	templatesDir := filepath.Join(r.dataDir, "templates")
	templates := make(map[string]string)

	err := filepath.WalkDir(templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		file, err := os.ReadFile(path)
		if err != nil {
			r.logger.Warn("Failed to read template file", "path", path, "error", err)
			return nil
		}

		var t scene.Template
		if err := json.Unmarshal(file, &t); err != nil {
			r.logger.Warn("Failed to unmarshal template file", "path", path, "error", err)
			return nil
		}

		filename := filepath.Base(path)
		templates[t.Name] = filename
		return nil
	})

	if err != nil {
		r.logger.Error("Failed to walk templates directory", "error", err)
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	return templates, nil
}

func (r *RedisStorage) GetTemplate(ctx context.Context, filename string) (*scene.Template, error) {
	path := filepath.Join(r.dataDir, "templates", filename)
	r.logger.Debug("Loading template", "filename", filename, "full_path", path)

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Error("Template file not found", "path", path, "error", err)
			return nil, fmt.Errorf("template not found: %s", filename)
		}
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	var t scene.Template
	if err := json.Unmarshal(file, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal template: %w", err)
	}

	t.FileName = filename
	t.Normalize()
	return &t, nil
}

func (r *RedisStorage) SaveTemplate(ctx context.Context, t *scene.Template) error {
	if t.FileName == "" {
		return fmt.Errorf("template has no file name")
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		r.logger.Error("Failed to marshal template", "filename", t.FileName, "error", err)
		return fmt.Errorf("failed to marshal template: %w", err)
	}

	dir := filepath.Join(r.dataDir, "templates")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create templates directory: %w", err)
	}

	// Write whole-file via a temp name then rename, so a template is never
	// observable half-written.
	path := filepath.Join(dir, t.FileName)
	tmp, err := os.CreateTemp(dir, t.FileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write template: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace template file: %w", err)
	}

	r.logger.Debug("Template saved", "filename", t.FileName)
	return nil
}

// Edit session operations (Redis-backed)

func (r *RedisStorage) SaveEditSession(ctx context.Context, log *rig.EditLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		r.logger.Error("Failed to marshal edit session", "run_id", log.RunID, "error", err)
		return fmt.Errorf("failed to marshal edit session: %w", err)
	}

	key := "editsession:" + log.RunID
	cmd := r.client.Set(ctx, key, string(data), editSessionTTL)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to save edit session", "run_id", log.RunID, "error", err)
		return fmt.Errorf("failed to save edit session: %w", err)
	}

	return nil
}

func (r *RedisStorage) GetEditSession(ctx context.Context, runID string) (*rig.EditLog, error) {
	key := "editsession:" + runID
	cmd := r.client.Get(ctx, key)
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to get edit session", "run_id", runID, "error", err)
		return nil, fmt.Errorf("failed to get edit session: %w", err)
	}

	var log rig.EditLog
	if err := json.Unmarshal([]byte(cmd.Val()), &log); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edit session: %w", err)
	}
	if log.Baseline != nil {
		log.Baseline.Normalize()
	}

	return &log, nil
}

func (r *RedisStorage) DeleteEditSession(ctx context.Context, runID string) error {
	key := "editsession:" + runID
	cmd := r.client.Del(ctx, key)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to delete edit session", "run_id", runID, "error", err)
		return fmt.Errorf("failed to delete edit session: %w", err)
	}
	return nil
}
