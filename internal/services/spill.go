package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/biofolio/backend/domain"
	"github.com/biofolio/backend/internal/infrastructure/localstore"
	"github.com/biofolio/backend/repository"
	"github.com/biofolio/backend/usecase"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// SpillConfig controls how frequently the spill queue is drained.
type SpillConfig struct {
	Interval   time.Duration
	MaxRetries int
}

type spillItem struct {
	ID        string      `json:"id"`
	User      domain.User `json:"user"`
	Retries   int         `json:"retries"`
	Timestamp time.Time   `json:"timestamp"`
}

// SpillProcessor queues registrations that could not reach the remote
// directory and replays them once it is back. Email uniqueness is re-checked
// at replay time; a meanwhile-taken email drops the queued record.
type SpillProcessor struct {
	store     *localstore.Store
	monitor   ConnectionHealth
	directory repository.DirectoryRepository
	logger    *zap.Logger
	cron      *cron.Cron
	cfg       SpillConfig
}

func NewSpillProcessor(
	store *localstore.Store,
	monitor ConnectionHealth,
	directory repository.DirectoryRepository,
	logger *zap.Logger,
	cfg SpillConfig,
) *SpillProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sp := &SpillProcessor{
		store:     store,
		monitor:   monitor,
		directory: directory,
		logger:    logger,
		cfg:       cfg,
		cron:      cron.New(cron.WithSeconds()),
	}

	schedule := "@every " + cfg.Interval.String()
	if _, err := sp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := sp.Drain(ctx); err != nil {
			sp.logger.Error("spill drain failed", zap.Error(err))
		}
	}); err != nil {
		sp.logger.Error("failed to schedule spill drain", zap.String("schedule", schedule), zap.Error(err))
	}

	return sp
}

// Start launches the cron scheduler.
func (sp *SpillProcessor) Start() {
	if sp == nil || sp.cron == nil {
		return
	}
	sp.cron.Start()
	sp.logger.Info("spill processor started")
}

// Stop gracefully stops the scheduler.
func (sp *SpillProcessor) Stop(ctx context.Context) {
	if sp == nil || sp.cron == nil {
		return
	}
	stopCtx := sp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	sp.logger.Info("spill processor stopped")
}

// SpillRegistration persists a registration for later replay.
func (sp *SpillProcessor) SpillRegistration(ctx context.Context, user *domain.User) error {
	if sp == nil || sp.store == nil {
		return fmt.Errorf("spill processor not configured")
	}
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}

	item := spillItem{
		ID:        uuid.NewString(),
		User:      *user,
		Timestamp: time.Now(),
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return sp.store.Put(localstore.BucketSpill, buildKey(item), payload)
}

// Drain replays queued registrations synchronously.
func (sp *SpillProcessor) Drain(ctx context.Context) error {
	if sp == nil || sp.store == nil {
		return nil
	}
	if sp.monitor != nil && !sp.monitor.IsOnline() {
		sp.logger.Debug("skipping spill drain (offline)")
		return nil
	}

	type entry struct {
		key  string
		item spillItem
	}
	var entries []entry
	err := sp.store.ForEach(localstore.BucketSpill, func(key string, value []byte) error {
		var item spillItem
		if jsonErr := json.Unmarshal(value, &item); jsonErr != nil {
			sp.logger.Warn("dropping unreadable spill item", zap.String("key", key))
			return nil
		}
		entries = append(entries, entry{key: key, item: item})
		return nil
	})
	if err != nil {
		return err
	}

	for _, e := range entries {
		if err := sp.replay(ctx, e.item); err != nil {
			sp.logger.Error("failed to replay registration",
				zap.String("item_id", e.item.ID),
				zap.Error(err))

			e.item.Retries++
			if e.item.Retries >= sp.cfg.MaxRetries {
				sp.logger.Warn("dropping spill item (max retries reached)", zap.String("item_id", e.item.ID))
				_ = sp.store.Delete(localstore.BucketSpill, e.key)
				continue
			}

			payload, marshalErr := json.Marshal(e.item)
			if marshalErr != nil {
				continue
			}
			if putErr := sp.store.Put(localstore.BucketSpill, e.key, payload); putErr != nil {
				sp.logger.Error("failed to requeue spill item", zap.Error(putErr))
			}
			continue
		}

		if err := sp.store.Delete(localstore.BucketSpill, e.key); err != nil {
			sp.logger.Warn("failed to purge replayed spill item", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of queued registrations.
func (sp *SpillProcessor) Size() int {
	if sp == nil || sp.store == nil {
		return 0
	}
	size, err := sp.store.Count(localstore.BucketSpill)
	if err != nil {
		return 0
	}
	return size
}

func (sp *SpillProcessor) replay(ctx context.Context, item spillItem) error {
	if ctx == nil {
		ctx = context.Background()
	}

	_, err := sp.directory.FindByEmail(ctx, item.User.Email)
	if err == nil {
		// Email was registered through another path while queued.
		sp.logger.Warn("dropping queued registration, email taken",
			zap.String("item_id", item.ID))
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	return sp.directory.Append(ctx, &item.User)
}

func buildKey(item spillItem) string {
	return fmt.Sprintf("%020d_%s", item.Timestamp.UnixNano(), item.ID)
}

var _ usecase.RegistrationSpill = (*SpillProcessor)(nil)
