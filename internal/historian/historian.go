// Package historian drains the action queue into Postgres in batches and
// marks games abandoned once they go quiet.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/bussfix/internal/dependencies/clock"
	"github.com/jason-s-yu/bussfix/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Sink persists drained records. *database.Store satisfies it.
type Sink interface {
	InsertActions(ctx context.Context, batch []models.GameAction) error
	MarkAbandoned(ctx context.Context, gameID uuid.UUID) error
}

// Config tunes batching and the inactivity sweep.
type Config struct {
	Queue      string
	BatchSize  int
	FlushDelay time.Duration
	// Inactivity is how long a game may go without actions before it is
	// marked abandoned.
	Inactivity    time.Duration
	SweepInterval time.Duration
}

// Service moves records from Redis to a Sink.
type Service struct {
	rdb   *redis.Client
	sink  Sink
	cfg   Config
	clock clock.Clock
	log   logrus.FieldLogger

	batchMu sync.Mutex
	batch   []models.GameAction

	activityMu   sync.Mutex
	lastActivity map[uuid.UUID]time.Time
}

func New(rdb *redis.Client, sink Sink, cfg Config, clk clock.Clock, log logrus.FieldLogger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.FlushDelay <= 0 {
		cfg.FlushDelay = 500 * time.Millisecond
	}
	if cfg.Inactivity <= 0 {
		cfg.Inactivity = 10 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return &Service{
		rdb:          rdb,
		sink:         sink,
		cfg:          cfg,
		clock:        clk,
		log:          log,
		batch:        make([]models.GameAction, 0, cfg.BatchSize),
		lastActivity: make(map[uuid.UUID]time.Time),
	}
}

// Run blocks until ctx is cancelled, then flushes what is left.
func (hs *Service) Run(ctx context.Context) {
	hs.log.WithField("queue", hs.cfg.Queue).Info("historian started")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hs.readLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		hs.inactivityLoop(ctx)
	}()
	wg.Wait()

	hs.flush(context.Background())
	hs.log.Info("historian stopped")
}

// readLoop pops one record at a time. The pop timeout doubles as the flush
// tick, so a partial batch never waits longer than about FlushDelay.
func (hs *Service) readLoop(ctx context.Context) {
	lastFlush := hs.clock.Now()
	for {
		if ctx.Err() != nil {
			return
		}
		if hs.clock.Now().Sub(lastFlush) >= hs.cfg.FlushDelay {
			hs.flush(ctx)
			lastFlush = hs.clock.Now()
		}

		res, err := hs.rdb.BLPop(ctx, hs.cfg.FlushDelay, hs.cfg.Queue).Result()
		if errors.Is(err, redis.Nil) {
			hs.flush(ctx)
			lastFlush = hs.clock.Now()
			continue
		}
		if err != nil {
			if ctx.Err() == nil {
				hs.log.WithError(err).Error("BLPop failed")
				time.Sleep(hs.cfg.FlushDelay)
			}
			continue
		}
		if len(res) < 2 {
			continue
		}

		var record models.GameAction
		if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
			hs.log.WithError(err).Warn("invalid action record")
			continue
		}
		hs.touch(record)
		if hs.appendToBatch(record) {
			hs.flush(ctx)
			lastFlush = hs.clock.Now()
		}
	}
}

// appendToBatch reports whether the batch is full.
func (hs *Service) appendToBatch(record models.GameAction) bool {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	hs.batch = append(hs.batch, record)
	return len(hs.batch) >= hs.cfg.BatchSize
}

// flush writes the current batch in one transaction. A failed batch is
// logged and dropped.
func (hs *Service) flush(ctx context.Context) {
	hs.batchMu.Lock()
	if len(hs.batch) == 0 {
		hs.batchMu.Unlock()
		return
	}
	batch := make([]models.GameAction, len(hs.batch))
	copy(batch, hs.batch)
	hs.batch = hs.batch[:0]
	hs.batchMu.Unlock()

	if err := hs.sink.InsertActions(ctx, batch); err != nil {
		hs.log.WithError(err).WithField("count", len(batch)).Error("flush failed")
		return
	}
	hs.log.WithField("count", len(batch)).Debug("flushed actions")
}

// touch tracks activity; a finished game stops being tracked.
func (hs *Service) touch(record models.GameAction) {
	hs.activityMu.Lock()
	defer hs.activityMu.Unlock()
	if record.ActionType == models.ActionEndGame {
		delete(hs.lastActivity, record.GameID)
		return
	}
	hs.lastActivity[record.GameID] = hs.clock.Now()
}

func (hs *Service) inactivityLoop(ctx context.Context) {
	ticker := time.NewTicker(hs.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hs.sweepInactive(ctx)
		}
	}
}

// sweepInactive marks every game idle for longer than Inactivity abandoned.
func (hs *Service) sweepInactive(ctx context.Context) {
	now := hs.clock.Now()
	var stale []uuid.UUID
	hs.activityMu.Lock()
	for id, last := range hs.lastActivity {
		if now.Sub(last) > hs.cfg.Inactivity {
			stale = append(stale, id)
			delete(hs.lastActivity, id)
		}
	}
	hs.activityMu.Unlock()

	for _, id := range stale {
		if err := hs.sink.MarkAbandoned(ctx, id); err != nil {
			hs.log.WithError(err).WithField("game", id).Error("failed to mark game abandoned")
			continue
		}
		hs.log.WithField("game", id).Info("marked game abandoned due to inactivity")
	}
}
