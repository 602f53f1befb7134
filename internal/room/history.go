package room

import (
	"context"
	"time"

	"github.com/jason-s-yu/bussfix/internal/game"
	"github.com/jason-s-yu/bussfix/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout  = 5 * time.Second
	publishBuffer = 256
)

// publishUnsafe numbers the action under the room lock and queues it for the
// publisher.
func (reg *Registry) publishUnsafe(r *Room, actionType, actorID string, payload map[string]interface{}) {
	if reg.history == nil || r.session == nil {
		return
	}
	r.actionIndex++
	reg.queue <- models.GameAction{
		GameID:      r.session.ID,
		ActionIndex: r.actionIndex,
		ActorID:     actorID,
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   reg.clock.Now().UnixMilli(),
	}
}

// runPublisher hands queued records to the history sink one at a time until
// Close closes the queue.
func (reg *Registry) runPublisher() {
	defer close(reg.published)
	for rec := range reg.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := reg.history.PublishGameAction(ctx, rec)
		cancel()
		if err != nil {
			reg.log.WithError(err).WithFields(logrus.Fields{"game": rec.GameID, "index": rec.ActionIndex}).Warn("failed to publish action")
		}
	}
}

// finishUnsafe closes out an ended game: history gets an end_game record and
// the standings are written when a results store is configured.
func (reg *Registry) finishUnsafe(r *Room) {
	s := r.session
	standings := game.Standings(s)
	r.log.WithFields(logrus.Fields{"game": s.ID, "winners": s.Winners}).Info("game ended")

	reg.publishUnsafe(r, models.ActionEndGame, "", map[string]interface{}{"standings": standings})

	if reg.results == nil {
		return
	}
	gameID, roomID, log := s.ID, r.ID, r.log
	reg.async.Add(1)
	go func() {
		defer reg.async.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := reg.results.RecordGameResults(ctx, gameID, roomID, standings); err != nil {
			log.WithError(err).WithField("game", gameID).Error("failed to record game results")
		}
	}()
}
