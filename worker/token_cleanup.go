package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Yumi00000/WABToDo-back-end/models"
)

// TokenCleanupWorker periodically deletes expired auth tokens so the table
// does not grow without bound.
type TokenCleanupWorker struct {
	db       *gorm.DB
	interval time.Duration
	log      *logrus.Entry
}

func NewTokenCleanupWorker(db *gorm.DB, interval time.Duration) *TokenCleanupWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TokenCleanupWorker{
		db:       db,
		interval: interval,
		log:      logrus.WithField("worker", "token_cleanup"),
	}
}

// Start runs the cleanup loop until the context is cancelled. One sweep runs
// immediately on startup.
func (w *TokenCleanupWorker) Start(ctx context.Context) {
	w.log.WithField("interval", w.interval.String()).Info("starting token cleanup worker")

	w.sweep()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("token cleanup worker stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *TokenCleanupWorker) sweep() {
	result := w.db.Where("expires_at < ?", time.Now()).Delete(&models.AuthToken{})
	if result.Error != nil {
		w.log.WithError(result.Error).Error("failed to delete expired tokens")
		return
	}
	if result.RowsAffected > 0 {
		w.log.WithField("deleted", result.RowsAffected).Info("expired tokens removed")
	}
}
