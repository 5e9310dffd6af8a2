package retention

import (
	"context"
	"log/slog"
	"time"

	"devconnect-api/internal/models"
	"devconnect-api/internal/notify"

	"gorm.io/gorm"
)

// Sweeper periodically removes aged-out notifications and flips overdue
// pending invitations to expired. It is the background counterpart of the
// deadline checks the request paths perform on access.
type Sweeper struct {
	db       *gorm.DB
	notifier *notify.Service
	interval time.Duration
}

// NewSweeper constructs a retention sweeper.
func NewSweeper(db *gorm.DB, notifier *notify.Service, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{db: db, notifier: notifier, interval: interval}
}

// Run sweeps on a fixed interval until the context is cancelled. One sweep
// happens immediately on start.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	if removed, err := s.notifier.CleanupExpired(); err != nil {
		slog.Warn("notification cleanup failed", "error", err)
	} else if removed > 0 {
		slog.Info("expired notifications removed", "count", removed)
	}

	res := s.db.Model(&models.ProjectInvitation{}).
		Where("status = ? AND expires_at < ?", models.InvitationPending, time.Now()).
		Update("status", models.InvitationExpired)
	if res.Error != nil {
		slog.Warn("invitation expiry sweep failed", "error", res.Error)
	} else if res.RowsAffected > 0 {
		slog.Info("pending invitations expired", "count", res.RowsAffected)
	}
}
