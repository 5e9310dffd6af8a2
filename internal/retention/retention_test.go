package retention

import (
	"testing"
	"time"

	"devconnect-api/internal/models"
	"devconnect-api/internal/notify"
	"devconnect-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestSweep_ExpiresOverduePendingInvitations(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	invitations := []models.ProjectInvitation{
		{ID: "inv-old", ProjectID: "p-1", SenderID: "u-1", RecipientID: "u-2",
			Status: models.InvitationPending, ExpiresAt: time.Now().Add(-time.Hour)},
		{ID: "inv-fresh", ProjectID: "p-1", SenderID: "u-1", RecipientID: "u-3",
			Status: models.InvitationPending, ExpiresAt: time.Now().Add(time.Hour)},
		{ID: "inv-done", ProjectID: "p-1", SenderID: "u-1", RecipientID: "u-4",
			Status: models.InvitationAccepted, ExpiresAt: time.Now().Add(-time.Hour)},
	}
	for i := range invitations {
		require.NoError(t, db.Create(&invitations[i]).Error)
	}

	sweeper := NewSweeper(db, notify.NewService(db, nil), time.Hour)
	sweeper.sweep()

	var old models.ProjectInvitation
	require.NoError(t, db.Where("id = ?", "inv-old").First(&old).Error)
	require.Equal(t, models.InvitationExpired, old.Status)

	var fresh models.ProjectInvitation
	require.NoError(t, db.Where("id = ?", "inv-fresh").First(&fresh).Error)
	require.Equal(t, models.InvitationPending, fresh.Status)

	// Resolved invitations keep their status.
	var done models.ProjectInvitation
	require.NoError(t, db.Where("id = ?", "inv-done").First(&done).Error)
	require.Equal(t, models.InvitationAccepted, done.Status)
}

func TestSweep_RemovesAgedNotifications(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	notifier := notify.NewService(db, nil)

	_, fresh, err := notifier.Notify("u-1", "u-2", models.NotifyFollow, "recent", nil)
	require.NoError(t, err)

	old := models.Notification{
		ID: "n-old", RecipientID: "u-1", SenderID: "u-2",
		Type: models.NotifyFollow, Message: "ancient",
	}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Model(&models.Notification{}).
		Where("id = ?", "n-old").
		Update("created_at", time.Now().Add(-31*24*time.Hour)).Error)

	NewSweeper(db, notifier, time.Hour).sweep()

	var remaining []models.Notification
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, fresh.ID, remaining[0].ID)
}
