package notify

import (
	"testing"

	"devconnect-api/internal/apperr"
	"devconnect-api/internal/models"
	"devconnect-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

// fakePusher records pushes and answers with a fixed online/offline state.
type fakePusher struct {
	online bool
	events []string
}

func (f *fakePusher) PushToUser(userID, event string, data any) bool {
	if !f.online {
		return false
	}
	f.events = append(f.events, event)
	return true
}

func newTestNotify(t *testing.T, pusher LivePusher) *Service {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	return NewService(db, pusher)
}

func TestNotify_PersistsAndPushesWhenOnline(t *testing.T) {
	pusher := &fakePusher{online: true}
	svc := newTestNotify(t, pusher)

	result, notification, err := svc.Notify("u-2", "u-1", models.NotifyFollow,
		"Alice started following you", models.JSONMap{"followerId": "u-1"})
	require.NoError(t, err)
	require.True(t, result.Persisted)
	require.True(t, result.LiveDelivery)
	require.NotEmpty(t, notification.ID)
	require.Equal(t, []string{"newNotification"}, pusher.events)
}

func TestNotify_StoredWhenRecipientOffline(t *testing.T) {
	pusher := &fakePusher{online: false}
	svc := newTestNotify(t, pusher)

	result, _, err := svc.Notify("u-2", "u-1", models.NotifyMessage, "New message", nil)
	require.NoError(t, err)
	require.True(t, result.Persisted)
	require.False(t, result.LiveDelivery)

	unread, err := svc.UnreadCount("u-2")
	require.NoError(t, err)
	require.EqualValues(t, 1, unread)
}

func TestNotify_RequiresRecipientAndMessage(t *testing.T) {
	svc := newTestNotify(t, nil)

	_, _, err := svc.Notify("", "u-1", models.NotifyFollow, "hi", nil)
	require.Error(t, err)
	require.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, _, err = svc.Notify("u-2", "u-1", models.NotifyFollow, "", nil)
	require.Error(t, err)
	require.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestMarkRead_DecrementsUnread(t *testing.T) {
	svc := newTestNotify(t, nil)

	var ids []string
	for i := 0; i < 3; i++ {
		_, n, err := svc.Notify("u-2", "u-1", models.NotifyFollow, "follow", nil)
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	notification, unread, err := svc.MarkRead(ids[0], "u-2")
	require.NoError(t, err)
	require.True(t, notification.IsRead)
	require.EqualValues(t, 2, unread)

	// Marking again is a no-op on the count.
	_, unread, err = svc.MarkRead(ids[0], "u-2")
	require.NoError(t, err)
	require.EqualValues(t, 2, unread)

	require.NoError(t, svc.MarkAllRead("u-2"))
	unread, err = svc.UnreadCount("u-2")
	require.NoError(t, err)
	require.Zero(t, unread)
}

func TestMarkRead_OtherUsersNotificationNotFound(t *testing.T) {
	svc := newTestNotify(t, nil)

	_, n, err := svc.Notify("u-2", "u-1", models.NotifyFollow, "follow", nil)
	require.NoError(t, err)

	_, _, err = svc.MarkRead(n.ID, "u-3")
	require.Error(t, err)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestList_ReturnsTotalsAndPage(t *testing.T) {
	svc := newTestNotify(t, nil)

	for i := 0; i < 5; i++ {
		_, _, err := svc.Notify("u-2", "u-1", models.NotifyProjectUpdate, "update", nil)
		require.NoError(t, err)
	}

	notifications, total, unread, err := svc.List("u-2", 1, 3)
	require.NoError(t, err)
	require.Len(t, notifications, 3)
	require.EqualValues(t, 5, total)
	require.EqualValues(t, 5, unread)
}

func TestDelete_OwnedOnly(t *testing.T) {
	svc := newTestNotify(t, nil)

	_, n, err := svc.Notify("u-2", "u-1", models.NotifyFollow, "follow", nil)
	require.NoError(t, err)

	err = svc.Delete(n.ID, "u-3")
	require.Error(t, err)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))

	require.NoError(t, svc.Delete(n.ID, "u-2"))
	require.Error(t, svc.Delete(n.ID, "u-2"))
}
