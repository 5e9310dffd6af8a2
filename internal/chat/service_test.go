package chat

import (
	"sync"
	"testing"

	"devconnect-api/internal/apperr"
	"devconnect-api/internal/models"
	"devconnect-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	users := []models.User{
		{ID: "u-1", FullName: "Alice", Email: "alice@example.com", Password: "x"},
		{ID: "u-2", FullName: "Bob", Email: "bob@example.com", Password: "x"},
		{ID: "u-3", FullName: "Carol", Email: "carol@example.com", Password: "x"},
	}
	for i := range users {
		require.NoError(t, db.Create(&users[i]).Error)
	}
	return NewService(db)
}

func TestFindOrCreateDirect_Commutative(t *testing.T) {
	svc := newTestService(t)

	conv1, err := svc.FindOrCreateDirect("u-1", "u-2")
	require.NoError(t, err)
	conv2, err := svc.FindOrCreateDirect("u-2", "u-1")
	require.NoError(t, err)

	require.Equal(t, conv1.ID, conv2.ID)
	require.Len(t, conv2.Participants, 2)
	require.True(t, conv2.IsParticipant("u-1"))
	require.True(t, conv2.IsParticipant("u-2"))
}

func TestFindOrCreateDirect_ConcurrentFirstContact(t *testing.T) {
	svc := newTestService(t)

	// Two users message each other for the first time simultaneously from
	// both directions; every call must land on one conversation.
	const senders = 8
	ids := make([]string, senders)
	errs := make([]error, senders)
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := "u-1", "u-2"
			if i%2 == 1 {
				a, b = b, a
			}
			conv, err := svc.FindOrCreateDirect(a, b)
			errs[i] = err
			if err == nil {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < senders; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, ids[0], ids[i])
	}

	var count int64
	require.NoError(t, svc.db.Model(&models.Conversation{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestFindOrCreateDirect_SelfRejected(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.FindOrCreateDirect("u-1", "u-1")
	require.Error(t, err)
	require.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestSendMessage_EmptyContentRejected(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.SendMessage(SendMessageInput{
		SenderID:    "u-1",
		RecipientID: "u-2",
		Content:     "   ",
	})
	require.Error(t, err)
	require.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestSendMessage_DefaultsToTextAndSentStatus(t *testing.T) {
	svc := newTestService(t)

	msg, conv, err := svc.SendMessage(SendMessageInput{
		SenderID:    "u-1",
		RecipientID: "u-2",
		Content:     "hello",
	})
	require.NoError(t, err)
	require.Equal(t, models.MessageText, msg.Type)
	require.Equal(t, models.MessageSent, msg.Status)
	require.NotNil(t, conv.LastMessageID)
	require.Equal(t, msg.ID, *conv.LastMessageID)
}

func TestSendMessage_NonParticipantForbidden(t *testing.T) {
	svc := newTestService(t)

	_, conv, err := svc.SendMessage(SendMessageInput{
		SenderID:    "u-1",
		RecipientID: "u-2",
		Content:     "hello",
	})
	require.NoError(t, err)

	_, _, err = svc.SendMessage(SendMessageInput{
		SenderID:       "u-3",
		ConversationID: conv.ID,
		Content:        "let me in",
	})
	require.Error(t, err)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestStatusTransitions_Monotonic(t *testing.T) {
	svc := newTestService(t)

	msg, conv, err := svc.SendMessage(SendMessageInput{
		SenderID:    "u-1",
		RecipientID: "u-2",
		Content:     "hello",
	})
	require.NoError(t, err)

	// sent -> delivered
	upgraded, err := svc.MarkDelivered(conv.ID, "u-2")
	require.NoError(t, err)
	require.EqualValues(t, 1, upgraded)

	// delivered -> read
	read, err := svc.MarkRead(conv.ID, "u-2", nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, read)

	// A later delivered upgrade must not regress "read".
	upgraded, err = svc.MarkDelivered(conv.ID, "u-2")
	require.NoError(t, err)
	require.Zero(t, upgraded)

	messages, err := svc.ListMessages(conv.ID, "u-2", 1, 50)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, models.MessageRead, messages[0].Status)
	require.Equal(t, msg.ID, messages[0].ID)
}

func TestMarkRead_SkipsOwnMessages(t *testing.T) {
	svc := newTestService(t)

	_, conv, err := svc.SendMessage(SendMessageInput{
		SenderID:    "u-1",
		RecipientID: "u-2",
		Content:     "from alice",
	})
	require.NoError(t, err)
	_, _, err = svc.SendMessage(SendMessageInput{
		SenderID:       "u-2",
		ConversationID: conv.ID,
		Content:        "from bob",
	})
	require.NoError(t, err)

	// Alice reading the conversation only touches Bob's message.
	modified, err := svc.MarkRead(conv.ID, "u-1", nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, modified)

	unread, err := svc.UnreadMessageCount("u-2")
	require.NoError(t, err)
	require.EqualValues(t, 1, unread)
}

func TestEditMessage_OnlySender(t *testing.T) {
	svc := newTestService(t)

	msg, _, err := svc.SendMessage(SendMessageInput{
		SenderID:    "u-1",
		RecipientID: "u-2",
		Content:     "original",
	})
	require.NoError(t, err)

	_, err = svc.EditMessage(msg.ID, "u-2", "hijacked")
	require.Error(t, err)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	edited, err := svc.EditMessage(msg.ID, "u-1", "fixed")
	require.NoError(t, err)
	require.Equal(t, "fixed", edited.Content)
	require.True(t, edited.IsEdited)
	require.NotNil(t, edited.EditedAt)
}

func TestDeleteMessage_SoftDeleteHidesFromQueries(t *testing.T) {
	svc := newTestService(t)

	msg, conv, err := svc.SendMessage(SendMessageInput{
		SenderID:    "u-1",
		RecipientID: "u-2",
		Content:     "disappearing",
	})
	require.NoError(t, err)

	require.Error(t, svc.DeleteMessage(msg.ID, "u-2"))
	require.NoError(t, svc.DeleteMessage(msg.ID, "u-1"))

	messages, err := svc.ListMessages(conv.ID, "u-1", 1, 50)
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestSearchMessages_ScopedToParticipants(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.SendMessage(SendMessageInput{
		SenderID:    "u-1",
		RecipientID: "u-2",
		Content:     "the golang meetup is tomorrow",
	})
	require.NoError(t, err)
	_, _, err = svc.SendMessage(SendMessageInput{
		SenderID:    "u-2",
		RecipientID: "u-3",
		Content:     "golang tips for carol",
	})
	require.NoError(t, err)

	// u-3 only sees hits from their own conversations.
	results, err := svc.SearchMessages("u-3", "golang", "", 1, 20)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "golang tips for carol", results[0].Content)
}

func TestListConversations_UnreadAndLastMessage(t *testing.T) {
	svc := newTestService(t)

	msg, conv, err := svc.SendMessage(SendMessageInput{
		SenderID:    "u-1",
		RecipientID: "u-2",
		Content:     "first",
	})
	require.NoError(t, err)

	summaries, err := svc.ListConversations("u-2", 1, 20)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, conv.ID, summaries[0].ID)
	require.EqualValues(t, 1, summaries[0].UnreadCount)
	require.NotNil(t, summaries[0].LastMessage)
	require.Equal(t, msg.ID, summaries[0].LastMessage.ID)

	// The sender has nothing unread.
	summaries, err = svc.ListConversations("u-1", 1, 20)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Zero(t, summaries[0].UnreadCount)
}

func TestUserProfile_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.UserProfile("missing")
	require.Error(t, err)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))

	profile, err := svc.UserProfile("u-1")
	require.NoError(t, err)
	require.Equal(t, "Alice", profile.FullName)
}
