package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu      sync.Mutex
	users   []uint
	failFor uint
}

func (s *recordingSender) Send(ctx context.Context, delivery Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if delivery.UserID == s.failFor {
		return errors.New("chat not found")
	}
	s.users = append(s.users, delivery.UserID)
	return nil
}

func (s *recordingSender) delivered() []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]uint(nil), s.users...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestNewsletterSendSkipsUnsubscribed(t *testing.T) {
	f := newFixture(t)
	sender := &recordingSender{}
	dispatcher := NewDispatcher(sender, 3)
	svc := NewNewsletterService(f.db, dispatcher)

	third := &models.User{TelegramID: 3003}
	require.NoError(t, f.db.Create(third).Error)
	_, err := svc.UpdateSubscription(context.Background(), f.admin.ID, false)
	require.NoError(t, err)
	_, err = svc.UpdateSubscription(context.Background(), third.ID, true)
	require.NoError(t, err)

	result, err := svc.Send(context.Background(), f.admin.ID, "New menu", "Pumpkin latte is back")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Recipients)
	assert.NotZero(t, result.Newsletter.ID)
	assert.Equal(t, f.admin.ID, result.Newsletter.SentBy)

	dispatcher.Close()
	assert.Equal(t, []uint{f.user.ID, third.ID}, sender.delivered())
	assert.Equal(t, int64(2), dispatcher.Delivered())
	assert.Equal(t, int64(1), countRows(t, f.db, &models.Newsletter{}))
}

func TestNewsletterNoSubscribers(t *testing.T) {
	f := newFixture(t)
	dispatcher := NewDispatcher(&recordingSender{}, 1)
	defer dispatcher.Close()
	svc := NewNewsletterService(f.db, dispatcher)

	for _, id := range []uint{f.user.ID, f.admin.ID} {
		_, err := svc.UpdateSubscription(context.Background(), id, false)
		require.NoError(t, err)
	}

	_, err := svc.Send(context.Background(), f.admin.ID, "Hello", "Anyone?")
	assertAppError(t, err, models.KindValidation, models.ErrNoSubscribers)
	assert.Equal(t, int64(0), countRows(t, f.db, &models.Newsletter{}))

	_, err = svc.Send(context.Background(), f.admin.ID, " ", "body")
	assertAppError(t, err, models.KindValidation, models.ErrBadRequest)
}

func TestSubscriptionDefaultsAndToggles(t *testing.T) {
	f := newFixture(t)
	dispatcher := NewDispatcher(LogSender{}, 1)
	defer dispatcher.Close()
	svc := NewNewsletterService(f.db, dispatcher)

	sub, err := svc.GetSubscription(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.True(t, sub.Subscribed)

	_, err = svc.UpdateSubscription(context.Background(), f.user.ID, false)
	require.NoError(t, err)
	sub, err = svc.GetSubscription(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.False(t, sub.Subscribed)

	_, err = svc.UpdateSubscription(context.Background(), f.user.ID, true)
	require.NoError(t, err)
	sub, err = svc.GetSubscription(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.True(t, sub.Subscribed)
	assert.Equal(t, int64(1), countRows(t, f.db, &models.UserSubscription{}))
}

func TestDispatcherDrainsAndCountsFailures(t *testing.T) {
	sender := &recordingSender{failFor: 3}
	dispatcher := NewDispatcher(sender, 2)

	batch := make([]Delivery, 0, 50)
	for i := uint(1); i <= 50; i++ {
		batch = append(batch, Delivery{UserID: i})
	}
	require.NoError(t, dispatcher.Submit(batch))
	dispatcher.Close()

	assert.Len(t, sender.delivered(), 49)
	assert.Equal(t, int64(49), dispatcher.Delivered())
	assert.Equal(t, int64(1), dispatcher.Failed())

	assert.ErrorIs(t, dispatcher.Submit(batch), ErrDispatcherClosed)
	// closing twice is harmless
	dispatcher.Close()
}
