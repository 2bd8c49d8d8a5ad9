package store

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionDeliversUntilClosed(t *testing.T) {
	sub := NewSubscription(context.Background(), func(ctx context.Context, emit Emit[int]) error {
		for i := 0; ; i++ {
			if !emit(i) {
				return nil
			}
		}
	})

	assert.Equal(t, 0, <-sub.Updates())
	assert.Equal(t, 1, <-sub.Updates())

	sub.Close()
	for range sub.Updates() {
		// drain anything that raced with Close
	}
	assert.NoError(t, sub.Err())
}

func TestSubscriptionReportsFailure(t *testing.T) {
	boom := errors.New("listen failed")
	sub := NewSubscription(context.Background(), func(ctx context.Context, emit Emit[string]) error {
		emit("first")
		return boom
	})

	assert.Equal(t, "first", <-sub.Updates())
	_, open := <-sub.Updates()
	assert.False(t, open)
	assert.ErrorIs(t, sub.Err(), boom)
	sub.Close()
}

func TestSubscriptionStopsWithParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := NewSubscription(ctx, func(ctx context.Context, emit Emit[int]) error {
		<-ctx.Done()
		return ctx.Err()
	})

	cancel()
	_, open := <-sub.Updates()
	assert.False(t, open)
	assert.NoError(t, sub.Err())
}

func TestSlotKeys(t *testing.T) {
	assert.Equal(t, "play:u1:u2", PlaySlotKey("u1", "u2"))
	assert.NotEqual(t, PlaySlotKey("u1", "u2"), PlaySlotKey("u2", "u1"))
	assert.Equal(t, "group:group1:u1", GroupSlotKey("group1", "u1"))
}

func TestNewerFirstBreaksTiesOnID(t *testing.T) {
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	msgs := []*Message{
		{ID: "m1", CreatedAt: at},
		{ID: "m3", CreatedAt: at},
		{ID: "m0", CreatedAt: at.Add(time.Minute)},
		{ID: "m2", CreatedAt: at},
	}
	sort.Slice(msgs, func(i, j int) bool {
		return NewerFirst(msgs[i].CreatedAt, msgs[i].ID, msgs[j].CreatedAt, msgs[j].ID)
	})

	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	assert.Equal(t, []string{"m0", "m3", "m2", "m1"}, ids)
}
