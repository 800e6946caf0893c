package dialog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-list.com/todo-list/internal/wizard"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	conv, err := store.Load(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, conv)

	saved := wizard.Conversation{
		Handle:  7,
		State:   wizard.StateDescription,
		Scratch: wizard.Scratch{Title: "Buy milk"},
	}
	require.NoError(t, store.Save(ctx, saved))

	conv, err = store.Load(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, saved, *conv)

	require.NoError(t, store.Delete(ctx, 7))
	conv, err = store.Load(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, conv)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, wizard.Conversation{Handle: 1, State: wizard.StateList}))
	require.NoError(t, store.Save(ctx, wizard.Conversation{Handle: 2, State: wizard.StateList}))

	now = now.Add(2 * time.Minute)
	conv, err := store.Load(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, conv)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 0, store.Sweep())
}

func TestMemoryStore_RejectsZeroHandle(t *testing.T) {
	err := NewMemoryStore(time.Minute).Save(context.Background(), wizard.Conversation{})
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestKeyedMutex_SerializesSameHandle(t *testing.T) {
	km := NewKeyedMutex()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock(99)
			defer unlock()

			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
	assert.Equal(t, 0, km.size())
}

func TestKeyedMutex_IndependentHandles(t *testing.T) {
	km := NewKeyedMutex()
	unlockA := km.Lock(1)

	done := make(chan struct{})
	go func() {
		unlock := km.Lock(2)
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different handle blocked")
	}
	unlockA()
	assert.Equal(t, 0, km.size())
}
