package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowReplacesCurrent(t *testing.T) {
	n := New()
	first := n.Show(Success, "one", 0)
	second := n.Show(Error, "two", 0)

	cur, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, second.ID, cur.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, Error, cur.Kind)
	assert.Equal(t, "two", cur.Message)
}

func TestAutoDismiss(t *testing.T) {
	n := New()
	n.Show(Success, "saved", 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		_, ok := n.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestReplacedTimerDoesNotDismissSuccessor(t *testing.T) {
	n := New()
	n.Show(Success, "first", 20*time.Millisecond)
	n.Show(Error, "second", 0)

	time.Sleep(60 * time.Millisecond)
	cur, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "second", cur.Message)
}

func TestSubscribersAndDismiss(t *testing.T) {
	n := New()

	var mu sync.Mutex
	var seen []string
	n.Subscribe(func(note *Notification) {
		mu.Lock()
		defer mu.Unlock()
		if note == nil {
			seen = append(seen, "<nil>")
			return
		}
		seen = append(seen, note.Message)
	})

	n.Error("Failed to delete resume")
	n.Dismiss()
	n.Dismiss()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Failed to delete resume", "<nil>"}, seen)
}

func TestDefaultDelays(t *testing.T) {
	assert.Equal(t, 3*time.Second, SuccessDelay)
	assert.Equal(t, 5*time.Second, ErrorDelay)
	assert.Equal(t, 5*time.Second, PushDelay)
}
