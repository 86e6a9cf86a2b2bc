package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFakeClock_AfterFiresOnAdvance(t *testing.T) {
	start := time.Unix(1000, 0)
	c := Fake(start)

	ch := c.After(5 * time.Second)
	require.Equal(t, 1, c.PendingCount())

	c.Advance(4 * time.Second)
	select {
	case <-ch:
		t.Fatal("timer fired before deadline")
	default:
	}

	c.Advance(time.Second)
	select {
	case got := <-ch:
		require.Equal(t, start.Add(5*time.Second), got)
	default:
		t.Fatal("timer did not fire at deadline")
	}
	require.Equal(t, 0, c.PendingCount())
}

func TestFakeClock_AfterNonPositive(t *testing.T) {
	c := Fake(time.Unix(0, 0))

	select {
	case <-c.After(0):
	default:
		t.Fatal("zero duration must fire immediately")
	}
	require.Equal(t, 0, c.PendingCount())
}

func TestFakeClock_WaitForTimers(t *testing.T) {
	c := Fake(time.Unix(0, 0))
	done := make(chan struct{})

	go func() {
		<-c.After(time.Second)
		close(done)
	}()

	c.WaitForTimers(1)
	c.Advance(time.Second)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter was not released")
	}
}

func TestUnixMilli(t *testing.T) {
	c := Fake(time.UnixMilli(1234567))
	require.Equal(t, int64(1234567), UnixMilli(c))
}
