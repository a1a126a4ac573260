package kernelevent

import (
	"testing"
	"time"
)

func TestBlockUntilSetWakesAllWaiters(t *testing.T) {
	e := New()
	const n = 8
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		go func() {
			e.BlockUntilSet()
			done <- struct{}{}
		}()
	}

	time.Sleep(10 * time.Millisecond)
	e.Set()

	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for a waiter to wake")
		}
	}
}

func TestResetBlocksAgain(t *testing.T) {
	e := New()
	e.Set()
	e.Reset()

	woke := make(chan struct{})
	go func() {
		e.BlockUntilSet()
		close(woke)
	}()

	select {
	case <-woke:
		t.Fatal("waiter woke before Set after Reset")
	case <-time.After(20 * time.Millisecond):
	}

	e.Set()
	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("waiter did not wake after Set")
	}
}
