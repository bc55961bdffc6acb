package lock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedSerializesSameKey(t *testing.T) {
	k := NewKeyed()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k.Lock("room:1")
			counter++
			k.Unlock("room:1")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestKeyedIndependentKeysDoNotBlock(t *testing.T) {
	k := NewKeyed()

	k.Lock("room:1")
	defer k.Unlock("room:1")

	done := make(chan struct{})
	go func() {
		k.Lock("room:2")
		k.Unlock("room:2")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestLockAllSortedAcquisitionAvoidsDeadlock(t *testing.T) {
	k := NewKeyed()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			release := k.LockAll("teacher:7", "room:3")
			time.Sleep(time.Millisecond)
			release()
		}()
		go func() {
			defer wg.Done()
			release := k.LockAll("room:3", "teacher:7")
			time.Sleep(time.Millisecond)
			release()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("crossed lock orders deadlocked")
	}
}

func TestLockAllDeduplicatesKeys(t *testing.T) {
	k := NewKeyed()

	release := k.LockAll("student:9", "student:9")
	release()

	// A second acquisition proves the duplicate was not locked twice.
	release = k.LockAll("student:9")
	release()
}

func TestUnlockEvictsUnusedEntries(t *testing.T) {
	k := NewKeyed()

	k.Lock("a")
	k.Unlock("a")

	k.mu.Lock()
	defer k.mu.Unlock()
	assert.Empty(t, k.locks)
}
