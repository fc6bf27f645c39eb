package spinlock

import (
	"sync"
	"testing"
)

func TestMutualExclusion(t *testing.T) {
	var lock Spinlock
	var counter int
	var wg sync.WaitGroup

	const goroutines, iterations = 8, 1000
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				lock.Lock()
				counter++
				lock.Unlock()
			}
		}()
	}
	wg.Wait()

	if counter != goroutines*iterations {
		t.Fatalf("counter = %d; want %d", counter, goroutines*iterations)
	}
}

func TestTryLock(t *testing.T) {
	var lock Spinlock
	if !lock.TryLock() {
		t.Fatal("TryLock should succeed on an unlocked spinlock")
	}
	if lock.TryLock() {
		t.Fatal("TryLock should fail while already locked")
	}
	lock.Unlock()
	if !lock.TryLock() {
		t.Fatal("TryLock should succeed again after Unlock")
	}
	lock.Unlock()
}
