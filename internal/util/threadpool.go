package util

import (
	"sync"
)

// ThreadPool bounds how many goroutines run at once.
type ThreadPool struct {
	slots chan struct{}
	wait  sync.WaitGroup
}

func NewThreadPool(size int) *ThreadPool {
	if size < 1 {
		size = 1
	}
	return &ThreadPool{slots: make(chan struct{}, size)}
}

// Go blocks until a slot is free and runs work in its own goroutine.
func (pool *ThreadPool) Go(work func()) {
	pool.slots <- struct{}{}
	pool.wait.Add(1)
	go func() {
		defer func() {
			<-pool.slots
			pool.wait.Done()
		}()
		work()
	}()
}

func (pool *ThreadPool) Size() int {
	return cap(pool.slots)
}

func (pool *ThreadPool) Running() int {
	return len(pool.slots)
}

func (pool *ThreadPool) Wait() {
	pool.wait.Wait()
}
