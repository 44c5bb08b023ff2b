package collab

import (
	"context"
	"errors"
)

// MaxSemaphore is the capacity of every SemaphoreControl: it bounds
// concurrent Kafka sends across all dispatcher workers, and concurrent op
// submissions through the websocket layer.
var MaxSemaphore = 100

// SemaphoreControl is a context-aware counting semaphore.
type SemaphoreControl struct {
	ch chan struct{}
}

func NewSemaphoreControl() *SemaphoreControl {
	return &SemaphoreControl{ch: make(chan struct{}, MaxSemaphore)}
}

func (s *SemaphoreControl) Acquire(ctx context.Context) error {
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return errors.New("semaphore: acquire timed out")
	}
}

func (s *SemaphoreControl) Release() error {
	select {
	case <-s.ch:
		return nil
	default:
		return errors.New("semaphore: release without a matching acquire")
	}
}
