package app

import (
	"sync"

	"qcm-service/internal/domain"
)

// ResultFeed fans newly saved records out to live admin subscribers.
type ResultFeed struct {
	mu          sync.Mutex
	subscribers map[chan domain.ResultRecord]struct{}
}

func NewResultFeed() *ResultFeed {
	return &ResultFeed{subscribers: make(map[chan domain.ResultRecord]struct{})}
}

// Subscribe returns a channel of new records.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *ResultFeed) Subscribe() (<-chan domain.ResultRecord, func()) {
	ch := make(chan domain.ResultRecord, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers rec to every subscriber without blocking.
func (f *ResultFeed) Publish(rec domain.ResultRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- rec:
		default:
			// Full buffer: drop the oldest update so a slow admin never blocks a submission.
			select {
			case <-ch:
			default:
			}
			ch <- rec
		}
	}
}

// Subscribers reports the number of live subscribers.
func (f *ResultFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
