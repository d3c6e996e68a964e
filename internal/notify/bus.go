// Package notify is the in-process broadcast channel feeding realtime
// subscribers. Delivery is best-effort and at-most-once: a subscriber only
// sees events published while it is registered, and an event is dropped for
// a subscriber whose buffer is full.
package notify

import (
	"context"
	"iter"
	"sync"

	"github.com/sirupsen/logrus"
)

type Topic string

const BookAdded Topic = "bookAdded"

// Observer receives bus activity, typically to export metrics.
type Observer interface {
	SubscriberCount(topic Topic, n int)
	Delivered(topic Topic)
	Dropped(topic Topic)
}

type noopObserver struct{}

func (noopObserver) SubscriberCount(Topic, int) {}
func (noopObserver) Delivered(Topic) {}
func (noopObserver) Dropped(Topic) {}

type Option[T any] func(*Bus[T])

func WithBuffer[T any](n int) Option[T] {
	return func(b *Bus[T]) {
		if n > 0 {
			b.buffer = n
		}
	}
}

func WithLogger[T any](log logrus.FieldLogger) Option[T] {
	return func(b *Bus[T]) { b.log = log }
}

func WithObserver[T any](o Observer) Option[T] {
	return func(b *Bus[T]) { b.obs = o }
}

// Bus broadcasts values of type T to every subscription registered on a topic.
type Bus[T any] struct {
	// pubMu serializes publishers so every subscriber sees the same order.
	pubMu sync.Mutex

	mu   sync.RWMutex
	subs map[Topic]map[*Subscription[T]]struct{}

	buffer int
	log    logrus.FieldLogger
	obs    Observer
}

func NewBus[T any](opts ...Option[T]) *Bus[T] {
	b := &Bus[T]{
		subs:   make(map[Topic]map[*Subscription[T]]struct{}),
		buffer: 16,
		log:    logrus.StandardLogger(),
		obs:    noopObserver{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a new subscription on topic. Events published before
// this call are never delivered to it. Callers must Close it when done.
func (b *Bus[T]) Subscribe(topic Topic) *Subscription[T] {
	s := &Subscription[T]{
		topic: topic,
		ch:    make(chan T, b.buffer),
		done:  make(chan struct{}),
		bus:   b,
	}

	b.mu.Lock()
	set, ok := b.subs[topic]
	if !ok {
		set = make(map[*Subscription[T]]struct{})
		b.subs[topic] = set
	}
	set[s] = struct{}{}
	n := len(set)
	b.mu.Unlock()

	b.obs.SubscriberCount(topic, n)
	b.log.WithFields(logrus.Fields{"topic": topic, "subscribers": n}).Debug("subscriber added")
	return s
}

func (b *Bus[T]) remove(s *Subscription[T]) {
	b.mu.Lock()
	set := b.subs[s.topic]
	delete(set, s)
	n := len(set)
	if n == 0 {
		delete(b.subs, s.topic)
	}
	b.mu.Unlock()

	b.obs.SubscriberCount(s.topic, n)
	b.log.WithFields(logrus.Fields{"topic": s.topic, "subscribers": n}).Debug("subscriber removed")
}

// Publish delivers v to a snapshot of the subscriptions currently registered
// on topic and returns how many received it. It never blocks on a slow
// subscriber.
func (b *Bus[T]) Publish(topic Topic, v T) int {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	b.mu.RLock()
	snapshot := make([]*Subscription[T], 0, len(b.subs[topic]))
	for s := range b.subs[topic] {
		snapshot = append(snapshot, s)
	}
	b.mu.RUnlock()

	delivered := 0
	for _, s := range snapshot {
		select {
		case <-s.done:
		case s.ch <- v:
			delivered++
			b.obs.Delivered(topic)
		default:
			b.obs.Dropped(topic)
			b.log.WithField("topic", topic).Warn("subscriber buffer full, event dropped")
		}
	}
	return delivered
}

// Subscribers returns the number of live subscriptions on topic.
func (b *Bus[T]) Subscribers(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Subscription is a single subscriber's view of a topic.
type Subscription[T any] struct {
	topic Topic
	ch    chan T
	done  chan struct{}
	once  sync.Once
	bus   *Bus[T]
}

// C returns the channel events arrive on. It is never closed; select on Done
// to notice the subscription ending.
func (s *Subscription[T]) C() <-chan T { return s.ch }

func (s *Subscription[T]) Done() <-chan struct{} { return s.done }

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		close(s.done)
		s.bus.remove(s)
	})
}

// All yields events until ctx is cancelled, the subscription is closed, or
// the consumer stops ranging. The subscription is closed on return, so the
// sequence cannot be restarted.
func (s *Subscription[T]) All(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		defer s.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case v := <-s.ch:
				if !yield(v) {
					return
				}
			}
		}
	}
}
