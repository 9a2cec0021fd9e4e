package bus

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type simpleEvent struct {
	typeStr string
	source  string
	ts      time.Time
	data    any
	prio    int
	meta    map[string]any
}

func (e simpleEvent) Type() string             { return e.typeStr }
func (e simpleEvent) Source() string           { return e.source }
func (e simpleEvent) Timestamp() time.Time     { return e.ts }
func (e simpleEvent) Data() any                { return e.data }
func (e simpleEvent) Priority() int            { return e.prio }
func (e simpleEvent) Metadata() map[string]any { return e.meta }

// NewEvent creates a simple Event implementation.
func NewEvent(typ, src string, data any, priority int, metadata map[string]any) Event {
	return simpleEvent{typeStr: typ, source: src, ts: time.Now(), data: data, prio: priority, meta: metadata}
}

type subscription struct {
	id        string
	eventType string
	handler   EventHandler
	active    atomic.Bool
	cancel    func()
}

func (s *subscription) ID() string            { return s.id }
func (s *subscription) EventType() string     { return s.eventType }
func (s *subscription) Handler() EventHandler { return s.handler }
func (s *subscription) IsActive() bool        { return s.active.Load() }
func (s *subscription) Cancel() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// topicState keeps subscriptions per event type in subscription order.
type topicState struct {
	config TopicConfig
	types  []string
	subs   map[string][]*subscription
}

type inMemoryBus struct {
	mu        sync.RWMutex
	topics    map[string]*topicState
	order     []string
	metrics   EventBusMetrics
	observers []EventBusObserver
}

func New() EventBus {
	return &inMemoryBus{
		topics: make(map[string]*topicState),
	}
}

func (b *inMemoryBus) Publish(event Event) error {
	return b.deliver("", event)
}

func (b *inMemoryBus) PublishToTopic(topic string, event Event) error {
	return b.deliver(topic, event)
}

func (b *inMemoryBus) PublishWithFilters(event Event, filters ...EventFilter) error {
	for _, f := range filters {
		if !f(event) {
			b.mu.Lock()
			if len(b.observers) > 0 {
				b.metrics.DroppedByFilters++
			}
			b.mu.Unlock()
			return nil
		}
	}
	return b.Publish(event)
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	return b.SubscribeTopic("", eventType, handler)
}

func (b *inMemoryBus) SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ts := b.ensureTopicLocked(topic, TopicConfig{})
	if _, ok := ts.subs[eventType]; !ok {
		ts.types = append(ts.types, eventType)
	}

	s := &subscription{id: uuid.NewString(), eventType: eventType, handler: handler}
	s.active.Store(true)
	s.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if !s.active.Swap(false) {
			return
		}
		ts.subs[eventType] = slices.DeleteFunc(ts.subs[eventType], func(o *subscription) bool { return o == s })
	}
	ts.subs[eventType] = append(ts.subs[eventType], s)
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) PublishBatch(events ...Event) error {
	var all error
	for _, e := range events {
		if err := b.Publish(e); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

func (b *inMemoryBus) CreateTopic(name string, config TopicConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureTopicLocked(name, config)
	return nil
}

func (b *inMemoryBus) AddObserver(obs EventBusObserver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !slices.Contains(b.observers, obs) {
		b.observers = append(b.observers, obs)
	}
}

func (b *inMemoryBus) RemoveObserver(obs EventBusObserver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = slices.DeleteFunc(b.observers, func(o EventBusObserver) bool { return o == obs })
}

func (b *inMemoryBus) GetMetrics() EventBusMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

func (b *inMemoryBus) GetTopics() []TopicInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]TopicInfo, 0, len(b.order))
	for _, name := range b.order {
		ts := b.topics[name]
		info := TopicInfo{Name: name, EventTypes: len(ts.types)}
		for _, subs := range ts.subs {
			info.Subs += len(subs)
		}
		out = append(out, info)
	}
	return out
}

func (b *inMemoryBus) ensureTopicLocked(topic string, config TopicConfig) *topicState {
	ts, ok := b.topics[topic]
	if !ok {
		ts = &topicState{config: config, subs: make(map[string][]*subscription)}
		b.topics[topic] = ts
		b.order = append(b.order, topic)
	}
	return ts
}

func (b *inMemoryBus) deliver(topic string, event Event) error {
	start := time.Now()
	etype := event.Type()

	b.mu.RLock()
	var subs []*subscription
	if ts := b.topics[topic]; ts != nil {
		subs = slices.Clone(ts.subs[etype])
	}
	observers := slices.Clone(b.observers)
	b.mu.RUnlock()

	for _, obs := range observers {
		obs.OnPublish(topic, etype, event)
	}

	var all error
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}

	if len(observers) == 0 {
		return all
	}

	dur := time.Since(start).Microseconds()
	for _, obs := range observers {
		obs.OnDelivered(topic, etype, len(subs), all, dur)
	}

	b.mu.Lock()
	b.metrics.Published++
	b.metrics.DeliveredHandlers += uint64(len(subs))
	if all != nil {
		b.metrics.Errors++
	}
	b.metrics.Topics = uint64(len(b.topics))
	var active uint64
	for _, ts := range b.topics {
		for _, m := range ts.subs {
			active += uint64(len(m))
		}
	}
	b.metrics.SubscribersActive = active
	b.mu.Unlock()
	return all
}
