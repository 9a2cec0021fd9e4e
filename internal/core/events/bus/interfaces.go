package bus

import "time"

// EventBus is an in-process pub/sub bus.
//
// Handlers subscribe by Event.Type(), optionally inside a topic; the default
// topic is "". Publish runs handlers synchronously in the caller goroutine and
// in subscription order, so a fixed sequence of Subscribe calls always yields
// the same delivery order. Handler errors are joined and returned. Metrics are
// collected only while at least one observer is registered.
type EventBus interface {
	// Publish delivers the event to the active subscribers of event.Type() in
	// the default topic.
	Publish(event Event) error
	// Subscribe registers a handler for an event type in the default topic.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. Nil is ignored.
	Unsubscribe(Subscription) error

	// PublishWithFilters drops the event silently when any filter rejects it.
	PublishWithFilters(event Event, filters ...EventFilter) error

	// CreateTopic declares a topic; repeated declarations are no-ops.
	CreateTopic(name string, config TopicConfig) error
	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	PublishToTopic(topic string, event Event) error

	// PublishBatch publishes events in order and joins their errors.
	PublishBatch(events ...Event) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	GetMetrics() EventBusMetrics
	// GetTopics lists topics in declaration order.
	GetTopics() []TopicInfo
}

// Event is an immutable message transported by the EventBus. Type is the
// routing key; the rest is informational.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
	Priority() int
	Metadata() map[string]any
}

type (
	// EventHandler is invoked once per delivered event.
	EventHandler func(event Event) error
	// EventFilter decides whether an event should be delivered.
	EventFilter func(event Event) bool
)

// Subscription is a handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	Handler() EventHandler
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// TopicConfig describes topic-level settings (reserved for future use).
type TopicConfig struct{}

// EventBusObserver is notified about deliveries and errors. Observers should
// return quickly.
type EventBusObserver interface {
	OnPublish(topic, eventType string, event Event)
	OnDelivered(topic, eventType string, handlers int, err error, durationMicros int64)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
	SubscribersActive uint64
	Topics            uint64
}

type TopicInfo struct {
	Name       string
	EventTypes int
	Subs       int
}
