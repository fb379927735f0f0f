package events

import (
	"time"

	"github.com/asaskevich/EventBus"
)

// Topics published by the HTTP layer after a successful mutation
const (
	TopicProductCreated   = "product:created"
	TopicProductUpdated   = "product:updated"
	TopicProductDeleted   = "product:deleted"
	TopicReviewCreated    = "review:created"
	TopicCategoryUpdated  = "category:updated"
	TopicImagesPatched    = "product:images-patched"
	TopicAdminLogin       = "admin:login"
	TopicAdminLoginFailed = "admin:login-failed"
)

// AdminTopics are the topics recorded in the audit log
var AdminTopics = []string{
	TopicProductCreated,
	TopicProductUpdated,
	TopicProductDeleted,
	TopicCategoryUpdated,
	TopicImagesPatched,
	TopicAdminLogin,
	TopicAdminLoginFailed,
}

// Event is the single payload type carried on the bus
type Event struct {
	Topic    string
	Operator string
	IP       string
	Subject  string
	Message  string
	Payload  interface{}
	At       time.Time
}

// Bus is a thin typed wrapper over EventBus
type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	b.bus.Publish(e.Topic, e)
}

func (b *Bus) Subscribe(topic string, fn func(Event)) error {
	return b.bus.Subscribe(topic, fn)
}

// SubscribeAsync runs fn on its own goroutine for every event; Wait drains them
func (b *Bus) SubscribeAsync(topic string, fn func(Event)) error {
	return b.bus.SubscribeAsync(topic, fn, false)
}

func (b *Bus) HasSubscribers(topic string) bool {
	return b.bus.HasCallback(topic)
}

func (b *Bus) Wait() {
	b.bus.WaitAsync()
}
