package service

// EventType defines the type of event
type EventType string

const (
	EventRootCreated       EventType = "root_created"
	EventRootUpdated       EventType = "root_updated"
	EventRootDeleted       EventType = "root_deleted"
	EventSpaceCreated      EventType = "space_created"
	EventSpaceUpdated      EventType = "space_updated"
	EventSpaceDeleted      EventType = "space_deleted"
	EventVlanCreated       EventType = "vlan_created"
	EventVlanUpdated       EventType = "vlan_updated"
	EventVlanDeleted       EventType = "vlan_deleted"
	EventWifiCreated       EventType = "wifi_created"
	EventWifiUpdated       EventType = "wifi_updated"
	EventWifiDeleted       EventType = "wifi_deleted"
	EventDeviceCreated     EventType = "device_created"
	EventDeviceUpdated     EventType = "device_updated"
	EventDeviceDeleted     EventType = "device_deleted"
	EventInterfaceCreated  EventType = "interface_created"
	EventInterfaceUpdated  EventType = "interface_updated"
	EventInterfaceDeleted  EventType = "interface_deleted"
	EventConnectionCreated EventType = "connection_created"
	EventConnectionUpdated EventType = "connection_updated"
	EventConnectionDeleted EventType = "connection_deleted"
	EventSecretCreated     EventType = "secret_created"
	EventSecretDeleted     EventType = "secret_deleted"
)

// Event represents an event that occurred in the system. Payloads carry ids
// only, never names, notes, or sealed values.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
