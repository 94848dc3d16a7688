// Package event provides change notification for editor state.
//
// The package implements an observer pattern that lets UI layers
// subscribe to scene mutations, selection changes and sync status
// without the core depending on them. Publication is synchronous and
// happens on the single UI mutator; observers must not block.
package event

// Kind classifies an editor event.
type Kind int

const (
	// KindEntity indicates an entity was mutated (moved, hidden,
	// duplicated, deleted, reordered).
	KindEntity Kind = iota

	// KindSelection indicates the selection changed.
	KindSelection

	// KindGuides indicates the transient snap guides changed.
	KindGuides

	// KindSync indicates sync state changed (sent, received, failed).
	KindSync

	// KindStatus carries a transient status message for the operator.
	KindStatus
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindSelection:
		return "selection"
	case KindGuides:
		return "guides"
	case KindSync:
		return "sync"
	case KindStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Event is one editor notification.
type Event struct {
	// Kind is the event classification.
	Kind Kind

	// Path is the affected entity path, when applicable.
	Path string

	// Message is a human-readable detail, used by status events.
	Message string
}

// Observer is called when an event is published.
type Observer func(Event)

// Notifier fans events out to subscribed observers.
type Notifier struct {
	observers map[int]Observer
	next      int
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{observers: make(map[int]Observer)}
}

// Subscribe registers an observer and returns its subscription id.
func (n *Notifier) Subscribe(obs Observer) int {
	id := n.next
	n.next++
	n.observers[id] = obs
	return id
}

// Unsubscribe removes the observer with the given id.
func (n *Notifier) Unsubscribe(id int) {
	delete(n.observers, id)
}

// Publish delivers the event to every observer synchronously.
func (n *Notifier) Publish(e Event) {
	for _, obs := range n.observers {
		obs(e)
	}
}

// Status publishes a transient status message.
func (n *Notifier) Status(msg string) {
	n.Publish(Event{Kind: KindStatus, Message: msg})
}
