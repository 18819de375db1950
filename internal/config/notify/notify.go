// Package notify provides change notification for filter configuration.
//
// The notify package implements an observer pattern that allows the GUI
// layer (or tests) to subscribe to a filter's changes and receive callbacks
// when a value, a custom store or the activation state changes. Delivery is
// synchronous on the caller's control flow.
package notify

import (
	"github.com/dshills/darkroom/internal/config/value"
)

// ChangeType represents the type of configuration change.
type ChangeType int

const (
	// ChangeValue indicates a default-store value was set.
	ChangeValue ChangeType = iota

	// ChangeStore indicates a custom store was replaced.
	ChangeStore

	// ChangeActivation indicates the filter's activation flipped.
	ChangeActivation

	// ChangeReload indicates the whole configuration was reloaded
	// (preset import or reset).
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeValue:
		return "value"
	case ChangeStore:
		return "store"
	case ChangeActivation:
		return "activation"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change represents a configuration change event.
type Change struct {
	// Filter is the unique name of the filter that changed.
	Filter string

	// ID is the item id or custom store name. Empty for activation and
	// reload events.
	ID string

	// Type is the type of change.
	Type ChangeType

	// OldValue is the previous value (invalid when unknown).
	OldValue value.Value

	// NewValue is the new value. For activation events it is the new
	// activation state as a bool.
	NewValue value.Value
}

// Observer is called when configuration changes occur.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
		s.notifier = nil
	}
}

type entry struct {
	id       uint64
	observer Observer
}

// Notifier manages change subscriptions for one filter.
type Notifier struct {
	// Observers receiving every change, in subscription order
	global []entry

	// Observers for one item id
	byID map[string][]entry

	// Observers for one change type
	byType map[ChangeType][]entry

	nextID uint64
}

// New creates a new Notifier.
func New() *Notifier {
	return &Notifier{
		byID:   make(map[string][]entry),
		byType: make(map[ChangeType][]entry),
	}
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	e := n.newEntry(observer)
	n.global = append(n.global, e)
	return &Subscription{id: e.id, notifier: n}
}

// SubscribeID registers an observer for changes to one item or store.
func (n *Notifier) SubscribeID(id string, observer Observer) *Subscription {
	e := n.newEntry(observer)
	n.byID[id] = append(n.byID[id], e)
	return &Subscription{id: e.id, notifier: n}
}

// SubscribeType registers an observer for one kind of change.
func (n *Notifier) SubscribeType(ct ChangeType, observer Observer) *Subscription {
	e := n.newEntry(observer)
	n.byType[ct] = append(n.byType[ct], e)
	return &Subscription{id: e.id, notifier: n}
}

func (n *Notifier) newEntry(observer Observer) entry {
	id := n.nextID
	n.nextID++
	return entry{id: id, observer: observer}
}

// Notify sends a change to all matching observers.
// Reload events also reach every id-specific observer.
func (n *Notifier) Notify(change Change) {
	// Collect first so observers may (un)subscribe while being called
	observers := make([]Observer, 0, len(n.global))
	for _, e := range n.global {
		observers = append(observers, e.observer)
	}
	for _, e := range n.byType[change.Type] {
		observers = append(observers, e.observer)
	}
	if change.Type == ChangeReload {
		for _, entries := range n.byID {
			for _, e := range entries {
				observers = append(observers, e.observer)
			}
		}
	} else if change.ID != "" {
		for _, e := range n.byID[change.ID] {
			observers = append(observers, e.observer)
		}
	}

	for _, obs := range observers {
		obs(change)
	}
}

// NotifyValue is a convenience method for value changes.
func (n *Notifier) NotifyValue(filter, id string, oldValue, newValue value.Value) {
	n.Notify(Change{
		Filter:   filter,
		ID:       id,
		Type:     ChangeValue,
		OldValue: oldValue,
		NewValue: newValue,
	})
}

// NotifyActivation is a convenience method for activation flips.
func (n *Notifier) NotifyActivation(filter string, active bool) {
	n.Notify(Change{
		Filter:   filter,
		Type:     ChangeActivation,
		OldValue: value.Bool(!active),
		NewValue: value.Bool(active),
	})
}

// NotifyReload is a convenience method for reload events.
func (n *Notifier) NotifyReload(filter string) {
	n.Notify(Change{
		Filter: filter,
		Type:   ChangeReload,
	})
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	count := len(n.global)
	for _, entries := range n.byID {
		count += len(entries)
	}
	for _, entries := range n.byType {
		count += len(entries)
	}
	return count
}

// Reset drops every subscription.
func (n *Notifier) Reset() {
	n.global = nil
	clear(n.byID)
	clear(n.byType)
}

// unsubscribe removes an observer by ID.
func (n *Notifier) unsubscribe(id uint64) {
	n.global = removeEntry(n.global, id)

	for key, entries := range n.byID {
		if entries = removeEntry(entries, id); len(entries) == 0 {
			delete(n.byID, key)
		} else {
			n.byID[key] = entries
		}
	}
	for key, entries := range n.byType {
		if entries = removeEntry(entries, id); len(entries) == 0 {
			delete(n.byType, key)
		} else {
			n.byType[key] = entries
		}
	}
}

func removeEntry(entries []entry, id uint64) []entry {
	for i, e := range entries {
		if e.id == id {
			return append(entries[:i:i], entries[i+1:]...)
		}
	}
	return entries
}
