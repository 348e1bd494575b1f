package bridge

import (
	"slices"

	"github.com/nerrad567/mpx-bridge/internal/pdu"
)

// Message is one outbound value. Topic is relative to the configured prefix
// and doubles as the snapshot key.
type Message struct {
	Topic    string
	Payload  string
	Retained bool
}

// CacheKind tags the contents of a Cache.
type CacheKind uint8

// Cache variants.
const (
	CacheEmpty CacheKind = iota
	CacheValues
	CacheEvents
)

// Cache is the last snapshot a task produced. The zero value is Empty,
// meaning the task has never polled successfully. Once populated a cache
// keeps its kind.
type Cache struct {
	kind   CacheKind
	values []Message
	events []pdu.Event
}

// Kind returns the cache variant.
func (c *Cache) Kind() CacheKind {
	return c.kind
}

// Diff returns the entries of next worth publishing. Against an Empty (or
// event) cache that is all of next. Against a value snapshot it is every
// entry whose same-topic value changed; entries with no counterpart in the
// snapshot are dropped. Diff does not modify the cache.
func (c *Cache) Diff(next []Message) []Message {
	if c.kind != CacheValues {
		return slices.Clone(next)
	}

	var out []Message
	for _, n := range next {
		for _, old := range c.values {
			if old.Topic != n.Topic {
				continue
			}
			if old.Payload != n.Payload {
				out = append(out, n)
			}
			break
		}
	}
	return out
}

// Update diffs next against the cache and then stores all of next as the
// new baseline.
func (c *Cache) Update(next []Message) []Message {
	if c.kind == CacheEvents {
		panic("bridge: value snapshot stored in event cache")
	}
	out := c.Diff(next)
	c.kind = CacheValues
	c.values = slices.Clone(next)
	return out
}

// SameEvents reports whether events equals the cached event list element by
// element, in order. An Empty cache never matches.
func (c *Cache) SameEvents(events []pdu.Event) bool {
	return c.kind == CacheEvents && slices.Equal(c.events, events)
}

// StoreEvents replaces the cached event list.
func (c *Cache) StoreEvents(events []pdu.Event) {
	if c.kind == CacheValues {
		panic("bridge: event list stored in value cache")
	}
	c.kind = CacheEvents
	c.events = slices.Clone(events)
	if c.events == nil {
		c.events = []pdu.Event{}
	}
}
