package tags

// Option appends or overrides one entry of a Builder's item list, mirroring
// the functional-option shape of the teacher's dicos.Option/WithElement.
type Option func(*Builder)

// Builder assembles an ordered tag-item list at configuration time. It is
// deliberately dumb: it does not validate values against their VR (that
// happens once, when the list is resolved into a runtime Config — see
// jpegxt.FromTagItems) so that the discovery list itself stays a
// cheap, order-preserving accumulator, per Design Note 9.
type Builder struct {
	items []Item
	index map[Tag]int
}

// NewBuilder creates an empty tag-item list, optionally seeded with
// options applied in order.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{index: make(map[Tag]int)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// With appends or replaces the item for t, keeping list order stable (a
// later With for the same Tag overwrites the earlier value in place,
// matching how a later DQT/DHT marker replaces an earlier table slot by
// reference — see spec §5 "Shared resources").
func With(t Tag, value any) Option {
	return func(b *Builder) {
		item := New(t, value)
		if i, ok := b.index[t]; ok {
			b.items[i] = item
			return
		}
		b.index[t] = len(b.items)
		b.items = append(b.items, item)
	}
}

// Items returns the resolved ordered tag-item list.
func (b *Builder) Items() []Item {
	out := make([]Item, len(b.items))
	copy(out, b.items)
	return out
}

// Get returns the item stored for t, if any.
func (b *Builder) Get(t Tag) (Item, bool) {
	i, ok := b.index[t]
	if !ok {
		return Item{}, false
	}
	return b.items[i], true
}
