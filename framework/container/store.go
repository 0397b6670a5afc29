package container

import "sync"

// Store is the concurrent instance map behind a Container. Reads and writes
// need no external locking; a Register racing a Get on the same descriptor is
// only guaranteed to become visible eventually.
type Store struct {
	entries sync.Map // Descriptor → any
}

// NewStore creates an empty store.
func NewStore() *Store { return &Store{} }

// Register stores instance under its dynamic type with no qualifier,
// replacing any previous entry. A nil instance is ignored.
//
//	store.Register(&Mailer{Host: "smtp.local"})
//	m, ok := container.Get[*Mailer](store)
func (s *Store) Register(instance any) {
	key := KeyOfValue(instance)
	if key.IsZero() {
		return
	}
	s.entries.Store(Descriptor{Type: key}, instance)
}

// RegisterAs stores instance under an explicit type key, typically an
// interface the instance implements.
func (s *Store) RegisterAs(key TypeKey, instance any) {
	if key.IsZero() || instance == nil {
		return
	}
	s.entries.Store(Descriptor{Type: key}, instance)
}

// RegisterQualified stores instance under its dynamic type and qualifier.
func (s *Store) RegisterQualified(qualifier string, instance any) {
	key := KeyOfValue(instance)
	if key.IsZero() {
		return
	}
	s.entries.Store(Descriptor{Type: key, Qualifier: qualifier}, instance)
}

func (s *Store) put(desc Descriptor, instance any) {
	s.entries.Store(desc, instance)
}

// Lookup returns the instance stored for desc.
func (s *Store) Lookup(desc Descriptor) (any, bool) {
	return s.entries.Load(desc)
}

// GetByType returns the unqualified instance stored for key.
func (s *Store) GetByType(key TypeKey) (any, bool) {
	return s.entries.Load(Descriptor{Type: key})
}

// Has reports whether desc holds an instance.
func (s *Store) Has(desc Descriptor) bool {
	_, ok := s.entries.Load(desc)
	return ok
}

// Len counts stored instances. It walks the map, so do not call it in hot paths.
func (s *Store) Len() int {
	n := 0
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Descriptors returns every occupied slot in unspecified order.
func (s *Store) Descriptors() []Descriptor {
	var out []Descriptor
	s.entries.Range(func(k, _ any) bool {
		out = append(out, k.(Descriptor))
		return true
	})
	return out
}

// ── Typed retrieval ───────────────────────────────────────────────────────────

// ComponentFactory is the read side shared by Store and Container.
type ComponentFactory interface {
	Lookup(desc Descriptor) (any, bool)
}

// Get returns the unqualified instance of type T. ok is false when nothing is
// stored or the stored value is not a T; it never panics.
//
//	repo, ok := container.Get[*UserRepository](c)
func Get[T any](f ComponentFactory) (T, bool) {
	return GetQualified[T](f, "")
}

// GetQualified is Get for a qualified slot.
func GetQualified[T any](f ComponentFactory, qualifier string) (T, bool) {
	var zero T
	raw, ok := f.Lookup(Descriptor{Type: KeyOf[T](), Qualifier: qualifier})
	if !ok {
		return zero, false
	}
	typed, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
