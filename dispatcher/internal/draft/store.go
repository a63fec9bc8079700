// Package draft holds the in-memory staging area for content awaiting
// dispatch. The store lives only for the session; nothing here is persisted.
package draft

import (
	"fmt"

	"github.com/drafthook/drafthook/shared/domain"
)

// Draft is the ordered queue of items staged for one destination.
type Draft struct {
	Name  string               `json:"name"`
	Items []domain.ContentItem `json:"items"`
}

// Store maps destination URLs to drafts. Destinations iterate in insertion
// order, which is the order dispatch will walk them in.
type Store struct {
	order  []string
	drafts map[string]*Draft
}

func NewStore() *Store {
	return &Store{drafts: make(map[string]*Draft)}
}

// Add appends an item to the destination's draft, creating the draft if the
// destination is new.
func (s *Store) Add(url, name string, item domain.ContentItem) {
	d, ok := s.drafts[url]
	if !ok {
		d = &Draft{Name: name}
		s.drafts[url] = d
		s.order = append(s.order, url)
	}
	d.Items = append(d.Items, item)
}

func (s *Store) Get(url string) (*Draft, bool) {
	d, ok := s.drafts[url]
	return d, ok
}

// Update replaces the item at index idx for the destination.
func (s *Store) Update(url string, idx int, item domain.ContentItem) error {
	d, err := s.draftAt(url, idx)
	if err != nil {
		return err
	}
	d.Items[idx] = item
	return nil
}

// Remove deletes the item at index idx. A destination whose item list becomes
// empty is dropped from the store entirely.
func (s *Store) Remove(url string, idx int) error {
	d, err := s.draftAt(url, idx)
	if err != nil {
		return err
	}
	d.Items = append(d.Items[:idx], d.Items[idx+1:]...)
	if len(d.Items) == 0 {
		s.remove(url)
	}
	return nil
}

// Move reorders an item within a destination's draft, shifting the items in
// between. Mirrors a drag-and-drop from position `from` to position `to`.
func (s *Store) Move(url string, from, to int) error {
	d, err := s.draftAt(url, from)
	if err != nil {
		return err
	}
	if to < 0 || to >= len(d.Items) {
		return fmt.Errorf("destination %q has no item at index %d", url, to)
	}
	item := d.Items[from]
	d.Items = append(d.Items[:from], d.Items[from+1:]...)
	d.Items = append(d.Items[:to], append([]domain.ContentItem{item}, d.Items[to:]...)...)
	return nil
}

// RemoveDestination drops a destination and its whole draft.
func (s *Store) RemoveDestination(url string) {
	if _, ok := s.drafts[url]; ok {
		s.remove(url)
	}
}

// Destinations returns destination URLs in insertion order.
func (s *Store) Destinations() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len is the number of destinations with staged items.
func (s *Store) Len() int {
	return len(s.order)
}

// TotalItems counts staged items across all destinations.
func (s *Store) TotalItems() int {
	n := 0
	for _, d := range s.drafts {
		n += len(d.Items)
	}
	return n
}

// Clear empties the store. Called after a fully successful session.
func (s *Store) Clear() {
	s.order = nil
	s.drafts = make(map[string]*Draft)
}

func (s *Store) draftAt(url string, idx int) (*Draft, error) {
	d, ok := s.drafts[url]
	if !ok {
		return nil, fmt.Errorf("unknown destination %q", url)
	}
	if idx < 0 || idx >= len(d.Items) {
		return nil, fmt.Errorf("destination %q has no item at index %d", url, idx)
	}
	return d, nil
}

func (s *Store) remove(url string) {
	delete(s.drafts, url)
	for i, u := range s.order {
		if u == url {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
