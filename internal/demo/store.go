package demo

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hanpama/fieldgraph/internal/annotation"
)

// Store is an in-memory catalogue safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	authors []*Author
	books   []*Book
	reviews map[annotation.ID][]*Review
	seq     int
}

func ptr[T any](v T) *T { return &v }

// NewStore returns a store seeded with a few authors and books.
func NewStore() *Store {
	return &Store{
		authors: []*Author{
			{Node: Node{"author-1"}, Name: "Ursula K. Le Guin", Born: 1929},
			{Node: Node{"author-2"}, Name: "Anonymous"},
		},
		books: []*Book{
			{
				Node: Node{"book-1"}, Title: "A Wizard of Earthsea", Tags: []string{"fantasy"},
				Price: 9.5, Cost: annotation.Private[float64]{Value: 4}, AuthorID: "author-1",
			},
			{
				Node: Node{"book-2"}, Title: "The Left Hand of Darkness", Subtitle: ptr("A novel"),
				Tags: []string{"scifi"}, Price: 12, AuthorID: "author-1",
			},
			{
				Node: Node{"book-3"}, Title: "The Dispossessed", Tags: []string{"scifi", "utopia"},
				Price: 11, AuthorID: "author-1",
			},
			{
				Node: Node{"book-4"}, Title: "Beowulf", Tags: []string{"epic"},
				Price: 7, AuthorID: "author-2",
			},
		},
		reviews: map[annotation.ID][]*Review{},
	}
}

// BookQuery selects books. Empty fields match everything.
type BookQuery struct {
	TitlePrefix string
	Tag         string
	AuthorID    annotation.ID
	First       int
}

func (s *Store) Books(q BookQuery) []*Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Book
	for _, b := range s.books {
		if q.First > 0 && len(out) == q.First {
			break
		}
		if q.TitlePrefix != "" && !strings.HasPrefix(b.Title, q.TitlePrefix) {
			continue
		}
		if q.Tag != "" && !slices.Contains(b.Tags, q.Tag) {
			continue
		}
		if q.AuthorID != "" && b.AuthorID != q.AuthorID {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (s *Store) Book(id annotation.ID) (*Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.books, func(b *Book) bool { return b.ID == id })
	if i < 0 {
		return nil, false
	}
	return s.books[i], true
}

func (s *Store) Authors() []*Author {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.authors)
}

func (s *Store) Author(id annotation.ID) (*Author, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.authors, func(a *Author) bool { return a.ID == id })
	if i < 0 {
		return nil, false
	}
	return s.authors[i], true
}

func (s *Store) Reviews(bookID annotation.ID) []*Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.reviews[bookID])
}

func (s *Store) Review(id annotation.ID) (*Review, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rs := range s.reviews {
		if i := slices.IndexFunc(rs, func(r *Review) bool { return r.ID == id }); i >= 0 {
			return rs[i], true
		}
	}
	return nil, false
}

// AddReview stores a review of an existing book. Stars range from 1 to 5.
func (s *Store) AddReview(bookID annotation.ID, stars int, text *string) (*Review, error) {
	if stars < 1 || stars > 5 {
		return nil, fmt.Errorf("stars must be between 1 and 5, got %d", stars)
	}
	if _, ok := s.Book(bookID); !ok {
		return nil, fmt.Errorf("book %s does not exist", bookID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	r := &Review{Node: Node{annotation.ID(fmt.Sprintf("review-%d", s.seq))}, Stars: stars, Text: text}
	s.reviews[bookID] = append(s.reviews[bookID], r)
	return r, nil
}
