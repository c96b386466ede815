// Package paginate splits ordered collections into fixed-size pages.
//
// Page numbers are 1-based. A missing, non-numeric or non-positive page
// number selects the first page; a number past the end selects the last one.
package paginate

import (
	"errors"
	"strconv"
	"strings"
)

// PerPage is the page size used by every post listing.
const PerPage = 10

type Paginator struct {
	Count   int
	PerPage int
}

func New(count, perPage int) Paginator {
	if perPage < 1 {
		perPage = PerPage
	}
	if count < 0 {
		count = 0
	}
	return Paginator{Count: count, PerPage: perPage}
}

// NumPages is never less than 1: an empty collection has one empty page.
func (p Paginator) NumPages() int {
	if p.Count == 0 {
		return 1
	}
	return (p.Count + p.PerPage - 1) / p.PerPage
}

// Page resolves a raw ?page= value into a window over the collection.
func (p Paginator) Page(raw string) Window {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	// out-of-range input comes back clamped to the int bounds
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		n = 1
	}
	if n < 1 {
		n = 1
	}
	if last := p.NumPages(); n > last {
		n = last
	}
	return Window{Number: n, NumPages: p.NumPages(), Count: p.Count, PerPage: p.PerPage}
}

// Window describes one page without holding its items.
type Window struct {
	Number   int
	NumPages int
	Count    int
	PerPage  int
}

func (w Window) Offset() int { return (w.Number - 1) * w.PerPage }

// Limit is the number of items on this page.
func (w Window) Limit() int {
	n := w.Count - w.Offset()
	if n > w.PerPage {
		n = w.PerPage
	}
	if n < 0 {
		n = 0
	}
	return n
}

func (w Window) HasPrevious() bool { return w.Number > 1 }
func (w Window) HasNext() bool     { return w.Number < w.NumPages }
func (w Window) HasOtherPages() bool {
	return w.HasPrevious() || w.HasNext()
}
func (w Window) PreviousNumber() int { return w.Number - 1 }
func (w Window) NextNumber() int     { return w.Number + 1 }

// StartIndex is the 1-based position of the first item on the page in the
// whole collection, or 0 when the collection is empty.
func (w Window) StartIndex() int {
	if w.Count == 0 {
		return 0
	}
	return w.Offset() + 1
}

// EndIndex is the 1-based position of the last item on the page.
func (w Window) EndIndex() int {
	if w.Count == 0 {
		return 0
	}
	return w.Offset() + w.Limit()
}

// Pages lists every page number, for templates.
func (w Window) Pages() []int {
	out := make([]int, w.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

type Page[T any] struct {
	Window
	Items []T
}

func (p Page[T]) Len() int { return len(p.Items) }

// Slice pages an in-memory collection that is already in display order.
func Slice[T any](items []T, perPage int, raw string) Page[T] {
	w := New(len(items), perPage).Page(raw)
	off := w.Offset()
	return Page[T]{Window: w, Items: items[off : off+w.Limit()]}
}

// FromWindow pairs items fetched with w.Offset/w.Limit with their window.
func FromWindow[T any](w Window, items []T) Page[T] {
	return Page[T]{Window: w, Items: items}
}
