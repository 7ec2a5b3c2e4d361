package http

import "context"

// PageFetcher fetches one page of items.
// Returns the items, whether there are more pages, and any error.
// page counts from zero for each new iterator.
type PageFetcher[T any] func(ctx context.Context, page int) (items []T, hasMore bool, err error)

// PageIterator provides lazy iteration over paginated API results.
// Pages are requested one at a time, only when the caller asks for them.
// An iterator cannot be rewound; request a new one to start from the
// first page again.
type PageIterator[T any] struct {
	fetch   PageFetcher[T]
	page    int
	buffer  []T
	done    bool
	err     error
	fetched int // Total items handed out so far
}

// NewPageIterator creates a new iterator with the given fetch function.
func NewPageIterator[T any](fetch PageFetcher[T]) *PageIterator[T] {
	return &PageIterator[T]{fetch: fetch}
}

// SlicePages returns an iterator over pre-built pages. Each inner slice
// is returned as one page. Useful for sources that already hold results.
func SlicePages[T any](pages ...[]T) *PageIterator[T] {
	return NewPageIterator(func(_ context.Context, page int) ([]T, bool, error) {
		if page >= len(pages) {
			return nil, false, nil
		}
		return pages[page], page < len(pages)-1, nil
	})
}

// NextPage returns the next whole page.
// When iteration is complete, returns (nil, false, nil).
// Items buffered by an earlier call to Next are returned first as a
// partial page.
func (p *PageIterator[T]) NextPage(ctx context.Context) ([]T, bool, error) {
	if p.err != nil {
		return nil, false, p.err
	}

	if len(p.buffer) > 0 {
		items := p.buffer
		p.buffer = nil
		p.fetched += len(items)
		return items, true, nil
	}

	if p.done {
		return nil, false, nil
	}

	if err := ctx.Err(); err != nil {
		p.err = err
		return nil, false, err
	}

	items, hasMore, err := p.fetch(ctx, p.page)
	if err != nil {
		p.err = err
		return nil, false, err
	}
	p.page++
	p.done = !hasMore
	p.fetched += len(items)

	// An empty final page still counts as a page so callers observe
	// every request that was made.
	return items, true, nil
}

// Next returns the next item from the iterator.
// When iteration is complete, returns (zero, false, nil).
func (p *PageIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	for len(p.buffer) == 0 {
		if p.err != nil {
			return zero, false, p.err
		}
		if p.done {
			return zero, false, nil
		}
		items, hasMore, err := p.fetch(ctx, p.page)
		if err != nil {
			p.err = err
			return zero, false, err
		}
		p.buffer = items
		p.done = !hasMore
		p.page++
	}

	item := p.buffer[0]
	p.buffer = p.buffer[1:]
	p.fetched++

	return item, true, nil
}

// All collects all items from the iterator into a slice.
// This will fetch all pages and may be slow for large result sets.
func (p *PageIterator[T]) All(ctx context.Context) ([]T, error) {
	var all []T
	err := p.ForEach(ctx, func(item T) error {
		all = append(all, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// ForEach calls fn for each item in the iterator.
// If fn returns an error, iteration stops and that error is returned.
func (p *PageIterator[T]) ForEach(ctx context.Context, fn func(T) error) error {
	for {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(item); err != nil {
			return err
		}
	}
}

// Pages returns the number of pages requested so far.
func (p *PageIterator[T]) Pages() int {
	return p.page
}

// Fetched returns the number of items returned so far.
func (p *PageIterator[T]) Fetched() int {
	return p.fetched
}
