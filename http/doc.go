// Package http provides shared HTTP plumbing for CI API sources.
//
// Core types:
//   - PageIterator: lazy, page-at-a-time iteration over paginated listings
//   - Client: retrying GET client for archive storage URLs
//   - APIError: status-aware error with sentinel unwrapping
//
// Pagination example:
//
//	it := http.NewPageIterator(func(ctx context.Context, page int) ([]Item, bool, error) {
//	    return fetchPage(ctx, page)
//	})
//	for {
//	    items, ok, err := it.NextPage(ctx)
//	    if err != nil || !ok {
//	        break
//	    }
//	    process(items)
//	}
package http
