package explorer

import (
	"context"

	"github.com/stake-dashboard/internal/types"
)

// PageSource supplies pages of an address's coinbase transaction feed.
type PageSource interface {
	AccountTxPage(ctx context.Context, addr types.Address, page, limit int) (*TxPage, error)
}

// Walker drives sequential pagination over the newest-first feed. Each
// page's stopping decision depends on the previous page's content, so pages
// are never fetched in parallel.
type Walker struct {
	source    PageSource
	pageLimit int
	maxPages  int
}

// NewWalker creates a walker fetching pages of pageLimit records, capped at
// maxPages per walk. The cap bounds worst-case upstream load; it is the
// primary backpressure mechanism, not a timeout.
func NewWalker(source PageSource, pageLimit, maxPages int) *Walker {
	return &Walker{source: source, pageLimit: pageLimit, maxPages: maxPages}
}

// Walk fetches pages starting at 1 and hands each non-empty page to visit.
// It stops when:
//   - the oldest timestamp on the page is older than boundary (the feed is
//     newest-first, so everything after it is older still),
//   - a page comes back empty (an empty first page means "no data", not an
//     error),
//   - the feed reports the current page is the last, or
//   - maxPages pages have been fetched.
//
// Returns the number of pages fetched.
func (w *Walker) Walk(ctx context.Context, addr types.Address, boundary int64, visit func(*TxPage)) (int, error) {
	pages := 0
	for page := 1; page <= w.maxPages; page++ {
		p, err := w.source.AccountTxPage(ctx, addr, page, w.pageLimit)
		if err != nil {
			return pages, err
		}
		pages++

		if len(p.Records) == 0 {
			break
		}
		visit(p)

		if oldest, ok := oldestTimestamp(p); ok && oldest < boundary {
			break
		}
		if p.TotalPages > 0 && p.CurrentPage >= p.TotalPages {
			break
		}
	}
	return pages, nil
}

// oldestTimestamp returns the oldest parseable timestamp on a page. With
// newest-first ordering that is the last record carrying one.
func oldestTimestamp(p *TxPage) (int64, bool) {
	for i := len(p.Records) - 1; i >= 0; i-- {
		if ts, ok := p.Records[i].UnixSeconds(); ok {
			return ts, true
		}
	}
	return 0, false
}
