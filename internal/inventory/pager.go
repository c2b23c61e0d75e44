package inventory

// DefaultPageSize is the number of rows shown per table page.
const DefaultPageSize = 6

// Pager tracks the current page of an in-memory table. Pages are 1-based.
type Pager struct {
	Size int
	Page int
}

// NewPager returns a pager on page 1. A non-positive size falls back to DefaultPageSize.
func NewPager(size int) *Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Pager{Size: size, Page: 1}
}

// PageCount returns ceil(n/size).
func (p *Pager) PageCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + p.Size - 1) / p.Size
}

// Bounds returns the half-open index range of the current page within n rows.
func (p *Pager) Bounds(n int) (lo, hi int) {
	lo = (p.Page - 1) * p.Size
	if lo > n {
		lo = n
	}
	hi = lo + p.Size
	if hi > n {
		hi = n
	}
	return lo, hi
}

// Go moves to page, clamped to [1, PageCount(n)].
func (p *Pager) Go(page, n int) {
	last := p.PageCount(n)
	if page > last {
		page = last
	}
	if page < 1 {
		page = 1
	}
	p.Page = page
}

// Next advances one page without passing the last one.
func (p *Pager) Next(n int) { p.Go(p.Page+1, n) }

// Prev goes back one page without passing the first one.
func (p *Pager) Prev(n int) { p.Go(p.Page-1, n) }

// AfterDelete re-clamps the current page once the list shrank to n rows,
// so deleting the last row of the last page lands on the new last page.
func (p *Pager) AfterDelete(n int) {
	if last := p.PageCount(n); p.Page > last && last > 0 {
		p.Page = last
		return
	}
	if lo, hi := p.Bounds(n); p.Page > 1 && lo == hi {
		p.Page--
	}
}

// Paginate returns the rows of the current page.
func Paginate[T any](p *Pager, rows []T) []T {
	lo, hi := p.Bounds(len(rows))
	return rows[lo:hi]
}
