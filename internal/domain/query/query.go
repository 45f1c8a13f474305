package query

// SortOrder is the direction of a sort.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Pagination is limit/offset paging plus a single sort column. SortBy must
// be validated against the caller's allow-list before it reaches a repository.
type Pagination struct {
	Limit  int
	Offset int
	SortBy string
	Order  SortOrder
}

// Normalize clamps limit/offset and defaults the order.
func (p *Pagination) Normalize() {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Order != OrderAsc {
		p.Order = OrderDesc
	}
}

// Page is a slice of results with the total matching count.
type Page[T any] struct {
	Items  []T
	Total  int64
	Limit  int
	Offset int
}

// HasMore reports whether more results exist after this page.
func (p Page[T]) HasMore() bool {
	return int64(p.Offset+len(p.Items)) < p.Total
}
