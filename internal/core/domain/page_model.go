package domain

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page selects a window of a listing. Numbers start from 1.
type Page struct {
	Number int
	Size   int
}

// NewPage falls back to the first page of DefaultPageSize items for
// non-positive values and caps the size to MaxPageSize.
func NewPage(number, size int) Page {
	if number <= 0 {
		number = 1
	}
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return Page{number, size}
}

// Bounds returns the indexes of the page's window over a list of the given
// length.
func (p Page) Bounds(length int) (from, to int) {
	from = min((p.Number-1)*p.Size, length)
	to = min(from+p.Size, length)
	return
}
