package paginator

const DefaultLimit = 25

type PaginatedResponse[T any] struct {
	Items       []T      `json:"items"`
	CurrentPage int      `json:"current_page"`
	TotalPages  int      `json:"total_pages"`
	PrevPage    *int     `json:"prev_page"`
	NextPage    *int     `json:"next_page"`
	TotalItems  int      `json:"total_items"`
	Limit       int      `json:"limit"`
	Controls    Controls `json:"controls"`
}

// Controls is the enabled state of the navigation buttons.
type Controls struct {
	First bool `json:"first"`
	Prev  bool `json:"prev"`
	Next  bool `json:"next"`
	Last  bool `json:"last"`
}

// The page navigation buttons.
type Move int

const (
	First Move = iota + 1
	Prev
	Next
	Last
)

// TotalPages is never below one, an empty set still has an (empty) first page.
func TotalPages(totalItems, limit int) int {
	if limit < 1 {
		limit = DefaultLimit
	}
	pages := (totalItems + limit - 1) / limit
	if pages < 1 {
		return 1
	}
	return pages
}

// Clamp pulls an out of range page back into [1, totalPages].
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Navigate turns a button press into a page number. The result still goes
// through Clamp when the page is sliced.
func Navigate(move Move, page, totalPages int) int {
	switch move {
	case First:
		return 1
	case Prev:
		return page - 1
	case Next:
		return page + 1
	case Last:
		return totalPages
	}
	return page
}

// Paginate slices items into the requested page. Requests past either end
// are corrected silently rather than failing.
func Paginate[T any](items []T, page, limit int) PaginatedResponse[T] {
	if limit < 1 {
		limit = DefaultLimit
	}

	totalItems := len(items)
	totalPages := TotalPages(totalItems, limit)
	page = Clamp(page, totalPages)

	start := (page - 1) * limit
	end := min(start+limit, totalItems)

	pageItems := make([]T, 0, end-start)
	pageItems = append(pageItems, items[start:end]...)

	var prevPage, nextPage *int
	if page > 1 {
		p := page - 1
		prevPage = &p
	}
	if page < totalPages {
		p := page + 1
		nextPage = &p
	}

	return PaginatedResponse[T]{
		Items:       pageItems,
		CurrentPage: page,
		TotalPages:  totalPages,
		PrevPage:    prevPage,
		NextPage:    nextPage,
		TotalItems:  totalItems,
		Limit:       limit,
		Controls: Controls{
			First: page > 1,
			Prev:  page > 1,
			Next:  page < totalPages,
			Last:  page < totalPages,
		},
	}
}
