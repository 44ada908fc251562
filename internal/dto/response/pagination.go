package response

// PageResponse wraps one page of a listing with its position in the whole.
type PageResponse[T any] struct {
	Data       []T      `json:"data"`
	Pagination PageMeta `json:"pagination"`
}

type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

func NewPageResponse[T any](data []T, page, perPage int, total int64) *PageResponse[T] {
	if data == nil {
		data = []T{}
	}
	meta := PageMeta{Total: total, Page: page, PerPage: perPage}
	if perPage > 0 && total > 0 {
		meta.TotalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return &PageResponse[T]{Data: data, Pagination: meta}
}
