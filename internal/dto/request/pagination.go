package request

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// PageQuery is a 1-based listing window taken from ?page=&per_page=.
type PageQuery struct {
	Page    int `json:"page" validate:"min=1"`
	PerPage int `json:"per_page" validate:"min=1,max=100"`
}

// Normalize clamps out-of-range values in place.
func (p *PageQuery) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	p.PerPage = p.Limit()
}

func (p PageQuery) Limit() int {
	switch {
	case p.PerPage < 1:
		return DefaultPerPage
	case p.PerPage > MaxPerPage:
		return MaxPerPage
	}
	return p.PerPage
}

func (p PageQuery) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}
