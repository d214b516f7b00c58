package model

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// PageResult is the envelope returned by list endpoints.
type PageResult[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

func NewPageResult[T any](items []T, p Page, total int) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	number := p.Number
	if number < 1 {
		number = 1
	}
	return PageResult[T]{Items: items, Page: number, PageSize: p.Size, Total: total}
}
