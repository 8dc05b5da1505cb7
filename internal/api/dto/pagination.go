package dto

// PaginatedList es el sobre genérico de los endpoints de listado.
type PaginatedList[T any] struct {
	Items           []T  `json:"items"`
	PageNumber      int  `json:"pageNumber"`
	PageSize        int  `json:"pageSize"`
	TotalCount      int  `json:"totalCount"`
	TotalPages      int  `json:"totalPages"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// NewPage arma la página pageNumber (1-based) de items ya filtrados y ordenados.
func NewPage[T any](all []T, pageNumber, pageSize int) PaginatedList[T] {
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageNumber <= 0 {
		pageNumber = 1
	}
	total := len(all)
	pages := (total + pageSize - 1) / pageSize
	start := (pageNumber - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	items := make([]T, end-start)
	copy(items, all[start:end])
	return PaginatedList[T]{
		Items:           items,
		PageNumber:      pageNumber,
		PageSize:        pageSize,
		TotalCount:      total,
		TotalPages:      pages,
		HasPreviousPage: pageNumber > 1,
		HasNextPage:     pageNumber < pages,
	}
}

// EmptyPage es lo que ve la UI cuando el listado falla y degrada.
func EmptyPage[T any](pageNumber, pageSize int) PaginatedList[T] {
	return NewPage[T](nil, pageNumber, pageSize)
}
