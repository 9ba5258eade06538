package pagination

// Page представляет сериализуемый снимок текущей страницы для ответа API
type Page[T any] struct {
	Items       []T  `json:"items"`
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	PageCount   int  `json:"page_count"`
	TotalItems  int  `json:"total_items"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// Snapshot возвращает снимок текущей страницы
func (p *Pager[T]) Snapshot() Page[T] {
	items := p.CurrentPageItems()
	index := p.PageIndex()
	count := p.PageCount()
	return Page[T]{
		Items:       items,
		Page:        index,
		PageSize:    p.pageSize,
		PageCount:   count,
		TotalItems:  len(p.items),
		HasNext:     index < count-1,
		HasPrevious: index > 0,
	}
}

// Window возвращает одну страницу для stateless HTTP листингов (New + Snapshot)
func Window[T any](items []T, pageSize, page int) Page[T] {
	return New(items, pageSize, page).Snapshot()
}

// Map преобразует элементы страницы, сохраняя метаданные пагинации
func Map[T, R any](p Page[T], fn func(T) R) Page[R] {
	out := make([]R, 0, len(p.Items))
	for _, item := range p.Items {
		out = append(out, fn(item))
	}
	return Page[R]{
		Items:       out,
		Page:        p.Page,
		PageSize:    p.PageSize,
		PageCount:   p.PageCount,
		TotalItems:  p.TotalItems,
		HasNext:     p.HasNext,
		HasPrevious: p.HasPrevious,
	}
}
