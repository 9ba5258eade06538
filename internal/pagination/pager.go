// Package pagination реализует клиентскую пагинацию поверх материализованного списка:
// окно страницы, безопасная навигация и clamp индекса при любом изменении данных.
package pagination

// Pager хранит список и индекс текущей страницы.
// Не потокобезопасен: один Pager принадлежит одному экрану (одному запросу).
type Pager[T any] struct {
	items     []T
	pageSize  int
	pageIndex int
}

// New создаёт Pager. pageSize <= 0 считается ошибкой вызывающего кода и заменяется на 1,
// startPage приводится к допустимому диапазону.
func New[T any](items []T, pageSize, startPage int) *Pager[T] {
	if pageSize <= 0 {
		pageSize = 1
	}
	p := &Pager[T]{
		items:    items,
		pageSize: pageSize,
	}
	p.GoToPage(startPage)
	return p
}

// PageCount возвращает ceil(len(items)/pageSize): 0 для пустого списка, 1 если всё влезает в одну страницу.
// При PageCount() <= 1 контролы пагинации скрываются целиком.
func (p *Pager[T]) PageCount() int {
	return pageCount(len(p.items), p.pageSize)
}

// PageIndex возвращает индекс текущей страницы (с нуля), всегда в [0, max(PageCount()-1, 0)]
func (p *Pager[T]) PageIndex() int {
	p.clamp()
	return p.pageIndex
}

// PageSize возвращает размер страницы
func (p *Pager[T]) PageSize() int {
	return p.pageSize
}

// Len возвращает общее количество элементов
func (p *Pager[T]) Len() int {
	return len(p.items)
}

// CurrentPageItems возвращает срез [pageIndex*pageSize, (pageIndex+1)*pageSize).
// Если список уменьшился и индекс вышел за границы, индекс сначала прижимается вниз.
func (p *Pager[T]) CurrentPageItems() []T {
	p.clamp()
	if len(p.items) == 0 {
		return []T{}
	}
	start := p.pageIndex * p.pageSize
	end := min(start+p.pageSize, len(p.items))
	return p.items[start:end:end]
}

// GoToPage переходит на страницу n, прижимая n к [0, PageCount()-1]. Никогда не возвращает ошибку:
// вызывается из обработчиков кнопок с вычисленными индексами.
func (p *Pager[T]) GoToPage(n int) {
	p.pageIndex = clampIndex(n, p.PageCount())
}

// NextPage переходит на следующую страницу; на последней остаётся на месте
func (p *Pager[T]) NextPage() {
	p.GoToPage(p.PageIndex() + 1)
}

// PreviousPage переходит на предыдущую страницу; на первой остаётся на месте
func (p *Pager[T]) PreviousPage() {
	p.GoToPage(p.PageIndex() - 1)
}

// SetItems заменяет список (фильтр, обновление данных) и сохраняет индекс, если он остался валидным
func (p *Pager[T]) SetItems(items []T) {
	p.items = items
	p.clamp()
}

func (p *Pager[T]) clamp() {
	p.pageIndex = clampIndex(p.pageIndex, p.PageCount())
}

func pageCount(n, pageSize int) int {
	if n <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

func clampIndex(n, count int) int {
	last := max(count-1, 0)
	switch {
	case n < 0:
		return 0
	case n > last:
		return last
	default:
		return n
	}
}
