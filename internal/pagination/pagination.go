// Package pagination — нормализация параметров постраничной выдачи.
package pagination

// Limits — действующие лимиты выдачи (см. config.LimitsConfig).
type Limits struct {
	DefaultPage  int64
	DefaultLimit int64
	MaxLimit     int64
}

// Params — нормализованные параметры запроса страницы.
// Инварианты после Normalize: Page >= 1, 1 <= Limit <= MaxLimit.
type Params struct {
	Page  int64
	Limit int64
}

// Normalize приводит сырые page/limit к валидным значениям:
//   - page < 1 -> DefaultPage;
//   - limit < 1 -> DefaultLimit;
//   - limit > MaxLimit -> MaxLimit.
//
// Некорректные значения не являются ошибкой: клиент получает первую
// страницу с дефолтным размером.
func Normalize(page, limit int64, lim Limits) Params {
	p := Params{Page: page, Limit: limit}

	if p.Page < 1 {
		p.Page = lim.DefaultPage
	}

	if p.Limit < 1 {
		p.Limit = lim.DefaultLimit
	}

	if p.Limit > lim.MaxLimit {
		p.Limit = lim.MaxLimit
	}

	return p
}

// Skip — смещение для запроса к хранилищу.
func (p Params) Skip() int64 {
	return (p.Page - 1) * p.Limit
}

// Pages — количество страниц для total записей: ceil(total/limit).
// total == 0 -> 0 страниц.
func (p Params) Pages(total int64) int64 {
	if total <= 0 {
		return 0
	}

	return (total + p.Limit - 1) / p.Limit
}
