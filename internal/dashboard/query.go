package dashboard

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
)

// Los loaders leen la query string del navegador de forma tolerante: un valor
// inválido se ignora y queda el default.

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func lenientInt(q url.Values, key string, def, lo, hi int) int {
	n, err := strconv.Atoi(strings.TrimSpace(q.Get(key)))
	if err != nil || n < lo || n > hi {
		return def
	}
	return n
}

func lenientTime(q url.Values, key string, endBound bool) *time.Time {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		if t, err = time.Parse(time.DateOnly, v); err != nil {
			return nil
		}
		// fecha sola como fin de rango: el día entero (precisión ms del wire)
		if endBound {
			t = t.Add(24*time.Hour - time.Millisecond)
		}
	}
	t = t.UTC()
	return &t
}

// ParseEmailFilters arma los filtros del listado de emails. Acepta "sortOrder"
// y también la key que usa el API.
func ParseEmailFilters(q url.Values) dto.EmailFilters {
	f := dto.EmailFilters{
		PageNumber:      lenientInt(q, "page", 1, 1, 1<<20),
		PageSize:        lenientInt(q, "pageSize", defaultPageSize, 1, maxPageSize),
		SortOrder:       "desc",
		ToEmailContains: strings.TrimSpace(q.Get("to")),
		SubjectContains: strings.TrimSpace(q.Get("subject")),
		StartDate:       lenientTime(q, "startDate", false),
		EndDate:         lenientTime(q, "endDate", true),
	}
	if q.Has("pageNumber") {
		f.PageNumber = lenientInt(q, "pageNumber", f.PageNumber, 1, 1<<20)
	}
	order := q.Get("sortOrder")
	if order == "" {
		order = q.Get(api.SortOrderParam)
	}
	if o := strings.ToLower(order); o == "asc" || o == "desc" {
		f.SortOrder = o
	}
	if st, err := dto.ParseEmailStatus(q.Get("status")); err == nil {
		f.EmailStatus = st
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		f.StartDate, f.EndDate = f.EndDate, f.StartDate
	}
	return f
}

// ParseAnalyticsParams: sin fechas, el API usa su período por defecto.
func ParseAnalyticsParams(q url.Values) *dto.AnalyticsParams {
	p := &dto.AnalyticsParams{
		StartDate:   lenientTime(q, "startDate", false),
		EndDate:     lenientTime(q, "endDate", true),
		RecentLimit: lenientInt(q, "recentLimit", 0, 1, 100),
	}
	switch g := strings.ToLower(q.Get("granularity")); g {
	case "day", "week", "month":
		p.Granularity = g
	}
	return p
}
