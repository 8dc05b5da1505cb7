package apitwin

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	httperrors "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/errors"
)

const maxBodyBytes = 1 << 20

// decodeJSON lee el body acotado a maxBodyBytes. Devuelve el AppError listo para escribir.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) *httperrors.AppError {
	return decodeJSONLimit(w, r, v, maxBodyBytes)
}

func decodeJSONLimit(w http.ResponseWriter, r *http.Request, v any, limit int64) *httperrors.AppError {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return httperrors.ErrBodyTooLarge
		}
		return httperrors.ErrInvalidJSON.WithDetail(err.Error())
	}
	return nil
}

func queryInt(q url.Values, key string) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, httperrors.ErrInvalidParameter.WithDetail(key + " must be a positive integer")
	}
	return n, nil
}

// endOfDay es el último instante de un día con la precisión del wire (ms).
const endOfDay = 24*time.Hour - time.Millisecond

// queryTime acepta RFC3339 o fecha sola (inputs type=date). Con endBound una
// fecha sola cubre el día entero.
func queryTime(q url.Values, key string, endBound bool) (*time.Time, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		if t, err = time.Parse(time.DateOnly, v); err != nil {
			return nil, httperrors.ErrInvalidParameter.WithDetail(key + " must be an ISO-8601 date")
		}
		if endBound {
			t = t.Add(endOfDay)
		}
	}
	t = t.UTC()
	return &t, nil
}

// emailFilters parsea los query params del listado (incluido "sortOder").
func emailFilters(q url.Values) (dto.EmailFilters, error) {
	var f dto.EmailFilters
	var err error
	if f.PageNumber, err = queryInt(q, "pageNumber"); err != nil {
		return f, err
	}
	if f.PageSize, err = queryInt(q, "pageSize"); err != nil {
		return f, err
	}
	if f.StartDate, err = queryTime(q, "startDate", false); err != nil {
		return f, err
	}
	if f.EndDate, err = queryTime(q, "endDate", true); err != nil {
		return f, err
	}
	if s := q.Get("emailStatus"); s != "" {
		st, perr := dto.ParseEmailStatus(s)
		if perr != nil {
			return f, httperrors.ErrInvalidParameter.WithDetail(perr.Error())
		}
		f.EmailStatus = st
	}
	f.SortOrder = q.Get(api.SortOrderParam)
	f.ToEmailContains = q.Get("toEmailContains")
	f.SubjectContains = q.Get("subjectContains")
	return f, nil
}

func analyticsParams(q url.Values) (dto.AnalyticsParams, error) {
	var p dto.AnalyticsParams
	var err error
	if p.StartDate, err = queryTime(q, "startDate", false); err != nil {
		return p, err
	}
	if p.EndDate, err = queryTime(q, "endDate", true); err != nil {
		return p, err
	}
	if p.RecentLimit, err = queryInt(q, "recentLimit"); err != nil {
		return p, err
	}
	switch g := strings.ToLower(q.Get("granularity")); g {
	case "", "day", "week", "month":
		p.Granularity = g
	default:
		return p, httperrors.ErrInvalidParameter.WithDetail("granularity must be day, week or month")
	}
	return p, nil
}
