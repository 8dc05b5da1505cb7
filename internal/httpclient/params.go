package httpclient

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"time"
)

// Params son los query params de un request. Valores nil (o punteros nil) se
// omiten; el resto se convierte a string. Los slices agregan un valor por elemento.
type Params map[string]any

// isoLayout replica Date.toISOString() (milisegundos, UTC con Z).
const isoLayout = "2006-01-02T15:04:05.000Z"

// Encode arma el query string (keys ordenadas, URL-encoded).
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	vals := url.Values{}
	for k, v := range p {
		rv := reflect.ValueOf(v)
		for rv.IsValid() && rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				rv = reflect.Value{}
				break
			}
			rv = rv.Elem()
		}
		if !rv.IsValid() {
			continue
		}
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
			for i := 0; i < rv.Len(); i++ {
				if s, ok := stringify(rv.Index(i).Interface()); ok {
					vals.Add(k, s)
				}
			}
			continue
		}
		if s, ok := stringify(rv.Interface()); ok {
			vals.Set(k, s)
		}
	}
	return vals.Encode()
}

func stringify(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case time.Time:
		if x.IsZero() {
			return "", false
		}
		return x.UTC().Format(isoLayout), true
	case fmt.Stringer:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x), true
	default:
		return fmt.Sprint(x), true
	}
}
