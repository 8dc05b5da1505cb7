// Package util junta helpers chicos sin dependencias del dominio.
package util

import "strings"

// MaskEmail deja la primera letra del usuario y del primer label del dominio:
// "juan@acme.io" -> "j…@a….io".
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	i := strings.IndexByte(s, '@')
	if i <= 0 {
		if s == "" {
			return ""
		}
		if len(s) <= 3 {
			return "***"
		}
		return s[:1] + "…" + s[len(s)-1:]
	}
	user, dom := s[:i], s[i+1:]
	if len(user) > 1 {
		user = user[:1] + "…"
	}
	dparts := strings.Split(dom, ".")
	if len(dparts) > 0 && len(dparts[0]) > 1 {
		dparts[0] = dparts[0][:1] + "…"
	}
	return user + "@" + strings.Join(dparts, ".")
}

// MaskKey muestra solo el prefijo público de una API key ("ek_1a2b3c4d…").
// Para cualquier otro secreto deja los primeros 4 caracteres.
func MaskKey(k string) string {
	k = strings.TrimSpace(k)
	if k == "" {
		return ""
	}
	if prefix, _, ok := strings.Cut(k, "."); ok && strings.HasPrefix(k, "ek_") {
		if len(prefix) > 11 {
			prefix = prefix[:11]
		}
		return prefix + "…"
	}
	if len(k) <= 8 {
		return "****"
	}
	return k[:4] + "…"
}
