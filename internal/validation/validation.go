// Package validation reúne las reglas de formularios que el dashboard aplica
// antes de llamar al API, y que el twin replica del lado servidor.
package validation

import (
	"net"
	"regexp"
	"sort"
	"strings"
)

// Email: local@dominio.tld, sin espacios. No pretende cubrir RFC 5322.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Dominio: labels [a-z0-9-] separados por punto, TLD alfabético de 2+.
var domainRe = regexp.MustCompile(`^(?i)(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,63}$`)

// Hostname SMTP: como dominio pero sin exigir TLD (permite "localhost", "mailhog").
var hostRe = regexp.MustCompile(`^(?i)[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)*$`)

func ValidEmail(s string) bool { return emailRe.MatchString(strings.TrimSpace(s)) }

func ValidDomain(s string) bool { return len(s) <= 253 && domainRe.MatchString(s) }

func ValidPort(p int) bool { return p >= 1 && p <= 65535 }

// ValidHost acepta hostname o IP literal.
func ValidHost(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if net.ParseIP(strings.Trim(s, "[]")) != nil {
		return true
	}
	return len(s) <= 253 && hostRe.MatchString(s)
}

// SplitAddresses separa una lista "a@x.io, b@y.io; c@z.io" y descarta vacíos.
func SplitAddresses(s string) []string {
	f := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == '\n' })
	out := make([]string, 0, len(f))
	for _, a := range f {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// FieldErrors son errores por campo (clave = nombre del campo en el JSON).
type FieldErrors map[string]string

func (fe FieldErrors) Add(field, msg string) {
	if _, exists := fe[field]; !exists {
		fe[field] = msg
	}
}

// Err devuelve nil si no hay errores.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
