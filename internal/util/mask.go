// Package util helpers para no filtrar datos sensibles en logs.
package util

import (
	"net/url"
	"strings"
)

// MaskEmail deja visible la primera letra del usuario y del dominio:
// "ana@yandex.ru" => "a…@y….ru". Sin '@' enmascara como texto plano.
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	at := strings.IndexByte(s, '@')
	if at <= 0 {
		return maskPlain(s)
	}
	local, domain := s[:at], s[at+1:]

	host, tld := domain, ""
	if dot := strings.LastIndexByte(domain, '.'); dot > 0 {
		host, tld = domain[:dot], domain[dot+1:]
	}
	out := maskPlain(local) + "@" + maskPlain(host)
	if tld != "" {
		out += "." + tld
	}
	return out
}

func maskPlain(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 1:
		return "…"
	default:
		return s[:1] + "…"
	}
}

// MaskDSN oculta la contraseña y los parámetros de un DSN URL. DSNs en
// formato key=value se reemplazan enteros por "***".
func MaskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "***"
	}
	u.RawQuery = ""
	return u.Redacted()
}
