package config

import (
	"net/url"
	"strings"
)

// RedactSecret masks a secret, keeping the first and last four
// characters of long values.
func RedactSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}

// RedactURL masks the password and token-like query values of a
// URL.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || raw == "" {
		return raw
	}
	if u.User != nil {
		if password, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), RedactSecret(password))
		}
	}
	q := u.Query()
	changed := false
	for key, values := range q {
		switch strings.ToLower(key) {
		case "token", "access_token", "api_key", "key", "password":
			for i := range values {
				values[i] = RedactSecret(values[i])
			}
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
