package core

import (
	"encoding/base64"
	"net/http"
	"strings"
	"unicode/utf8"
)

const basicPrefix = "Basic "

// AuthorizationHeader returns the raw Authorization header value and whether
// it was present.
func AuthorizationHeader(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	v := r.Header.Get("Authorization")
	return v, v != ""
}

// SessionCookie returns the value of the named session cookie and whether it
// was present. The cookie name comes from configuration, not a constant.
func SessionCookie(r *http.Request, name string) (string, bool) {
	if r == nil || name == "" {
		return "", false
	}
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// DecodeBasic strips the "Basic " scheme prefix from an Authorization header
// value, returning the base64 payload. Any other scheme yields false.
func DecodeBasic(header string) (string, bool) {
	if !strings.HasPrefix(header, basicPrefix) {
		return "", false
	}
	return header[len(basicPrefix):], true
}

// DecodeBase64 decodes a standard base64 token into a UTF-8 string. Malformed
// base64 or non-UTF-8 payloads yield false; this function never fails loudly
// on untrusted input.
func DecodeBase64(token string) (string, bool) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// SplitCredentials splits a decoded "user:password" pair on the first colon
// only, so the password itself may contain colons. A payload without a colon
// yields false.
func SplitCredentials(decoded string) (username, password string, ok bool) {
	return strings.Cut(decoded, ":")
}
