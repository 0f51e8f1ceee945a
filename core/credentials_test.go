package core

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthorizationHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/users/me", nil)
	if _, ok := AuthorizationHeader(r); ok {
		t.Fatalf("expected no header")
	}

	r.Header.Set("Authorization", "Basic abc")
	v, ok := AuthorizationHeader(r)
	if !ok || v != "Basic abc" {
		t.Fatalf("got (%q, %v), want (\"Basic abc\", true)", v, ok)
	}
}

func TestSessionCookie(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/users/me", nil)
	if _, ok := SessionCookie(r, "_my_session_id"); ok {
		t.Fatalf("expected no cookie")
	}

	r.AddCookie(&http.Cookie{Name: "_my_session_id", Value: "tok-123"})
	v, ok := SessionCookie(r, "_my_session_id")
	if !ok || v != "tok-123" {
		t.Fatalf("got (%q, %v), want (\"tok-123\", true)", v, ok)
	}

	// The configured name decides which cookie counts.
	if _, ok := SessionCookie(r, "other_cookie"); ok {
		t.Fatalf("unexpected match for different cookie name")
	}
	if _, ok := SessionCookie(r, ""); ok {
		t.Fatalf("unexpected match for empty cookie name")
	}
}

func TestDecodeBasic(t *testing.T) {
	payload, ok := DecodeBasic("Basic dGVzdDoxMjPCow==")
	if !ok || payload != "dGVzdDoxMjPCow==" {
		t.Fatalf("got (%q, %v), want payload unchanged", payload, ok)
	}

	for _, header := range []string{"Bearer xyz", "basic dGVzdA==", "Basic", ""} {
		if _, ok := DecodeBasic(header); ok {
			t.Fatalf("DecodeBasic(%q) unexpectedly succeeded", header)
		}
	}

	// "Basic " with empty payload is still the right scheme.
	if payload, ok := DecodeBasic("Basic "); !ok || payload != "" {
		t.Fatalf("got (%q, %v), want empty payload", payload, ok)
	}
}

func TestDecodeBase64(t *testing.T) {
	decoded, ok := DecodeBase64("dGVzdDoxMjPCow==")
	if !ok || decoded != "test:123£" {
		t.Fatalf("got (%q, %v), want (\"test:123£\", true)", decoded, ok)
	}

	if _, ok := DecodeBase64("not-base64!!"); ok {
		t.Fatalf("malformed base64 unexpectedly decoded")
	}
	// Valid base64 but not valid UTF-8.
	if _, ok := DecodeBase64("/w=="); ok {
		t.Fatalf("non-UTF-8 payload unexpectedly decoded")
	}
}

func TestSplitCredentials(t *testing.T) {
	user, pass, ok := SplitCredentials("alice:s3cret")
	if !ok || user != "alice" || pass != "s3cret" {
		t.Fatalf("got (%q, %q, %v)", user, pass, ok)
	}

	// Only the first colon splits; passwords may contain colons.
	user, pass, ok = SplitCredentials("alice:pa:ss:wd")
	if !ok || user != "alice" || pass != "pa:ss:wd" {
		t.Fatalf("got (%q, %q, %v)", user, pass, ok)
	}

	if _, _, ok := SplitCredentials("no-colon-here"); ok {
		t.Fatalf("payload without colon unexpectedly split")
	}
}
