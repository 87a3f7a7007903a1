// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"net/http"
	"testing"
)

func TestIsSensitiveKey(t *testing.T) {
	tests := map[string]bool{
		"password":      true,
		"Password":      true,
		"access_token":  true,
		"refreshToken":  true,
		"client_secret": true,
		"apiKey":        true,
		"X-CSRF-Token":  true,
		"email":         false,
		"role":          false,
		"path":          false,
	}

	for key, want := range tests {
		if got := IsSensitiveKey(key); got != want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestRedact(t *testing.T) {
	in := map[string]any{
		"email":    "a@b.com",
		"password": "Secret123!",
		"nested": map[string]any{
			"refresh_token": "r-1",
			"attempt":       2,
		},
	}

	out := Redact(in)

	if out["email"] != "a@b.com" {
		t.Errorf("email should be kept, got %v", out["email"])
	}
	if out["password"] != Redacted {
		t.Errorf("password should be redacted, got %v", out["password"])
	}
	nested := out["nested"].(map[string]any)
	if nested["refresh_token"] != Redacted {
		t.Errorf("nested token should be redacted, got %v", nested["refresh_token"])
	}
	if nested["attempt"] != 2 {
		t.Errorf("nested attempt should be kept, got %v", nested["attempt"])
	}

	if in["password"] != "Secret123!" {
		t.Error("input map must not be modified")
	}
}

func TestRedact_Nil(t *testing.T) {
	if Redact(nil) != nil {
		t.Error("expected nil for nil input")
	}
}

func TestRedactHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer abc")
	h.Set("X-CSRF-Token", "csrf")
	h.Set("X-Requested-With", "XMLHttpRequest")

	out := RedactHeaders(h)

	if out["Authorization"] != Redacted || out["X-Csrf-Token"] != Redacted {
		t.Errorf("auth headers must be redacted: %v", out)
	}
	if out["X-Requested-With"] != "XMLHttpRequest" {
		t.Errorf("unexpected X-Requested-With: %v", out["X-Requested-With"])
	}
}
