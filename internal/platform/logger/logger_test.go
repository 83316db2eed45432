package logger

import (
	"strings"
	"testing"
)

func TestSanitizeRedactsSecrets(t *testing.T) {
	kv := sanitizeKVs([]interface{}{
		"api_key", "super-secret",
		"authorization", "Bearer abc",
		"path", "/api/capture",
	})

	if kv[1] != "[REDACTED]" || kv[3] != "[REDACTED]" {
		t.Fatalf("secrets not redacted: %+v", kv)
	}
	if kv[5] != "/api/capture" {
		t.Fatalf("benign value altered: %+v", kv)
	}
}

func TestSanitizeHashesEmails(t *testing.T) {
	kv := sanitizeKVs([]interface{}{"email", "lead@example.com"})

	got, ok := kv[1].(string)
	if !ok || !strings.HasPrefix(got, "hash:") {
		t.Fatalf("email not hashed: got=%v", kv[1])
	}
	if strings.Contains(got, "lead@example.com") {
		t.Fatalf("raw email leaked into logs: got=%q", got)
	}

	again := sanitizeKVs([]interface{}{"email", "lead@example.com"})
	if again[1] != kv[1] {
		t.Fatalf("hash not stable across calls: %v vs %v", kv[1], again[1])
	}
}

func TestSanitizeOddLengthKVs(t *testing.T) {
	kv := sanitizeKVs([]interface{}{"email", "lead@example.com", "dangling"})
	if len(kv) != 3 || kv[2] != "dangling" {
		t.Fatalf("dangling key mishandled: %+v", kv)
	}
}
