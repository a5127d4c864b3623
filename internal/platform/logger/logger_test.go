package logger

import "testing"

func TestSanitizeKVs_RedactsSecretsAndHashesIDs(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"password", "hunter2",
		"user_id", "3f1c2a6e-0000-4000-8000-000000000001",
		"achievement", "practice_1h",
	})
	if len(out) != 6 {
		t.Fatalf("expected 6 entries, got %d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("expected password redacted, got %v", out[1])
	}
	hashed, ok := out[3].(string)
	if !ok || len(hashed) != len("hash:")+12 || hashed[:5] != "hash:" {
		t.Fatalf("expected hashed user_id, got %v", out[3])
	}
	if out[5] != "practice_1h" {
		t.Fatalf("expected plain value untouched, got %v", out[5])
	}
}

func TestSanitizeKVs_OddTrailingKeyKept(t *testing.T) {
	out := sanitizeKVs([]interface{}{"status", 200, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestLooksLikeJWT(t *testing.T) {
	if !looksLikeJWT("eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig") {
		t.Fatalf("expected jwt-shaped string to be detected")
	}
	if looksLikeJWT("practice.session.ended") {
		t.Fatalf("short dotted string is not a jwt")
	}
}
