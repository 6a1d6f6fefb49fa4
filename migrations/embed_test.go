package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()
	for _, svc := range []string{"identity", "catalog", "media"} {
		files, err := fs.Glob(FS, svc+"/*.sql")
		if err != nil {
			t.Fatalf("glob %s: %v", svc, err)
		}
		if len(files) == 0 {
			t.Fatalf("no migrations for %s", svc)
		}
		for _, f := range files {
			b, err := fs.ReadFile(FS, f)
			if err != nil {
				t.Fatalf("read %s: %v", f, err)
			}
			s := string(b)
			if !strings.Contains(s, "-- +goose Up") || !strings.Contains(s, "-- +goose Down") {
				t.Fatalf("%s lacks goose annotations", f)
			}
		}
	}
}

// The limiter binds raw sha256 digests, which are not valid text.
func TestAuthLimiter_IPHashIsBytea(t *testing.T) {
	t.Parallel()
	b, err := fs.ReadFile(FS, "identity/00002_auth_limiter.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var col string
	for _, line := range strings.Split(string(b), "\n") {
		if f := strings.Fields(line); len(f) >= 2 && f[0] == "ip_hash" {
			col = f[1]
		}
	}
	if col != "bytea" {
		t.Fatalf("ip_hash column type = %q, want bytea", col)
	}
}
