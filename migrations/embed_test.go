package migrations

import (
	"io/fs"
	"testing"
)

func TestForDriver(t *testing.T) {
	for _, driver := range []string{"postgres", "sqlite"} {
		sub, err := ForDriver(driver)
		if err != nil {
			t.Fatalf("ForDriver(%q) error: %v", driver, err)
		}
		if _, err := fs.ReadFile(sub, "001_init.sql"); err != nil {
			t.Errorf("%s: missing 001_init.sql: %v", driver, err)
		}
	}

	if _, err := ForDriver("mysql"); err == nil {
		t.Error("expected error for unknown driver")
	}
}
