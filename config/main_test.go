package config

import (
	"fmt"
	"os"
	"testing"
)

// TestMain refuses to run the config tests against a real database.
// GO_ENV defaults to "test" when unset.
func TestMain(m *testing.M) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		os.Setenv("GO_ENV", "test")
		env = "test"
	}
	if env != "test" && os.Getenv("DATABASE_URL") != "" {
		fmt.Fprintf(os.Stderr, "\n"+
			"SAFETY CHECK FAILED: tests must run with GO_ENV=test when DATABASE_URL is set.\n"+
			"Current GO_ENV: %q\n"+
			"Run: GO_ENV=test go test ./...\n\n", env)
		os.Exit(1)
	}

	os.Exit(m.Run())
}
