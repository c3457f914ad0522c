package migrate

import "testing"

func TestValidateMigrationsDir(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func TestValidateDirRejectsMissing(t *testing.T) {
	if err := ValidateDir("no-such-dir"); err == nil {
		t.Fatal("expected error for missing dir")
	}
}
