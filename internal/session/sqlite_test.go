package session

import "testing"

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := OpenSQLite(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	if got, err := store.Get("missing"); err != nil || got != "" {
		t.Fatalf("Get(missing) = (%q, %v), want empty", got, err)
	}

	if err := store.Set("k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set("k", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _ := store.Get("k"); got != "v2" {
		t.Fatalf("Get(k) = %q, want v2", got)
	}

	if err := store.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Get("k"); got != "" {
		t.Fatalf("Get(k) after delete = %q, want empty", got)
	}

	// Deleting an absent key is fine.
	if err := store.Delete("k"); err != nil {
		t.Fatalf("delete absent key: %v", err)
	}
}

func TestSQLiteStorePersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenSQLite(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(KeyToken, "tok-1"); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenSQLite(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if got, _ := reopened.Get(KeyToken); got != "tok-1" {
		t.Fatalf("Get after reopen = %q, want tok-1", got)
	}
}

func TestOpenSQLiteRequiresDir(t *testing.T) {
	if _, err := OpenSQLite("  "); err == nil {
		t.Fatal("OpenSQLite with blank dir should fail")
	}
}
