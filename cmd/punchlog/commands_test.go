package main

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"punchlog/internal/api"
	"punchlog/internal/composer"
	"punchlog/internal/fragment"
	"punchlog/internal/identity"
	"punchlog/internal/storage"
)

// withTestBackend points the CLI at a real handler over httptest and a
// throwaway identity file, restoring the wiring afterwards.
func withTestBackend(t *testing.T) *storage.Store {
	t.Helper()

	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	handler := api.NewHandler(api.Deps{
		Store:    store,
		Composer: composer.New(0),
		Now:      func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) },
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	idPath := filepath.Join(t.TempDir(), "identity.json")

	oldClient := newAPIClient
	oldIdentity := newIdentityStore
	newAPIClient = func() (*api.Client, error) {
		return api.NewClientWithHTTP(srv.URL, srv.Client()), nil
	}
	newIdentityStore = func() identity.Store {
		return identity.NewFileStoreAt(idPath)
	}
	t.Cleanup(func() {
		newAPIClient = oldClient
		newIdentityStore = oldIdentity
	})

	return store
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	defer rootCmd.SetArgs(nil)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestLogCommand(t *testing.T) {
	store := withTestBackend(t)
	newIdentityStore().Set("alice")

	if err := runCommand(t, "log", "fixed", "the", "login", "bug"); err != nil {
		t.Fatalf("log: %v", err)
	}

	frags, err := store.FragmentsByDate("2025-06-15", "alice")
	if err != nil {
		t.Fatalf("FragmentsByDate: %v", err)
	}
	if len(frags) != 1 {
		t.Fatalf("stored %d fragments, want 1", len(frags))
	}
	if frags[0].Content != "fixed the login bug" {
		t.Errorf("content = %q", frags[0].Content)
	}
}

func TestLogCommand_ExplicitDate(t *testing.T) {
	store := withTestBackend(t)
	newIdentityStore().Set("alice")

	if err := runCommand(t, "log", "--date", "2025-06-01", "reviewed the onboarding PR"); err != nil {
		t.Fatalf("log: %v", err)
	}

	frags, _ := store.FragmentsByDate("2025-06-01", "alice")
	if len(frags) != 1 {
		t.Fatalf("stored %d fragments on 2025-06-01, want 1", len(frags))
	}
}

func TestLogCommand_NoAuthor(t *testing.T) {
	withTestBackend(t)

	err := runCommand(t, "log", "fixed the login bug")
	if err == nil {
		t.Fatal("expected an error without a configured author")
	}
	if !strings.Contains(err.Error(), "no author configured") {
		t.Errorf("error = %q, want a pointer to author setup", err.Error())
	}
}

func TestClockInCommand(t *testing.T) {
	store := withTestBackend(t)
	newIdentityStore().Set("alice")

	if err := runCommand(t, "clock-in"); err != nil {
		t.Fatalf("clock-in: %v", err)
	}

	ev, err := store.GetClockEvent("2025-06-15", storage.EventStartWork)
	if err != nil {
		t.Fatalf("GetClockEvent: %v", err)
	}
	if ev.Status != storage.ClockConfirmed {
		t.Errorf("status = %q, want %q", ev.Status, storage.ClockConfirmed)
	}
}

func TestSummarizeCommand(t *testing.T) {
	store := withTestBackend(t)
	newIdentityStore().Set("alice")

	store.SaveFragment(storage.FragmentRecord{
		ID: "f1", Type: fragment.TypeNote, Content: "shipped the release",
		OccurredDate: "2025-06-15", Author: "alice", CreatedAt: time.Now(),
	})

	if err := runCommand(t, "summarize"); err != nil {
		t.Fatalf("summarize: %v", err)
	}

	frags, _ := store.FragmentsByDate("2025-06-15", "alice")
	var foundSummary bool
	for _, f := range frags {
		if f.Type == fragment.TypeSummary {
			foundSummary = true
		}
	}
	if !foundSummary {
		t.Error("expected a stored summary fragment")
	}
}

func TestDeleteCommand_RequiresConfirmation(t *testing.T) {
	store := withTestBackend(t)
	newIdentityStore().Set("alice")

	store.SaveFragment(storage.FragmentRecord{
		ID: "f1", Type: fragment.TypeNote, Content: "fact",
		OccurredDate: "2025-06-15", Author: "alice", CreatedAt: time.Now(),
	})

	if err := runCommand(t, "delete", "f1"); err != nil {
		t.Fatalf("delete without --yes should not fail: %v", err)
	}

	if _, err := store.GetFragment("f1"); err != nil {
		t.Error("fragment must survive an unconfirmed delete")
	}
}

func TestDeleteCommand_Confirmed(t *testing.T) {
	store := withTestBackend(t)
	newIdentityStore().Set("alice")

	store.SaveFragment(storage.FragmentRecord{
		ID: "f1", Type: fragment.TypeNote, Content: "fact",
		OccurredDate: "2025-06-15", Author: "alice", CreatedAt: time.Now(),
	})

	if err := runCommand(t, "delete", "--yes", "f1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.GetFragment("f1"); err == nil {
		t.Error("fragment should be gone after a confirmed delete")
	}
}

func TestDeleteCommand_NotFound(t *testing.T) {
	withTestBackend(t)
	newIdentityStore().Set("alice")

	err := runCommand(t, "delete", "--yes", "nonexistent")
	if err == nil {
		t.Fatal("expected an error for a missing fragment")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %q, want the service message", err.Error())
	}
}

func TestAuthorCommands(t *testing.T) {
	withTestBackend(t)

	if err := runCommand(t, "author", "set", "alice"); err != nil {
		t.Fatalf("author set: %v", err)
	}
	if name, ok := newIdentityStore().Get(); !ok || name != "alice" {
		t.Errorf("identity = %q/%v, want alice", name, ok)
	}

	if err := runCommand(t, "author", "clear"); err != nil {
		t.Fatalf("author clear: %v", err)
	}
	if _, ok := newIdentityStore().Get(); ok {
		t.Error("identity should be cleared")
	}
}

func TestNoColorFlag(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "test message")
	if strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}
	if result != "test message" {
		t.Errorf("result = %q, want %q", result, "test message")
	}

	noColor = false
	result = colorize(colorGreen, "test message")
	if !strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("abcdefghijkl"); got != "abcdefgh" {
		t.Errorf("shortID = %q, want %q", got, "abcdefgh")
	}
	if got := shortID("ab"); got != "ab" {
		t.Errorf("shortID = %q, want %q", got, "ab")
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("one\ntwo"); got != "one" {
		t.Errorf("firstLine = %q, want %q", got, "one")
	}
	if got := firstLine("single"); got != "single" {
		t.Errorf("firstLine = %q, want %q", got, "single")
	}
}
