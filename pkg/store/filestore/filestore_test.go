package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/session"
	"github.com/matzehuels/lineage/pkg/store"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir(), "usr_1")
	if err != nil {
		t.Fatal(err)
	}

	for _, p := range store.Seed() {
		if err := s.Put(ctx, p); err != nil {
			t.Fatalf("Put(%s): %v", p.ID, err)
		}
	}

	people, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(people) != 5 {
		t.Fatalf("LoadAll returned %d people, want 5", len(people))
	}
	tree := family.NewTree("", people...)
	if got := tree.People["3"].FatherID; got != "1" {
		t.Errorf("FatherID = %q, want 1", got)
	}
	if got := tree.People["1"].SpouseIDs; len(got) != 1 || got[0] != "2" {
		t.Errorf("SpouseIDs = %v", got)
	}
}

func TestStorePutOverwrites(t *testing.T) {
	ctx := context.Background()
	s, _ := New(t.TempDir(), "usr_1")

	p := store.Seed()[0]
	_ = s.Put(ctx, p)
	p.Bio = "updated"
	if err := s.Put(ctx, p); err != nil {
		t.Fatal(err)
	}
	people, _ := s.LoadAll(ctx)
	if len(people) != 1 || people[0].Bio != "updated" {
		t.Errorf("got %+v", people)
	}
}

func TestStoreRejectsUnsafeIDs(t *testing.T) {
	ctx := context.Background()
	s, _ := New(t.TempDir(), "usr_1")

	for _, id := range []string{"", "../escape", "a/b", "@I1@"} {
		if err := s.Put(ctx, family.Person{ID: id}); err == nil {
			t.Errorf("Put(%q) should fail", id)
		}
	}
	if _, err := New(t.TempDir(), "../other"); err == nil {
		t.Error("New with unsafe user ID should fail")
	}
}

func TestStoreCorruptRecordFailsLoad(t *testing.T) {
	s, _ := New(t.TempDir(), "usr_1")
	if err := os.WriteFile(filepath.Join(s.Dir(), "bad.json"), []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadAll(context.Background()); err == nil {
		t.Error("corrupt record should fail the load, not look like an empty tree")
	}
}

func TestStoreClear(t *testing.T) {
	ctx := context.Background()
	s, _ := New(t.TempDir(), "usr_1")
	for _, p := range store.Seed() {
		_ = s.Put(ctx, p)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	people, err := s.LoadAll(ctx)
	if err != nil || len(people) != 0 {
		t.Errorf("after Clear: %d people, err %v", len(people), err)
	}
}

func TestStoreIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	a, _ := New(base, "usr_a")
	b, _ := New(base, "usr_b")

	_ = a.Put(ctx, store.Seed()[0])
	people, _ := b.LoadAll(ctx)
	if len(people) != 0 {
		t.Errorf("user b sees %d people from user a", len(people))
	}
}

func TestStoreWithStore(t *testing.T) {
	ctx := context.Background()
	backend, _ := New(t.TempDir(), "usr_1")

	st, err := store.New(session.MockLocal(), backend)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Load(ctx); err != nil {
		t.Fatal(err)
	}
	people, _ := backend.LoadAll(ctx)
	if len(people) != 5 {
		t.Errorf("seeded %d records, want 5", len(people))
	}
}
