package application

import "testing"

func TestDedupIndex(t *testing.T) {
	index := NewDedupIndex(map[string]struct{}{"R-1": {}})

	if !index.Duplicate("R-1") {
		t.Fatal("persisted id must be a duplicate")
	}
	if index.Duplicate("R-2") {
		t.Fatal("unseen id must not be a duplicate")
	}

	index.Add("R-2")
	if !index.Duplicate("R-2") {
		t.Fatal("id added in-run must be a duplicate afterwards")
	}
	if index.Len() != 2 {
		t.Fatalf("expected 2 ids, got %d", index.Len())
	}
}

func TestDedupIndexIgnoresEmptyIDs(t *testing.T) {
	index := NewDedupIndex(nil)

	if index.Duplicate("") {
		t.Fatal("empty id must never be a duplicate")
	}
	index.Add("")
	if index.Duplicate("") {
		t.Fatal("empty id must stay exempt after Add")
	}
	if index.Len() != 0 {
		t.Fatalf("expected empty index, got %d", index.Len())
	}
}
