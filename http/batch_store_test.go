package http

import (
	"testing"
	"time"

	"agegroup/inference"
	"agegroup/survey"
)

func TestBatchStoreExpires(t *testing.T) {
	store := NewBatchStore(2, 20*time.Millisecond)
	id := store.Put(&inference.BatchResult{Table: &survey.Table{}})
	if _, ok := store.Get(id); !ok {
		t.Fatal("expected batch to be stored")
	}
	time.Sleep(60 * time.Millisecond)
	if _, ok := store.Get(id); ok {
		t.Fatal("expected batch to expire")
	}
}

func TestBatchStoreEvictsOldest(t *testing.T) {
	store := NewBatchStore(2, time.Minute)
	first := store.Put(&inference.BatchResult{})
	store.Put(&inference.BatchResult{})
	store.Put(&inference.BatchResult{})
	if _, ok := store.Get(first); ok {
		t.Fatal("expected oldest batch to be evicted")
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", store.Len())
	}
}
