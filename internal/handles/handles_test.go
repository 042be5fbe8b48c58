//go:build !ios && !android && (amd64 || arm64)

package handles

import (
	"sync"
	"testing"
)

func TestRegisterAndLookup(t *testing.T) {
	type payload struct {
		Key   string
		Count int
	}

	r := New()
	data := &payload{Key: "State:/Network/Global/IPv4", Count: 2}
	id := r.Register(data)
	if id == 0 {
		t.Fatal("Register should return non-zero token")
	}

	got, ok := r.Lookup(id).(*payload)
	if !ok {
		t.Fatalf("Lookup returned wrong type: %T", r.Lookup(id))
	}
	if got != data {
		t.Errorf("Lookup returned a different value: %+v", got)
	}
}

func TestTakeOnlyOnce(t *testing.T) {
	r := New()
	id := r.Register("context")

	v, ok := r.Take(id)
	if !ok || v != "context" {
		t.Fatalf("first Take = %v, %v", v, ok)
	}
	if _, ok := r.Take(id); ok {
		t.Error("second Take should report a missing token")
	}
	if r.Lookup(id) != nil {
		t.Error("Lookup after Take should return nil")
	}
}

func TestLookupNonExistent(t *testing.T) {
	if got := New().Lookup(999999); got != nil {
		t.Errorf("Lookup of unknown token = %v, want nil", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	const workers = 64
	const ops = 100

	r := New()
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < ops; j++ {
				id := r.Register([2]int{worker, j})
				if r.Lookup(id) == nil {
					t.Errorf("Lookup returned nil for token %d", id)
				}
				if _, ok := r.Take(id); !ok {
					t.Errorf("Take lost token %d", id)
				}
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d entries", r.Len())
	}
}

func TestTokensAreUnique(t *testing.T) {
	r := New()
	seen := make(map[uintptr]bool)
	for i := 0; i < 1000; i++ {
		id := r.Register(i)
		if seen[id] {
			t.Fatalf("token %d issued twice", id)
		}
		seen[id] = true
	}
	if r.Len() != 1000 {
		t.Errorf("Len = %d, want 1000", r.Len())
	}
}

func TestProcessRegistry(t *testing.T) {
	before := Count()
	id := Register(struct{}{})
	if Count() != before+1 {
		t.Errorf("Count = %d, want %d", Count(), before+1)
	}
	if _, ok := Take(id); !ok {
		t.Fatal("Take lost token")
	}
	if Count() != before {
		t.Errorf("Count = %d, want %d", Count(), before)
	}
}
