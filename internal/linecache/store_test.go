package linecache

import (
	"math/rand"
	"strings"
	"sync"
	"testing"
)

func TestStore_GetInsert(t *testing.T) {
	s := NewStore(100)
	s.Insert(1, "hello")
	if v, ok := s.Get(1); !ok || v != "hello" {
		t.Errorf("Get(1) = %q, %v", v, ok)
	}
	if _, ok := s.Get(2); ok {
		t.Error("Get(2) should miss")
	}
	if s.Weight() != 5 {
		t.Errorf("Weight() = %d, want 5", s.Weight())
	}
}

func TestStore_EmptyValueWeighsOne(t *testing.T) {
	s := NewStore(100)
	s.Insert(0, "")
	if s.Weight() != 1 {
		t.Errorf("Weight() = %d, want 1", s.Weight())
	}
}

func TestStore_Replace(t *testing.T) {
	s := NewStore(100)
	s.Insert(1, "aaaa")
	s.Insert(1, "bb")
	if s.Weight() != 2 || s.Len() != 1 {
		t.Errorf("Weight() = %d, Len() = %d; want 2, 1", s.Weight(), s.Len())
	}
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	s := NewStore(10)
	s.Insert(1, "aaaa") // 4
	s.Insert(2, "bbbb") // 8
	s.Get(1)            // 1 is now most recent
	s.Insert(3, "cccc") // 12 -> evict 2

	if _, ok := s.Peek(2); ok {
		t.Error("entry 2 should have been evicted")
	}
	for _, k := range []int{1, 3} {
		if _, ok := s.Peek(k); !ok {
			t.Errorf("entry %d should be present", k)
		}
	}
	if s.Weight() != 8 {
		t.Errorf("Weight() = %d, want 8", s.Weight())
	}
}

func TestStore_OversizedEntry(t *testing.T) {
	s := NewStore(4)
	s.Insert(1, "ab")
	s.Insert(2, "0123456789")
	if s.Weight() > s.Capacity() {
		t.Errorf("Weight() = %d exceeds capacity %d", s.Weight(), s.Capacity())
	}
}

func TestStore_WeightNeverExceedsCapacity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := NewStore(1_000)
	for i := range 10_000 {
		s.Insert(rng.Intn(500), strings.Repeat("x", rng.Intn(120)))
		if i%7 == 0 {
			s.Get(rng.Intn(500))
		}
		if s.Weight() > s.Capacity() {
			t.Fatalf("after %d inserts weight %d > capacity %d", i+1, s.Weight(), s.Capacity())
		}
	}

	var sum int64
	for k := range 500 {
		if v, ok := s.Peek(k); ok {
			sum += weigh(v)
		}
	}
	if sum != s.Weight() {
		t.Errorf("sum of entry weights %d != Weight() %d", sum, s.Weight())
	}
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore(500)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 1_000 {
				s.Insert(g*1_000+i, "line")
				s.Get(i)
			}
		}()
	}
	wg.Wait()
	if s.Weight() > s.Capacity() {
		t.Errorf("Weight() = %d exceeds capacity", s.Weight())
	}
}

func TestStore_Delete(t *testing.T) {
	s := NewStore(100)
	s.Insert(1, "abc")
	s.Delete(1)
	s.Delete(2)
	if s.Len() != 0 || s.Weight() != 0 {
		t.Errorf("Len() = %d, Weight() = %d after delete", s.Len(), s.Weight())
	}
}
