package native

import (
	"sync"
	"testing"
)

func TestSymtab(t *testing.T) {
	s := newSymtab()

	if _, ok := s.get("dgesv_"); ok {
		t.Error("get on empty symtab returned ok")
	}

	s.put("dgesv_", 0xdead)
	addr, ok := s.get("dgesv_")
	if !ok || addr != 0xdead {
		t.Errorf("get = (%#x, %v), want (0xdead, true)", addr, ok)
	}
	if s.size() != 1 {
		t.Errorf("size = %d, want 1", s.size())
	}

	// Concurrent access must not race.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n uintptr) {
			defer wg.Done()
			s.put("dgemm_", n)
			s.get("dgemm_")
		}(uintptr(i))
	}
	wg.Wait()
	if s.size() != 2 {
		t.Errorf("size = %d, want 2", s.size())
	}
}
