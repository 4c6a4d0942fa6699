package cache

import "testing"

func TestVersionMismatchMisses(t *testing.T) {
	c := New[string](4)
	k := Key{BufferID: "a", Language: "go"}
	c.Put(k, 3, "v3")

	if v, ok := c.Get(k, 3); !ok || v != "v3" {
		t.Errorf("Get(3) = %q, %v; want v3, true", v, ok)
	}
	if _, ok := c.Get(k, 4); ok {
		t.Error("Get with newer version should miss")
	}
	if _, ok := c.Get(k, 2); ok {
		t.Error("Get with older version should miss")
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 2 {
		t.Errorf("Stats = %+v, want 1 hit and 2 misses", st)
	}
}

func TestPutDropsOlderVersion(t *testing.T) {
	c := New[string](4)
	k := Key{BufferID: "a", Language: "go"}
	c.Put(k, 5, "new")
	c.Put(k, 4, "old")

	if v, ok := c.Get(k, 5); !ok || v != "new" {
		t.Errorf("Get(5) = %q, %v; want new, true", v, ok)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](2)
	a := Key{BufferID: "a"}
	b := Key{BufferID: "b"}
	d := Key{BufferID: "d"}

	c.Put(a, 1, 1)
	c.Put(b, 1, 2)
	c.Get(a, 1)
	c.Put(d, 1, 3)

	if _, ok := c.Get(b, 1); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get(a, 1); !ok {
		t.Error("a should still be cached")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", c.Stats().Evictions)
	}
}

func TestInvalidateBuffer(t *testing.T) {
	c := New[int](8)
	c.Put(Key{BufferID: "a", Language: "go"}, 1, 1)
	c.Put(Key{BufferID: "a", Language: "python"}, 1, 2)
	c.Put(Key{BufferID: "b", Language: "go"}, 1, 3)

	c.InvalidateBuffer("a")
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if _, ok := c.Get(Key{BufferID: "b", Language: "go"}, 1); !ok {
		t.Error("other buffers must survive invalidation")
	}
}
