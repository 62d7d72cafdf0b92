package internal

import (
	"sync"
	"testing"
	"time"
)

func TestQueryCache_SetGet(t *testing.T) {
	c := NewQueryCache(0)
	key := Key(ScopeSession, 3)

	if _, ok := c.Get(key); ok {
		t.Fatal("Get() on empty cache should miss")
	}

	c.Set(key, &Session{ID: 3, Name: "Session 3"})
	s, ok := CacheGet[*Session](c, key)
	if !ok {
		t.Fatal("CacheGet() should hit after Set()")
	}
	if s.Name != "Session 3" {
		t.Errorf("CacheGet() name = %q, want Session 3", s.Name)
	}

	if _, ok := CacheGet[*Persona](c, key); ok {
		t.Error("CacheGet() with the wrong type should miss")
	}
}

func TestQueryCache_KeysAreDistinctByScope(t *testing.T) {
	c := NewQueryCache(0)
	c.Set(Key(ScopeSession, 1), "session")
	c.Set(Key(ScopePersona, 1), "persona")

	if v, _ := CacheGet[string](c, Key(ScopeSession, 1)); v != "session" {
		t.Errorf("session:1 = %q", v)
	}
	if v, _ := CacheGet[string](c, Key(ScopePersona, 1)); v != "persona" {
		t.Errorf("persona:1 = %q", v)
	}
}

func TestQueryCache_TTL(t *testing.T) {
	c := NewQueryCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(Key(ScopeCampaigns, 0), []Campaign{})
	now = now.Add(30 * time.Second)
	if _, ok := c.Get(Key(ScopeCampaigns, 0)); !ok {
		t.Error("entry should be live before ttl")
	}
	now = now.Add(time.Minute)
	if _, ok := c.Get(Key(ScopeCampaigns, 0)); ok {
		t.Error("entry should expire after ttl")
	}
}

func TestQueryCache_Invalidate(t *testing.T) {
	c := NewQueryCache(0)
	c.Set(Key(ScopePersona, 1), 1)
	c.Set(Key(ScopePersona, 2), 2)

	c.Invalidate(Key(ScopePersona, 1))
	if _, ok := c.Get(Key(ScopePersona, 1)); ok {
		t.Error("persona:1 should be invalidated")
	}
	if _, ok := c.Get(Key(ScopePersona, 2)); !ok {
		t.Error("persona:2 should survive")
	}
}

func TestQueryCache_InvalidateScope(t *testing.T) {
	c := NewQueryCache(0)
	c.Set(Key(ScopePersonas, 1), 1)
	c.Set(Key(ScopePersonas, 2), 2)
	c.Set(Key(ScopePersona, 1), 3)
	c.Set(Key(ScopeDashboard, 1), 4)

	c.InvalidateScope(ScopePersonas, ScopeDashboard)

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if _, ok := c.Get(Key(ScopePersona, 1)); !ok {
		t.Error("persona:1 should survive scope invalidation")
	}
}

func TestQueryCache_OptimisticRollback(t *testing.T) {
	c := NewQueryCache(0)
	key := Key(ScopeHighlights, 1)
	c.Set(key, []Highlight{{ID: 1, Text: "old"}, {ID: 2, Text: "keep"}})

	rollback, ok := UpdateCached(c, key, func(hs []Highlight) []Highlight {
		return hs[1:]
	})
	if !ok {
		t.Fatal("UpdateCached() should apply to a cached slice")
	}

	hs, _ := CacheGet[[]Highlight](c, key)
	if len(hs) != 1 || hs[0].ID != 2 {
		t.Fatalf("after optimistic update = %+v", hs)
	}

	rollback()
	hs, _ = CacheGet[[]Highlight](c, key)
	if len(hs) != 2 || hs[0].Text != "old" {
		t.Errorf("after rollback = %+v, want original two highlights", hs)
	}
}

func TestQueryCache_OptimisticRollbackRestoresAbsence(t *testing.T) {
	c := NewQueryCache(0)
	key := Key(ScopePersona, 9)

	rollback := c.Optimistic(key, func(current any, ok bool) any {
		if ok {
			t.Error("nothing should be cached yet")
		}
		return "placeholder"
	})
	if _, ok := c.Get(key); !ok {
		t.Fatal("optimistic value should be visible")
	}

	rollback()
	if _, ok := c.Get(key); ok {
		t.Error("rollback should remove a value that was not there before")
	}
}

func TestUpdateCached_MissIsNoop(t *testing.T) {
	c := NewQueryCache(0)
	rollback, ok := UpdateCached(c, Key(ScopeQuotes, 1), func(q []Quote) []Quote { return nil })
	if ok {
		t.Error("UpdateCached() should report a miss")
	}
	rollback()
	if c.Len() != 0 {
		t.Error("no-op rollback should leave the cache empty")
	}
}

func TestQueryCache_Clear(t *testing.T) {
	c := NewQueryCache(0)
	c.Set(Key(ScopeMoments, 1), 1)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear() = %d", c.Len())
	}
}

func TestQueryCache_ConcurrentAccess(t *testing.T) {
	c := NewQueryCache(0)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := Key(ScopeSession, id%5)
			c.Set(key, id)
			_, _ = c.Get(key)
			if id%7 == 0 {
				c.InvalidateScope(ScopeSession)
			}
		}(i)
	}
	wg.Wait()
}

func TestQueryKey_String(t *testing.T) {
	if got := Key(ScopeCampaign, 12).String(); got != "campaign:12" {
		t.Errorf("String() = %q", got)
	}
}
