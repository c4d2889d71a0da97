// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package registry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/locbeacon/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// backends runs fn once per registry implementation.
func backends(t *testing.T, fn func(t *testing.T, r Registry, clock *fakeClock)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		clock := newFakeClock()
		r := NewMemoryRegistry(Options{TTL: 5 * time.Minute, Clock: clock.Now})
		defer r.Close()
		fn(t, r, clock)
	})

	t.Run("badger", func(t *testing.T) {
		clock := newFakeClock()
		r, err := OpenBadgerRegistry(t.TempDir(), Options{TTL: 5 * time.Minute, Clock: clock.Now})
		if err != nil {
			t.Fatalf("OpenBadgerRegistry: %v", err)
		}
		defer r.Close()
		fn(t, r, clock)
	})
}

func report(userID string, lat, lng float64) models.LocationReport {
	return models.LocationReport{
		UserID:    userID,
		UserName:  "user " + userID,
		Latitude:  lat,
		Longitude: lng,
	}
}

func TestUpsert_LastWriteWins(t *testing.T) {
	backends(t, func(t *testing.T, r Registry, clock *fakeClock) {
		ctx := context.Background()

		if _, err := r.Upsert(ctx, report("u1", 1, 1)); err != nil {
			t.Fatalf("first upsert: %v", err)
		}
		clock.Advance(time.Second)
		second := report("u1", 2, 3)
		second.Speed = models.Float64(4.2)
		if _, err := r.Upsert(ctx, second); err != nil {
			t.Fatalf("second upsert: %v", err)
		}

		list, err := r.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(list))
		}
		got := list[0]
		if got.Latitude != 2 || got.Longitude != 3 {
			t.Errorf("expected second coordinates (2,3), got (%v,%v)", got.Latitude, got.Longitude)
		}
		if got.Speed == nil || *got.Speed != 4.2 {
			t.Errorf("expected speed 4.2, got %v", got.Speed)
		}
		if !got.ReceivedAt.Equal(clock.Now()) {
			t.Errorf("ReceivedAt = %v, want %v", got.ReceivedAt, clock.Now())
		}
	})
}

func TestUpsert_StampsReceivedAtEveryCall(t *testing.T) {
	backends(t, func(t *testing.T, r Registry, clock *fakeClock) {
		ctx := context.Background()
		rep := report("u1", 10, 20)
		rep.ReceivedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)

		first, err := r.Upsert(ctx, rep)
		if err != nil {
			t.Fatalf("Upsert: %v", err)
		}
		if !first.ReceivedAt.Equal(clock.Now()) {
			t.Errorf("client ReceivedAt must be ignored, got %v", first.ReceivedAt)
		}

		clock.Advance(30 * time.Second)
		second, err := r.Upsert(ctx, rep)
		if err != nil {
			t.Fatalf("Upsert: %v", err)
		}
		if !second.ReceivedAt.After(first.ReceivedAt) {
			t.Errorf("ReceivedAt should advance on identical content: %v then %v", first.ReceivedAt, second.ReceivedAt)
		}

		n, err := r.Count(ctx)
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if n != 1 {
			t.Errorf("identical upserts should keep one entry, got %d", n)
		}
	})
}

func TestUpsert_DistinctUsers(t *testing.T) {
	backends(t, func(t *testing.T, r Registry, _ *fakeClock) {
		ctx := context.Background()
		for _, id := range []string{"charlie", "alice", "bob"} {
			if _, err := r.Upsert(ctx, report(id, 1, 2)); err != nil {
				t.Fatalf("Upsert(%s): %v", id, err)
			}
		}

		list, err := r.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		var ids []string
		for _, e := range list {
			ids = append(ids, e.UserID)
		}
		want := []string{"alice", "bob", "charlie"}
		if !reflect.DeepEqual(ids, want) {
			t.Errorf("List ids = %v, want %v", ids, want)
		}
	})
}

func TestUpsert_InvalidLeavesRegistryUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		report models.LocationReport
	}{
		{"missing user id", report("", 1, 2)},
		{"blank user id", report("   ", 1, 2)},
		{"nan latitude", report("u2", math.NaN(), 2)},
		{"inf longitude", report("u2", 1, math.Inf(-1))},
	}

	backends(t, func(t *testing.T, r Registry, _ *fakeClock) {
		ctx := context.Background()
		if _, err := r.Upsert(ctx, report("u1", 5, 5)); err != nil {
			t.Fatalf("seed: %v", err)
		}
		before, _ := r.List(ctx)

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := r.Upsert(ctx, tt.report)
				if !errors.Is(err, ErrInvalidReport) {
					t.Fatalf("expected ErrInvalidReport, got %v", err)
				}
				after, _ := r.List(ctx)
				if !reflect.DeepEqual(before, after) {
					t.Errorf("registry changed after invalid upsert: %v -> %v", before, after)
				}
			})
		}
	})
}

func TestList_HidesStaleBeforeSweep(t *testing.T) {
	backends(t, func(t *testing.T, r Registry, clock *fakeClock) {
		ctx := context.Background()
		if _, err := r.Upsert(ctx, report("old", 1, 1)); err != nil {
			t.Fatal(err)
		}
		clock.Advance(4 * time.Minute)
		if _, err := r.Upsert(ctx, report("new", 2, 2)); err != nil {
			t.Fatal(err)
		}
		clock.Advance(2 * time.Minute)

		list, err := r.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != 1 || list[0].UserID != "new" {
			t.Errorf("expected only 'new' visible, got %+v", list)
		}

		if _, err := r.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(stale) error = %v, want ErrNotFound", err)
		}

		// Still retained until the sweep runs.
		n, _ := r.Count(ctx)
		if n != 2 {
			t.Errorf("Count = %d, want 2 before sweep", n)
		}
	})
}

func TestEvictStale(t *testing.T) {
	backends(t, func(t *testing.T, r Registry, clock *fakeClock) {
		ctx := context.Background()
		for _, id := range []string{"a", "b"} {
			if _, err := r.Upsert(ctx, report(id, 1, 1)); err != nil {
				t.Fatal(err)
			}
		}
		clock.Advance(3 * time.Minute)
		if _, err := r.Upsert(ctx, report("c", 1, 1)); err != nil {
			t.Fatal(err)
		}
		clock.Advance(3 * time.Minute)

		evicted, err := r.EvictStale(ctx, clock.Now(), 5*time.Minute)
		if err != nil {
			t.Fatalf("EvictStale: %v", err)
		}
		if !reflect.DeepEqual(evicted, []string{"a", "b"}) {
			t.Errorf("evicted = %v, want [a b]", evicted)
		}

		n, _ := r.Count(ctx)
		if n != 1 {
			t.Errorf("Count after evict = %d, want 1", n)
		}
		if _, err := r.Get(ctx, "c"); err != nil {
			t.Errorf("in-window entry must survive eviction: %v", err)
		}

		again, err := r.EvictStale(ctx, clock.Now(), 5*time.Minute)
		if err != nil {
			t.Fatalf("second EvictStale: %v", err)
		}
		if len(again) != 0 {
			t.Errorf("second sweep evicted %v, want none", again)
		}
	})
}

func TestEvictStale_BoundaryIsKept(t *testing.T) {
	backends(t, func(t *testing.T, r Registry, clock *fakeClock) {
		ctx := context.Background()
		if _, err := r.Upsert(ctx, report("edge", 1, 1)); err != nil {
			t.Fatal(err)
		}
		clock.Advance(5 * time.Minute)

		evicted, err := r.EvictStale(ctx, clock.Now(), 5*time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if len(evicted) != 0 {
			t.Errorf("entry exactly at ttl should be kept, evicted %v", evicted)
		}
	})
}

func TestEvictStale_AfterSixMinutes(t *testing.T) {
	backends(t, func(t *testing.T, r Registry, clock *fakeClock) {
		ctx := context.Background()
		if _, err := r.Upsert(ctx, report("u1", 12.97, 77.59)); err != nil {
			t.Fatal(err)
		}
		clock.Advance(6 * time.Minute)

		if _, err := r.EvictStale(ctx, clock.Now(), r.TTL()); err != nil {
			t.Fatal(err)
		}
		list, err := r.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 0 {
			t.Errorf("expected empty list, got %+v", list)
		}
	})
}

func TestList_IdempotentRead(t *testing.T) {
	backends(t, func(t *testing.T, r Registry, _ *fakeClock) {
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			if _, err := r.Upsert(ctx, report(fmt.Sprintf("u%d", i), float64(i), float64(i))); err != nil {
				t.Fatal(err)
			}
		}
		first, _ := r.List(ctx)
		second, _ := r.List(ctx)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("repeated reads differ:\n%v\n%v", first, second)
		}
	})
}

func TestList_EmptyIsNotNil(t *testing.T) {
	backends(t, func(t *testing.T, r Registry, _ *fakeClock) {
		list, err := r.List(context.Background())
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if list == nil || len(list) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", list)
		}
	})
}

func TestList_ReturnsCopies(t *testing.T) {
	backends(t, func(t *testing.T, r Registry, _ *fakeClock) {
		ctx := context.Background()
		rep := report("u1", 1, 1)
		rep.Heading = models.Float64(90)
		if _, err := r.Upsert(ctx, rep); err != nil {
			t.Fatal(err)
		}

		list, _ := r.List(ctx)
		*list[0].Heading = 180
		list[0].Latitude = 50

		again, _ := r.Get(ctx, "u1")
		if *again.Heading != 90 || again.Latitude != 1 {
			t.Errorf("mutating a listed copy changed the registry: %+v", again)
		}
	})
}

func TestDelete(t *testing.T) {
	backends(t, func(t *testing.T, r Registry, _ *fakeClock) {
		ctx := context.Background()
		if _, err := r.Upsert(ctx, report("u1", 1, 1)); err != nil {
			t.Fatal(err)
		}

		existed, err := r.Delete(ctx, "u1")
		if err != nil || !existed {
			t.Fatalf("Delete = %v, %v; want true, nil", existed, err)
		}
		existed, err = r.Delete(ctx, "u1")
		if err != nil || existed {
			t.Errorf("second Delete = %v, %v; want false, nil", existed, err)
		}
		if _, err := r.Get(ctx, "u1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get after delete = %v, want ErrNotFound", err)
		}
	})
}

func TestConcurrentAccess(t *testing.T) {
	backends(t, func(t *testing.T, r Registry, clock *fakeClock) {
		ctx := context.Background()
		var wg sync.WaitGroup

		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					id := fmt.Sprintf("w%d-u%d", w, i%5)
					if _, err := r.Upsert(ctx, report(id, float64(i), float64(i))); err != nil {
						t.Errorf("Upsert: %v", err)
						return
					}
				}
			}(w)
		}

		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				list, err := r.List(ctx)
				if err != nil {
					t.Errorf("List: %v", err)
					return
				}
				for _, e := range list {
					if e.UserID == "" {
						t.Error("observed partially written entry")
						return
					}
				}
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				if _, err := r.EvictStale(ctx, clock.Now(), time.Minute); err != nil {
					t.Errorf("EvictStale: %v", err)
					return
				}
			}
		}()
		wg.Wait()

		n, err := r.Count(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if n != 20 {
			t.Errorf("Count = %d, want 20 distinct users", n)
		}
	})
}

func TestClosedRegistry(t *testing.T) {
	backends(t, func(t *testing.T, r Registry, _ *fakeClock) {
		if err := r.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if _, err := r.Upsert(context.Background(), report("u1", 1, 1)); !errors.Is(err, ErrClosed) {
			t.Errorf("Upsert after close = %v, want ErrClosed", err)
		}
		if _, err := r.List(context.Background()); !errors.Is(err, ErrClosed) {
			t.Errorf("List after close = %v, want ErrClosed", err)
		}
	})
}
