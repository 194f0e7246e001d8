package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/labortrack/labortrack/internal/variance"
	"github.com/labortrack/labortrack/pkg/types"
)

// fixedClock returns a func() time.Time that always returns t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

var baseTime = time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC)

func testJob(id int64, l types.Lifecycle) types.Job {
	return types.Job{
		ID:             id,
		Name:           "job",
		EstimatedHours: 500,
		ExpectedWeeks:  10,
		Lifecycle:      l,
	}
}

func TestGet(t *testing.T) {
	st := New([]types.Job{testJob(1, types.LifecycleActive)})

	j, ok := st.Get(1)
	if !ok {
		t.Fatal("Get: expected job, got none")
	}
	if j.EstimatedHours != 500 {
		t.Errorf("EstimatedHours: got %.0f, want 500", j.EstimatedHours)
	}
	if _, ok := st.Get(2); ok {
		t.Error("Get(2): expected false for unknown job")
	}
}

func TestList_FiltersAndOrders(t *testing.T) {
	st := New([]types.Job{
		testJob(3, types.LifecycleActive),
		testJob(1, types.LifecycleArchived),
		testJob(2, types.LifecycleActive),
	})

	all := st.List("")
	if len(all) != 3 {
		t.Fatalf("List(all): got %d jobs, want 3", len(all))
	}
	for i, want := range []int64{1, 2, 3} {
		if all[i].ID != want {
			t.Errorf("List(all)[%d].ID = %d, want %d", i, all[i].ID, want)
		}
	}

	active := st.List(types.LifecycleActive)
	if len(active) != 2 || active[0].ID != 2 || active[1].ID != 3 {
		t.Errorf("List(active): got %+v", active)
	}
	archived := st.List(types.LifecycleArchived)
	if len(archived) != 1 || archived[0].ID != 1 {
		t.Errorf("List(archived): got %+v", archived)
	}
}

func TestAddUpdate(t *testing.T) {
	st := New([]types.Job{testJob(1, types.LifecycleActive)})
	st.now = fixedClock(baseTime)

	u, err := st.AddUpdate(1, 120, 25)
	if err != nil {
		t.Fatalf("AddUpdate: %v", err)
	}
	if !u.CreatedAt.Equal(baseTime) {
		t.Errorf("CreatedAt: got %v, want %v", u.CreatedAt, baseTime)
	}

	st.now = fixedClock(baseTime.Add(7 * 24 * time.Hour))
	if _, err := st.AddUpdate(1, 250, 50); err != nil {
		t.Fatalf("AddUpdate: %v", err)
	}

	j, _ := st.Get(1)
	if len(j.Updates) != 2 {
		t.Fatalf("Updates: got %d, want 2", len(j.Updates))
	}
	latest, _ := j.Latest()
	if latest.ActualHours != 250 || latest.PercentComplete != 50 {
		t.Errorf("Latest: got %+v", latest)
	}
}

func TestAddUpdate_ClockStepsBack(t *testing.T) {
	st := New([]types.Job{testJob(1, types.LifecycleActive)})
	st.now = fixedClock(baseTime)
	st.AddUpdate(1, 10, 5) //nolint:errcheck

	st.now = fixedClock(baseTime.Add(-time.Hour))
	u, err := st.AddUpdate(1, 20, 10)
	if err != nil {
		t.Fatalf("AddUpdate: %v", err)
	}
	if u.CreatedAt.Before(baseTime) {
		t.Errorf("CreatedAt %v precedes previous update %v", u.CreatedAt, baseTime)
	}
}

func TestAddUpdate_Errors(t *testing.T) {
	st := New([]types.Job{testJob(1, types.LifecycleActive)})

	if _, err := st.AddUpdate(9, 10, 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown job: err = %v, want ErrNotFound", err)
	}
	if _, err := st.AddUpdate(1, 10, 101); !errors.Is(err, variance.ErrInvalidInput) {
		t.Errorf("percent 101: err = %v, want ErrInvalidInput", err)
	}
	if _, err := st.AddUpdate(1, -1, 10); !errors.Is(err, variance.ErrInvalidInput) {
		t.Errorf("negative hours: err = %v, want ErrInvalidInput", err)
	}
	if _, err := st.AddUpdate(1, 10, 1e-320); !errors.Is(err, variance.ErrInvalidInput) {
		t.Errorf("vanishing percent: err = %v, want ErrInvalidInput", err)
	}

	j, _ := st.Get(1)
	if len(j.Updates) != 0 {
		t.Errorf("rejected updates were stored: %+v", j.Updates)
	}
}

func TestSetLifecycle(t *testing.T) {
	st := New([]types.Job{testJob(1, types.LifecycleActive)})

	j, err := st.SetLifecycle(1, types.LifecycleArchived)
	if err != nil {
		t.Fatalf("SetLifecycle: %v", err)
	}
	if j.Lifecycle != types.LifecycleArchived {
		t.Errorf("Lifecycle: got %q, want archived", j.Lifecycle)
	}
	if n := len(st.List(types.LifecycleActive)); n != 0 {
		t.Errorf("List(active) after archive: got %d, want 0", n)
	}

	if _, err := st.SetLifecycle(1, "deleted"); !errors.Is(err, ErrInvalidLifecycle) {
		t.Errorf("bad lifecycle: err = %v, want ErrInvalidLifecycle", err)
	}
	if _, err := st.SetLifecycle(5, types.LifecycleActive); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown job: err = %v, want ErrNotFound", err)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	j := testJob(1, types.LifecycleActive)
	j.Updates = []types.WeeklyUpdate{{ActualHours: 10, PercentComplete: 5}}
	st := New([]types.Job{j})

	got, _ := st.Get(1)
	got.Updates[0].ActualHours = 999

	again, _ := st.Get(1)
	if again.Updates[0].ActualHours != 10 {
		t.Errorf("mutating a returned job leaked into the store: %+v", again.Updates[0])
	}
}

func TestReplace(t *testing.T) {
	st := New([]types.Job{testJob(1, types.LifecycleActive)})
	st.Replace([]types.Job{testJob(7, types.LifecycleActive), testJob(8, types.LifecycleActive)})

	if st.Count() != 2 {
		t.Errorf("Count: got %d, want 2", st.Count())
	}
	if _, ok := st.Get(1); ok {
		t.Error("job 1 should be gone after Replace")
	}
}

func TestConcurrentMixedOps(t *testing.T) {
	st := New([]types.Job{testJob(1, types.LifecycleActive)})
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			st.AddUpdate(1, float64(n), 50) //nolint:errcheck
		}(i)
		go func() {
			defer wg.Done()
			st.List("")
		}()
	}
	wg.Wait()

	j, _ := st.Get(1)
	if len(j.Updates) != 50 {
		t.Errorf("Updates after concurrent adds: got %d, want 50", len(j.Updates))
	}
}

func TestCreate(t *testing.T) {
	st := New([]types.Job{testJob(4, types.LifecycleArchived)})
	st.now = fixedClock(baseTime)

	j, err := st.Create("Clinic refit", 320, 8)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if j.ID != 5 {
		t.Errorf("ID: got %d, want 5", j.ID)
	}
	if j.Lifecycle != types.LifecycleActive || !j.CreatedAt.Equal(baseTime) {
		t.Errorf("job: got %+v", j)
	}
	if got, ok := st.Get(5); !ok || got.Name != "Clinic refit" {
		t.Errorf("Get(5): got %+v, %v", got, ok)
	}

	empty := New(nil)
	if j, _ := empty.Create("first", 10, 1); j.ID != 1 {
		t.Errorf("first ID in empty ledger: got %d, want 1", j.ID)
	}
}

func TestCreate_Invalid(t *testing.T) {
	st := New(nil)
	tests := []struct {
		name  string
		job   string
		hours float64
		weeks int
	}{
		{"no name", "", 10, 1},
		{"zero hours", "x", 0, 1},
		{"negative hours", "x", -5, 1},
		{"zero weeks", "x", 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := st.Create(tt.job, tt.hours, tt.weeks); !errors.Is(err, variance.ErrInvalidInput) {
				t.Errorf("got %v, want ErrInvalidInput", err)
			}
		})
	}
	if st.Count() != 0 {
		t.Errorf("Count after invalid creates: got %d", st.Count())
	}
}
