package reader

import (
	"errors"
	"io"
	"testing"

	"github.com/desertthunder/bookx/internal/models"
	"github.com/desertthunder/bookx/internal/shared"
	tu "github.com/desertthunder/bookx/internal/testing"
)

var testLogger = shared.NewLogger(io.Discard)

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		index, pageCount, want int
	}{
		{4, 5, 100},
		{0, 5, 20},
		{0, 3, 33},
		{1, 3, 67},
		{0, 1, 100},
		{0, 0, 0},
	}

	for _, tt := range tests {
		if got := ProgressPercent(tt.index, tt.pageCount); got != tt.want {
			t.Errorf("ProgressPercent(%d, %d) = %d, want %d", tt.index, tt.pageCount, got, tt.want)
		}
	}
}

func TestTracker(t *testing.T) {
	t.Run("GoToPage In Range", func(t *testing.T) {
		tracker := NewTracker(nil, "", 10, testLogger)
		for i := range 10 {
			if !tracker.GoToPage(i) {
				t.Fatalf("GoToPage(%d) rejected", i)
			}
			if got := tracker.Current(); got != i {
				t.Errorf("after GoToPage(%d) current = %d", i, got)
			}
		}
	})

	t.Run("GoToPage Out Of Range Is A No-op", func(t *testing.T) {
		lib := &tu.FakeLibrary{}
		tracker := NewTracker(lib, "40", 10, testLogger)
		tracker.GoToPage(9)
		tracker.Wait()

		for _, index := range []int{10, 11, -1} {
			if tracker.GoToPage(index) {
				t.Errorf("GoToPage(%d) should be rejected", index)
			}
			if got := tracker.Current(); got != 9 {
				t.Errorf("GoToPage(%d) moved to %d", index, got)
			}
		}

		tracker.Wait()
		if n := len(lib.Updates()); n != 1 {
			t.Errorf("expected only the in-range write, got %d", n)
		}
	})

	t.Run("Next And Prev Stop At Edges", func(t *testing.T) {
		tracker := NewTracker(nil, "", 3, testLogger)

		if tracker.Prev() {
			t.Error("Prev on first page should report false")
		}
		tracker.Next()
		tracker.Next()
		if tracker.Next() {
			t.Error("Next on last page should report false")
		}
		if tracker.Current() != 2 {
			t.Errorf("expected last page, got %d", tracker.Current())
		}
	})

	t.Run("Resume", func(t *testing.T) {
		tests := []struct {
			name       string
			remotePage int
			pageCount  int
			want       int
		}{
			{name: "fewer pages than recorded", remotePage: 7, pageCount: 5, want: 4},
			{name: "within book", remotePage: 3, pageCount: 5, want: 2},
			{name: "no remote page", remotePage: 0, pageCount: 5, want: 0},
			{name: "negative remote page", remotePage: -2, pageCount: 5, want: 0},
			{name: "empty book", remotePage: 4, pageCount: 0, want: 0},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				lib := &tu.FakeLibrary{}
				tracker := NewTracker(lib, "40", tt.pageCount, testLogger)

				if got := tracker.Resume(tt.remotePage); got != tt.want {
					t.Errorf("Resume(%d) = %d, want %d", tt.remotePage, got, tt.want)
				}
				if got := tracker.Current(); got != tt.want {
					t.Errorf("Current() = %d, want %d", got, tt.want)
				}

				tracker.Wait()
				if n := len(lib.Updates()); n != 0 {
					t.Errorf("Resume should not write progress, got %d writes", n)
				}
			})
		}
	})

	t.Run("Writes Progress", func(t *testing.T) {
		lib := &tu.FakeLibrary{}
		tracker := NewTracker(lib, "40", 5, testLogger)

		tracker.GoToPage(4)
		tracker.Wait()

		updates := lib.Updates()
		if len(updates) != 1 {
			t.Fatalf("expected 1 write, got %d", len(updates))
		}
		want := models.ProgressUpdate{CurrentPage: 5, TotalPages: 5, Progress: 100}
		if updates[0].RecordID != "40" || updates[0].ProgressUpdate != want {
			t.Errorf("unexpected write %+v", updates[0])
		}

		pos := tracker.Position()
		if pos != (models.ReadingPosition{CurrentPageIndex: 4, PageCount: 5, ProgressPercent: 100}) {
			t.Errorf("unexpected position %+v", pos)
		}
	})

	t.Run("Index Updates Before Write Completes", func(t *testing.T) {
		lib := &tu.FakeLibrary{Release: make(chan struct{})}
		tracker := NewTracker(lib, "40", 5, testLogger)

		if !tracker.GoToPage(2) {
			t.Fatal("GoToPage(2) rejected")
		}
		if tracker.Current() != 2 {
			t.Errorf("expected current 2 while write is pending, got %d", tracker.Current())
		}
		if n := len(lib.Updates()); n != 0 {
			t.Errorf("write should still be pending, got %d", n)
		}

		close(lib.Release)
		tracker.Wait()
		if n := len(lib.Updates()); n != 1 {
			t.Errorf("expected 1 write after release, got %d", n)
		}
	})

	t.Run("Failed Write Is Swallowed", func(t *testing.T) {
		lib := &tu.FakeLibrary{UpdateErr: errors.New("network down")}
		tracker := NewTracker(lib, "40", 5, testLogger)

		if !tracker.GoToPage(3) {
			t.Fatal("GoToPage(3) rejected")
		}
		tracker.Wait()

		if tracker.Current() != 3 {
			t.Errorf("failed write should not revert navigation, got %d", tracker.Current())
		}
		if n := len(lib.Updates()); n != 1 {
			t.Errorf("failed write should not be retried, got %d attempts", n)
		}
	})

	t.Run("Local Only Without Record", func(t *testing.T) {
		lib := &tu.FakeLibrary{}
		tracker := NewTracker(lib, "", 5, testLogger)

		tracker.GoToPage(1)
		tracker.Wait()

		if tracker.Synced() {
			t.Error("tracker without record should not be synced")
		}
		if n := len(lib.Updates()); n != 0 {
			t.Errorf("expected no writes, got %d", n)
		}
	})

	t.Run("Stale Ack Changes Nothing", func(t *testing.T) {
		lib := &tu.FakeLibrary{}
		tracker := NewTracker(lib, "40", 5, testLogger)

		tracker.wg.Add(2)
		tracker.persist(2, models.ProgressUpdate{CurrentPage: 3, TotalPages: 5, Progress: 60})
		tracker.persist(1, models.ProgressUpdate{CurrentPage: 2, TotalPages: 5, Progress: 40})

		if tracker.acked != 2 {
			t.Errorf("expected newest ack to stay 2, got %d", tracker.acked)
		}
		if tracker.Current() != 0 {
			t.Errorf("acks should not move the index, got %d", tracker.Current())
		}
	})

	t.Run("Rapid Navigation Writes Every Page", func(t *testing.T) {
		lib := &tu.FakeLibrary{}
		tracker := NewTracker(lib, "40", 20, testLogger)

		for range 19 {
			tracker.Next()
		}
		tracker.Wait()

		if tracker.Current() != 19 {
			t.Errorf("expected last page, got %d", tracker.Current())
		}
		if n := len(lib.Updates()); n != 19 {
			t.Errorf("expected 19 writes, got %d", n)
		}
	})
}
