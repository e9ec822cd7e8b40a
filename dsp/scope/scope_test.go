package scope

import (
	"sync"
	"testing"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size=0")
	}

	b, err := New(DefaultSize)
	if err != nil {
		t.Fatal(err)
	}

	if b.Len() != DefaultSize {
		t.Fatalf("Len() = %d, want %d", b.Len(), DefaultSize)
	}
}

func TestWriteSampleKeepsChronologicalOrder(t *testing.T) {
	b, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 6; i++ {
		b.WriteSample(float64(i))
	}

	want := []float64{3, 4, 5, 6}
	for i, w := range want {
		if got := b.ReadSample(i); got != w {
			t.Fatalf("ReadSample(%d) = %v, want %v", i, got, w)
		}
	}

	if b.Written() != 6 {
		t.Fatalf("Written() = %d, want 6", b.Written())
	}
}

func TestReadSampleBeforeFull(t *testing.T) {
	b, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	b.WriteSample(7)

	// The newest sample sits at the end; the rest is initial silence.
	want := []float64{0, 0, 0, 7}
	for i, w := range want {
		if got := b.ReadSample(i); got != w {
			t.Fatalf("ReadSample(%d) = %v, want %v", i, got, w)
		}
	}

	if got := b.ReadSample(-1); got != 0 {
		t.Fatalf("ReadSample(-1) = %v, want 0", got)
	}

	if got := b.ReadSample(4); got != 0 {
		t.Fatalf("ReadSample(4) = %v, want 0", got)
	}
}

func TestSnapshotMatchesReadSample(t *testing.T) {
	b, err := New(5)
	if err != nil {
		t.Fatal(err)
	}

	b.Write([]float64{1, 2, 3, 4, 5, 6, 7})

	dst := make([]float64, 0, 8)
	snap := b.Snapshot(dst)

	if len(snap) != 5 {
		t.Fatalf("len(snap) = %d, want 5", len(snap))
	}

	if &snap[0] != &dst[:1][0] {
		t.Fatal("Snapshot did not reuse dst capacity")
	}

	for i, v := range snap {
		if want := b.ReadSample(i); v != want {
			t.Fatalf("snap[%d] = %v, ReadSample = %v", i, v, want)
		}
	}

	if snap[0] != 3 || snap[4] != 7 {
		t.Fatalf("unexpected snapshot %v", snap)
	}
}

func TestLatest(t *testing.T) {
	b, err := New(5)
	if err != nil {
		t.Fatal(err)
	}

	b.Write([]float64{1, 2, 3, 4, 5, 6, 7})

	got := b.Latest(make([]float64, 3))
	want := []float64{5, 6, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Latest() = %v, want %v", got, want)
		}
	}

	if got := b.Latest(make([]float64, 9)); len(got) != 5 {
		t.Fatalf("len(Latest) = %d, want 5", len(got))
	}
}

func TestReset(t *testing.T) {
	b, err := New(3)
	if err != nil {
		t.Fatal(err)
	}

	b.Write([]float64{1, 2, 3})
	b.Reset()

	for i := range 3 {
		if got := b.ReadSample(i); got != 0 {
			t.Fatalf("ReadSample(%d) after Reset = %v", i, got)
		}
	}
}

func TestConcurrentReaderSeesWrittenValues(t *testing.T) {
	b, err := New(256)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		for i := range 100000 {
			b.WriteSample(float64(i%7) - 3)
		}
	}()

	buf := make([]float64, 0, 256)
	for range 200 {
		buf = b.Snapshot(buf)
		for i, v := range buf {
			if v < -3 || v > 3 || v != float64(int(v)) {
				t.Fatalf("snapshot[%d] = %v is not a written value", i, v)
			}
		}
	}

	wg.Wait()
}

func TestWriteSampleDoesNotAllocate(t *testing.T) {
	b, err := New(1024)
	if err != nil {
		t.Fatal(err)
	}

	allocs := testing.AllocsPerRun(100, func() {
		b.WriteSample(0.25)
	})
	if allocs != 0 {
		t.Fatalf("WriteSample allocated %v times per run", allocs)
	}
}
