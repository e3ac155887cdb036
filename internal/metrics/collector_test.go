package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestRecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpSearch, 10*time.Millisecond)
	c.RecordTiming(OpSearch, 30*time.Millisecond)
	c.RecordTiming(OpEmbed, 5*time.Millisecond)

	snap := c.Snapshot()

	search, ok := snap.Operations[OpSearch]
	if !ok {
		t.Fatal("missing search operation in snapshot")
	}
	if search.Count != 2 {
		t.Errorf("search count = %d, want 2", search.Count)
	}
	if search.MinTimeMs != 10 || search.MaxTimeMs != 30 {
		t.Errorf("search min/max = %d/%d, want 10/30", search.MinTimeMs, search.MaxTimeMs)
	}
	if search.AvgTimeMs != 20 {
		t.Errorf("search avg = %v, want 20", search.AvgTimeMs)
	}

	embed := snap.Operations[OpEmbed]
	if embed.Count != 1 {
		t.Errorf("embed count = %d, want 1", embed.Count)
	}
}

func TestSnapshotEmpty(t *testing.T) {
	c := NewCollector()
	snap := c.Snapshot()
	if len(snap.Operations) != 0 {
		t.Errorf("empty collector has %d operations, want 0", len(snap.Operations))
	}
	if snap.UptimeSeconds < 0 {
		t.Errorf("uptime = %v, want >= 0", snap.UptimeSeconds)
	}
}

func TestConcurrentRecording(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RecordTiming(OpGenerate, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	if got := snap.Operations[OpGenerate].Count; got != 1000 {
		t.Errorf("generate count = %d, want 1000", got)
	}
}
