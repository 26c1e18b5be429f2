package forge

import "testing"

func TestTargetBitrateKbpsMean(t *testing.T) {
	got := targetBitrateKbps([]int64{128000, 130000, 126000}, 192)
	if got != 128 {
		t.Fatalf("target = %d, want 128", got)
	}
}

func TestTargetBitrateKbpsCapped(t *testing.T) {
	got := targetBitrateKbps([]int64{320000, 320000}, 192)
	if got != 192 {
		t.Fatalf("target = %d, want cap 192", got)
	}
}

func TestTargetBitrateKbpsIgnoresUnreadable(t *testing.T) {
	got := targetBitrateKbps([]int64{0, -1, 96000}, 192)
	if got != 96 {
		t.Fatalf("target = %d, want 96", got)
	}
}

func TestTargetBitrateKbpsFallsBackToCap(t *testing.T) {
	if got := targetBitrateKbps(nil, 192); got != 192 {
		t.Fatalf("target = %d, want 192", got)
	}
	if got := targetBitrateKbps([]int64{0, 0}, 128); got != 128 {
		t.Fatalf("target = %d, want 128", got)
	}
}
