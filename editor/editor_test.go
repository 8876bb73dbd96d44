package editor

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/Normaly0/galaxy-gen/galaxy"
)

func TestDragCommitsOnceOnRelease(t *testing.T) {
	e := New(galaxy.Defaults(), galaxy.Deferred)

	// A drag moves through many values
	for _, v := range []float64{2, 3, 4, 5, 6} {
		e.SetValue(Branches, v)
		if _, ok := e.Poll(); ok {
			t.Fatal("nothing should be committed while dragging")
		}
	}
	if !e.Editing() {
		t.Fatal("expected an edit in progress")
	}

	if !e.Release() {
		t.Fatal("expected release to commit")
	}
	p, ok := e.Poll()
	if !ok || p.Branches != 6 {
		t.Fatalf("expected one commit with 6 branches, got %v %+v", ok, p)
	}
	if _, ok := e.Poll(); ok {
		t.Error("commit should be taken once")
	}
}

func TestReleaseWithoutChangeDoesNotCommit(t *testing.T) {
	e := New(galaxy.Defaults(), galaxy.Deferred)
	start := e.Value(Spin)

	e.SetValue(Spin, 2)
	e.SetValue(Spin, start)
	if e.Release() {
		t.Error("returning to the committed value should not commit")
	}
	if _, ok := e.Poll(); ok {
		t.Error("unexpected commit")
	}
	if e.Release() {
		t.Error("release without a drag should not commit")
	}
}

func TestSetValueSnapsToRange(t *testing.T) {
	e := New(galaxy.Defaults(), galaxy.Deferred)

	tests := []struct {
		field Field
		in    float64
		want  float64
	}{
		{Count, 12345, 12300},
		{Count, 5, 100},
		{Count, 5e6, galaxy.MaxCount},
		{Branches, 3.6, 4},
		{Branches, 40, 15},
		{Radius, 4.26, 4.3},
		{Spin, -9, -5},
		{Randomness, 0.12345, 0.123},
		{RandomnessPower, 0, 1},
	}
	for _, tt := range tests {
		e.SetValue(tt.field, tt.in)
		if got := e.Value(tt.field); got-tt.want > 1e-9 || tt.want-got > 1e-9 {
			t.Errorf("%s: SetValue(%v) stored %v, want %v", tt.field.Label(), tt.in, got, tt.want)
		}
	}
}

func TestBakedSizeRange(t *testing.T) {
	p := galaxy.Defaults()
	p.Size = galaxy.DefaultBakedSize
	e := New(p, galaxy.Baked)

	r := e.Range(Size)
	if r.Max > 1 {
		t.Fatalf("baked size range should be in world units, got %+v", r)
	}
	e.SetValue(Size, 0.0234)
	if got := e.Value(Size); got < 0.0229 || got > 0.0231 {
		t.Errorf("expected size snapped to 0.023, got %v", got)
	}
}

func TestAnimateCommitsImmediately(t *testing.T) {
	e := New(galaxy.Defaults(), galaxy.Deferred)

	if !e.SetAnimate(true) {
		t.Fatal("expected animate toggle to apply")
	}
	p, ok := e.Poll()
	if !ok || !p.Animate {
		t.Fatalf("expected immediate commit with animate on, got %v %+v", ok, p)
	}
	if p.NeedsRebuild(galaxy.Defaults().Normalized()) {
		t.Error("animate toggle should not change the field")
	}
}

func TestBakedModeIgnoresAnimate(t *testing.T) {
	p := galaxy.Defaults()
	p.Animate = true
	e := New(p, galaxy.Baked)

	if e.Animate() {
		t.Error("baked editor should start with animate off")
	}
	if e.CanAnimate() || e.SetAnimate(true) {
		t.Error("baked editor should refuse the animate toggle")
	}
}

func TestSetColor(t *testing.T) {
	e := New(galaxy.Defaults(), galaxy.Deferred)
	red, _ := colorful.Hex("#ff0000")

	if !e.SetColor(Outside, red) {
		t.Fatal("expected color change")
	}
	if e.SetColor(Outside, red) {
		t.Error("same color should not count as a change")
	}
	e.Release()
	p, ok := e.Poll()
	if !ok || p.OutsideColor != "#ff0000" || p.InsideColor != galaxy.Defaults().InsideColor {
		t.Errorf("unexpected commit %v %+v", ok, p)
	}
	if got := e.Color(Outside).Hex(); got != "#ff0000" {
		t.Errorf("Color(Outside) = %s", got)
	}
}

func TestSyncSkippedWhileEditing(t *testing.T) {
	e := New(galaxy.Defaults(), galaxy.Deferred)
	reloaded := galaxy.Defaults()
	reloaded.Radius = 8

	e.SetValue(Radius, 2)
	e.Sync(reloaded)
	if e.Value(Radius) != 2 {
		t.Errorf("sync should not clobber an edit in progress, radius = %v", e.Value(Radius))
	}

	e.Release()
	e.Poll()
	e.Sync(reloaded)
	if e.Value(Radius) != 8 || e.Committed().Radius != 8 {
		t.Errorf("expected synced radius 8, got %v", e.Value(Radius))
	}
	if _, ok := e.Poll(); ok {
		t.Error("sync should not produce a commit")
	}
}

func TestFieldFormat(t *testing.T) {
	tests := []struct {
		field Field
		v     float64
		want  string
	}{
		{Count, 350000, "350000"},
		{Branches, 3, "3"},
		{Size, 15, "15"},
		{Size, 0.01, "0.010"},
		{Radius, 5, "5.0"},
		{Spin, 1, "1.000"},
	}
	for _, tt := range tests {
		if got := tt.field.Format(tt.v); got != tt.want {
			t.Errorf("%s.Format(%v) = %q, want %q", tt.field.Label(), tt.v, got, tt.want)
		}
	}
}
