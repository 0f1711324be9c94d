package compose

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestMinDuration(t *testing.T) {
	cases := []struct{ a, b, want float64 }{
		{5.0, 10.0, 5.0},
		{10.0, 5.0, 5.0},
		{3.3, 3.3, 3.3},
		{0, 7.5, 0},
	}
	for _, tc := range cases {
		if got := MinDuration(tc.a, tc.b); got != tc.want {
			t.Errorf("MinDuration(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestStackFilter(t *testing.T) {
	filter := StackFilter(1280, 720)

	// Both inputs halve the frame height; input 0 lands on top.
	if !strings.Contains(filter, "scale=1280:360") {
		t.Errorf("filter should scale to half height: %s", filter)
	}
	if !strings.Contains(filter, "vstack=inputs=2") {
		t.Errorf("filter should vstack two inputs: %s", filter)
	}
	top := strings.Index(filter, "[top]")
	bottom := strings.Index(filter, "[bottom]")
	if top < 0 || bottom < 0 || top > bottom {
		t.Errorf("input 0 must map to the top half: %s", filter)
	}
	if !strings.Contains(filter, "[top][bottom]vstack") {
		t.Errorf("stack order must be top then bottom: %s", filter)
	}
}

func TestConcatListPreservesOrder(t *testing.T) {
	clips := []string{"/run/red.mp4", "/run/green.mp4", "/run/blue.mp4"}
	body := ConcatList(clips)

	lines := strings.Split(body, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for i, clip := range clips {
		want := "file '" + clip + "'"
		if lines[i] != want {
			t.Errorf("line %d = %q, want %q", i, lines[i], want)
		}
	}
}

func TestAssembleReelEmptyInput(t *testing.T) {
	a := NewAssembler()
	err := a.AssembleReel(context.Background(), nil, filepath.Join(t.TempDir(), "reel.mp4"))
	if !errors.Is(err, ErrAssembly) {
		t.Fatalf("err = %v, want ErrAssembly", err)
	}
}

func TestComposeSceneUnreadableInput(t *testing.T) {
	c := NewComposer(1280, 720)
	dir := t.TempDir()
	err := c.ComposeScene(context.Background(),
		filepath.Join(dir, "missing_explainer.mp4"),
		filepath.Join(dir, "missing_avatar.mp4"),
		filepath.Join(dir, "clip.mp4"))
	if !errors.Is(err, ErrComposition) {
		t.Fatalf("err = %v, want ErrComposition", err)
	}
}
