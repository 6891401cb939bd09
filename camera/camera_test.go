package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNewFitsBoard(t *testing.T) {
	// Tall board in a square viewport: height limits the zoom.
	cam := New(0, 0, 720, 720, 360, 640)

	if !near(cam.Zoom, 720.0/640) {
		t.Errorf("zoom = %f, want %f", cam.Zoom, 720.0/640)
	}
	if cam.X != 180 || cam.Y != 320 {
		t.Errorf("expected camera at board center, got (%f, %f)", cam.X, cam.Y)
	}

	// Board corners land inside the viewport, centered horizontally.
	x0, y0 := cam.WorldToScreen(0, 0)
	x1, y1 := cam.WorldToScreen(360, 640)
	if !near(y0, 0) || !near(y1, 720) {
		t.Errorf("board spans y %f..%f, want 0..720", y0, y1)
	}
	if !near(x0, 720-x1) {
		t.Errorf("board not centered: x %f..%f", x0, x1)
	}
}

func TestViewportOffset(t *testing.T) {
	cam := New(200, 40, 360, 640, 360, 640)
	sx, sy := cam.WorldToScreen(0, 0)
	if !near(sx, 200) || !near(sy, 40) {
		t.Errorf("board origin at (%f, %f), want (200, 40)", sx, sy)
	}
	if !cam.Contains(250, 100) || cam.Contains(100, 100) {
		t.Error("Contains disagrees with the viewport rectangle")
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(100, 20, 540, 700, 360, 640)
	cam.ZoomBy(2)
	cam.Pan(30, -50)

	for _, tc := range []struct{ sx, sy float32 }{{370, 370}, {120, 40}, {600, 700}} {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)", tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(0, 0, 360, 640, 360, 640)

	cam.SetZoom(0.1)
	if cam.Zoom != cam.FitZoom {
		t.Errorf("zoom below fit clamped to %f, want %f", cam.Zoom, cam.FitZoom)
	}
	cam.SetZoom(100)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("zoom above max clamped to %f, want %f", cam.Zoom, cam.MaxZoom)
	}
}

func TestPanStaysOnBoard(t *testing.T) {
	cam := New(0, 0, 360, 640, 360, 640)
	cam.ZoomBy(2)
	cam.Pan(-10000, 10000)
	if cam.X != 0 || cam.Y != 640 {
		t.Errorf("pan clamped to (%f, %f), want (0, 640)", cam.X, cam.Y)
	}

	cam.Reset()
	if cam.Zoom != cam.FitZoom || cam.X != 180 {
		t.Error("Reset should show the whole board")
	}
}

func TestResizeKeepsRelativeZoom(t *testing.T) {
	cam := New(0, 0, 360, 640, 360, 640)
	cam.ZoomBy(2)

	cam.Resize(0, 0, 720, 1280)
	if !near(cam.Zoom/cam.FitZoom, 2) {
		t.Errorf("relative zoom = %f after resize, want 2", cam.Zoom/cam.FitZoom)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(0, 0, 360, 640, 360, 640)
	cam.ZoomBy(2) // shows x in [90, 270]

	tests := []struct {
		name       string
		x, w       float32
		wantResult bool
	}{
		{"inside", 150, 10, true},
		{"overlaps left edge", 60, 64, true},
		{"left of view", 0, 64, false},
		{"right of view", 300, 64, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cam.IsVisible(tt.x, 300, tt.w, 20); got != tt.wantResult {
				t.Errorf("IsVisible(x=%v, w=%v) = %v, want %v", tt.x, tt.w, got, tt.wantResult)
			}
		})
	}
}
