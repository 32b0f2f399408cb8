package bounds

import (
	"math"
	"testing"
)

func box(s, w, n, e float64) Box {
	return Box{South: s, West: w, North: n, East: e}
}

func TestSignificantChange(t *testing.T) {
	prev := box(50.0, 7.0, 50.1, 7.2) // span 0.1 lat, 0.2 lon

	tests := []struct {
		name string
		prev *Box
		next Box
		want bool
	}{
		{
			name: "no previous box",
			prev: nil,
			next: prev,
			want: true,
		},
		{
			name: "identical box",
			prev: &prev,
			next: prev,
			want: false,
		},
		{
			name: "small pan under 25 percent",
			prev: &prev,
			next: box(50.02, 7.04, 50.12, 7.24),
			want: false,
		},
		{
			name: "pan north over 25 percent of lat span",
			prev: &prev,
			next: box(50.03, 7.0, 50.13, 7.2),
			want: true,
		},
		{
			name: "pan east over 25 percent of lon span",
			prev: &prev,
			next: box(50.0, 7.06, 50.1, 7.26),
			want: true,
		},
		{
			name: "zoom in 2x per axis shrinks area 4x",
			prev: &prev,
			next: box(50.025, 7.05, 50.075, 7.15),
			want: true,
		},
		{
			name: "zoom in slightly",
			prev: &prev,
			next: box(50.01, 7.02, 50.09, 7.18),
			want: false,
		},
		{
			name: "zoom out by more than 3x on one axis",
			prev: &prev,
			next: box(49.84, 7.0, 50.26, 7.2),
			want: true,
		},
		{
			name: "degenerate previous box",
			prev: &Box{South: 50, West: 7, North: 50, East: 7},
			next: prev,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SignificantChange(tt.prev, tt.next, DefaultThresholds())
			if got != tt.want {
				t.Errorf("SignificantChange() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSignificantChange_AreaGrowthOverThreeTimes(t *testing.T) {
	prev := box(0, 0, 1, 1)
	// Same center, each axis x1.8 -> area x3.24.
	next := box(-0.4, -0.4, 1.4, 1.4)
	if !SignificantChange(&prev, next, DefaultThresholds()) {
		t.Error("expected area growth above 3x to be significant")
	}

	// Same center, each axis x1.5 -> area x2.25.
	next = box(-0.25, -0.25, 1.25, 1.25)
	if SignificantChange(&prev, next, DefaultThresholds()) {
		t.Error("expected area growth below 3x to be ignored")
	}
}

func TestExpand(t *testing.T) {
	b := box(50.0, 7.0, 50.1, 7.2).Expand(0.25)

	want := box(49.975, 6.95, 50.125, 7.25)
	if !closeTo(b.South, want.South) || !closeTo(b.West, want.West) ||
		!closeTo(b.North, want.North) || !closeTo(b.East, want.East) {
		t.Errorf("Expand(0.25) = %+v, want %+v", b, want)
	}
}

func TestExpand_Overscan(t *testing.T) {
	b := box(0, 0, 1, 2).Expand(4.5)
	if !closeTo(b.LatSpan(), 10) || !closeTo(b.LonSpan(), 20) {
		t.Errorf("overscan spans = %v x %v, want 10 x 20", b.LatSpan(), b.LonSpan())
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Box
		wantErr bool
	}{
		{name: "valid", input: "50.1,7.0,50.2,7.1", want: box(50.1, 7.0, 50.2, 7.1)},
		{name: "spaces", input: " 50.1, 7.0 ,50.2,7.1", want: box(50.1, 7.0, 50.2, 7.1)},
		{name: "too few parts", input: "50.1,7.0,50.2", wantErr: true},
		{name: "not a number", input: "a,7.0,50.2,7.1", wantErr: true},
		{name: "inverted", input: "50.2,7.0,50.1,7.1", wantErr: true},
		{name: "out of range", input: "-91,7.0,50.1,7.1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBoxString(t *testing.T) {
	if got := box(50.1, 7, 50.2, 7.15).String(); got != "50.1,7,50.2,7.15" {
		t.Errorf("String() = %q", got)
	}
}

func TestSignificantAreaChange(t *testing.T) {
	prev := box(49.5, 6.5, 50.5, 7.5)

	if !SignificantAreaChange(nil, prev, DefaultAreaThresholds()) {
		t.Error("nil previous box should be significant")
	}
	if SignificantAreaChange(&prev, box(49.505, 6.505, 50.505, 7.505), DefaultAreaThresholds()) {
		t.Error("tiny drift should not be significant")
	}
	if !SignificantAreaChange(&prev, box(49.53, 6.5, 50.53, 7.5), DefaultAreaThresholds()) {
		t.Error("drift above 0.02 degrees should be significant")
	}
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
