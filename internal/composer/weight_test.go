package composer

import (
	"math"
	"strconv"
	"testing"
)

func TestParseWeight(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{in: "100 kg", want: 100},
		{in: "12", want: 12},
		{in: "1,5 kg", want: 15},
		{in: "0 kg", want: DefaultWeight},
		{in: "000", want: DefaultWeight},
		{in: "", want: DefaultWeight},
		{in: "lourd", want: DefaultWeight},
		{in: "kg", want: DefaultWeight},
		{in: "99999999999999999999999 kg", want: math.MaxInt},
	}
	for _, tc := range tests {
		if got := ParseWeight(tc.in); got != tc.want {
			t.Fatalf("ParseWeight(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNoDigitsUsesDefaultBands(t *testing.T) {
	for _, in := range []string{"", "heavy", "très lourd !", "∞"} {
		if got, want := SizeBand(in), SizeBand("5"); got != want {
			t.Fatalf("SizeBand(%q) = %d, want default band %d", in, got, want)
		}
		if got, want := PoseBand(in), PoseBand("5"); got != want {
			t.Fatalf("PoseBand(%q) = %d, want default band %d", in, got, want)
		}
	}
}

func TestSizeBandBoundaries(t *testing.T) {
	tests := []struct {
		weight string
		want   int
	}{
		{weight: "0", want: 2},
		{weight: "", want: 2},
		{weight: "1", want: 0},
		{weight: "2", want: 1},
		{weight: "3", want: 1},
		{weight: "4", want: 2},
		{weight: "8", want: 2},
		{weight: "9", want: 3},
		{weight: "20", want: 3},
		{weight: "21", want: 4},
		{weight: "40", want: 4},
		{weight: "50", want: 4},
		{weight: "51", want: 5},
		{weight: "100", want: 5},
		{weight: "101", want: 6},
		{weight: "300", want: 6},
	}
	for _, tc := range tests {
		if got := SizeBand(tc.weight); got != tc.want {
			t.Fatalf("SizeBand(%q) = %d, want %d", tc.weight, got, tc.want)
		}
	}
}

func TestPoseBandBoundaries(t *testing.T) {
	tests := []struct {
		weight string
		want   int
	}{
		{weight: "1", want: 0},
		{weight: "9", want: 0},
		{weight: "10", want: 1},
		{weight: "20", want: 1},
		{weight: "39", want: 1},
		{weight: "40", want: 2},
		{weight: "300", want: 2},
	}
	for _, tc := range tests {
		if got := PoseBand(tc.weight); got != tc.want {
			t.Fatalf("PoseBand(%q) = %d, want %d", tc.weight, got, tc.want)
		}
	}
}

func TestBandsAreMonotonic(t *testing.T) {
	prevSize, prevPose := 0, 0
	for w := 0; w <= 400; w++ {
		weight := strconv.Itoa(w) + " kg"
		size, pose := SizeBand(weight), PoseBand(weight)
		if size < prevSize || pose < prevPose {
			t.Fatalf("bands decreased at %d kg: size %d->%d pose %d->%d", w, prevSize, size, prevPose, pose)
		}
		prevSize, prevPose = size, pose
	}
	if SizeDescription("1") == SizeDescription("300") {
		t.Fatal("smallest and largest bands must differ")
	}
}

func TestDescriptionsAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, band := range sizeBands {
		if seen[band.description] {
			t.Fatalf("duplicate size description %q", band.description)
		}
		seen[band.description] = true
	}
	seen = map[string]bool{}
	for _, band := range poseBands {
		if seen[band.instruction] {
			t.Fatalf("duplicate pose instruction %q", band.instruction)
		}
		seen[band.instruction] = true
	}
}
