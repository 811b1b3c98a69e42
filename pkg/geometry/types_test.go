package geometry

import (
	"math"
	"testing"
)

func TestDistanceToSegment(t *testing.T) {
	tests := []struct {
		name string
		p    Point2D
		a, b Point2D
		want float64
	}{
		{
			name: "perpendicular to midpoint",
			p:    Point2D{X: 5, Y: 3},
			a:    Point2D{X: 0, Y: 0},
			b:    Point2D{X: 10, Y: 0},
			want: 3,
		},
		{
			name: "beyond start clamps to endpoint",
			p:    Point2D{X: -4, Y: 3},
			a:    Point2D{X: 0, Y: 0},
			b:    Point2D{X: 10, Y: 0},
			want: 5,
		},
		{
			name: "beyond end clamps to endpoint",
			p:    Point2D{X: 13, Y: 4},
			a:    Point2D{X: 0, Y: 0},
			b:    Point2D{X: 10, Y: 0},
			want: 5,
		},
		{
			name: "on the segment",
			p:    Point2D{X: 2, Y: 0},
			a:    Point2D{X: 0, Y: 0},
			b:    Point2D{X: 10, Y: 0},
			want: 0,
		},
		{
			name: "degenerate segment is point distance",
			p:    Point2D{X: 3, Y: 4},
			a:    Point2D{X: 0, Y: 0},
			b:    Point2D{X: 0, Y: 0},
			want: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceToSegment(tt.p, tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DistanceToSegment() = %v, want %v", got, tt.want)
			}
		})
	}
}
