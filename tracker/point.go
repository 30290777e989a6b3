package tracker

import "gonum.org/v1/gonum/floats"

// Point is a 2D position in normalized frame coordinates
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance between two points
func Distance(a, b Point) float64 {
	return floats.Distance([]float64{a.X, a.Y}, []float64{b.X, b.Y}, 2)
}
