package geometry

import (
	"math"
)

type Point struct {
	X float64
	Y float64
}

type Vector2 = Point

// Polyline is an open sequence of points.
type Polyline []Point

// Polygon is a closed ring of points. The closing edge from the last point
// back to the first is implicit; callers must not duplicate the first point.
type Polygon []Point

// Arc is a circular arc used when flattening outline geometry.
type Arc struct {
	Start     Point
	End       Point
	Center    Point
	Clockwise bool
}

func (a Vector2) Minus(b Vector2) Vector2 {
	return Vector2{
		X: a.X - b.X,
		Y: a.Y - b.Y,
	}
}

func (a Vector2) Add(b Vector2) Vector2 {
	return Vector2{
		X: a.X + b.X,
		Y: a.Y + b.Y,
	}
}

func (v Vector2) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

func (a Vector2) CrossProductZ(b Vector2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Distance returns the distance between two points.
func (p Point) Distance(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Scale returns the point scaled by the given factor f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Normalize returns the unit vector in the direction of v, or the zero vector
// if v has no magnitude.
func (v Vector2) Normalize() Vector2 {
	m := v.Magnitude()
	if m == 0 {
		return Vector2{}
	}
	return v.Scale(1 / m)
}

// SignedArea returns the shoelace area of the ring: positive for
// counterclockwise winding, negative for clockwise.
func (ring Polygon) SignedArea() float64 {
	sum := 0.0
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		sum += p.CrossProductZ(q)
	}
	return sum / 2
}

// Area returns the enclosed area of the ring regardless of winding.
func (ring Polygon) Area() float64 {
	return math.Abs(ring.SignedArea())
}

// Reverse returns a copy of the ring with the opposite winding.
func (ring Polygon) Reverse() Polygon {
	out := make(Polygon, len(ring))
	for i, p := range ring {
		out[len(ring)-1-i] = p
	}
	return out
}

// Flatten approximates the arc with a polyline whose chords deviate from the
// true arc by at most tol. The returned points exclude the arc's start point
// and include its end point.
func (a Arc) Flatten(tol float64) []Point {
	radius := a.Start.Distance(a.Center)
	if radius == 0 {
		return []Point{a.End}
	}

	startAngle := math.Atan2(a.Start.Y-a.Center.Y, a.Start.X-a.Center.X)
	endAngle := math.Atan2(a.End.Y-a.Center.Y, a.End.X-a.Center.X)

	sweep := endAngle - startAngle
	if a.Clockwise {
		if sweep >= 0 {
			sweep -= 2 * math.Pi
		}
	} else {
		if sweep <= 0 {
			sweep += 2 * math.Pi
		}
	}

	// Chord deviation for a step angle θ is r*(1-cos(θ/2)).
	maxStep := 2 * math.Acos(math.Max(-1, 1-tol/radius))
	if maxStep <= 0 {
		maxStep = math.Pi / 18
	}
	steps := int(math.Ceil(math.Abs(sweep) / maxStep))
	if steps < 1 {
		steps = 1
	}

	points := make([]Point, 0, steps)
	for i := 1; i < steps; i++ {
		angle := startAngle + sweep*float64(i)/float64(steps)
		points = append(points, Point{
			X: a.Center.X + radius*math.Cos(angle),
			Y: a.Center.Y + radius*math.Sin(angle),
		})
	}
	return append(points, a.End)
}

// SlotPolygon builds the round-capped rectangle swept by a circle of the given
// width moving from a to b, wound counterclockwise. capSegments controls how
// many segments approximate each semicircular end cap. Returns nil for a
// degenerate (zero length or zero width) slot.
func SlotPolygon(a, b Point, width float64, capSegments int) Polygon {
	r := width / 2
	if r <= 0 || a.Distance(b) == 0 {
		return nil
	}
	if capSegments < 2 {
		capSegments = 2
	}

	u := b.Minus(a).Normalize()
	// Left-hand normal of the travel direction.
	n := Point{X: -u.Y, Y: u.X}

	heading := math.Atan2(n.Y, n.X)
	capArc := func(center Point, fromAngle float64) []Point {
		points := make([]Point, 0, capSegments)
		for i := 1; i <= capSegments; i++ {
			angle := fromAngle - math.Pi*float64(i)/float64(capSegments)
			points = append(points, Point{
				X: center.X + r*math.Cos(angle),
				Y: center.Y + r*math.Sin(angle),
			})
		}
		return points
	}

	ring := Polygon{a.Add(n.Scale(r)), b.Add(n.Scale(r))}
	ring = append(ring, capArc(b, heading)...)
	ring = append(ring, a.Minus(n.Scale(r)))
	ring = append(ring, capArc(a, heading+math.Pi)...)
	// The last cap point coincides with the ring start.
	ring = ring[:len(ring)-1]

	if ring.SignedArea() < 0 {
		ring = ring.Reverse()
	}
	return ring
}
