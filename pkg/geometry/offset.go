package geometry

import (
	"math"
)

// Tolerances for the offset engine. Inputs are in millimeters, so 1nm is far
// below any machining-relevant scale.
const (
	offsetEpsilon = 1e-9
	minRingArea   = 1e-6
)

// Offset returns the ring(s) at signed distance d from the given ring:
// positive d grows the ring outward, negative d shrinks it. Joins are mitred.
// The result may be empty (the ring vanished) or contain several rings (the
// topology split); both are valid outcomes the caller must handle. Output
// rings are wound counterclockwise.
func Offset(ring Polygon, d float64) []Polygon {
	ring = dropCoincident(ring)
	if len(ring) < 3 {
		return nil
	}
	if ring.SignedArea() < 0 {
		ring = ring.Reverse()
	}
	if d == 0 {
		return []Polygon{ring}
	}

	raw := make(Polygon, 0, len(ring))
	n := len(ring)
	for i := 0; i < n; i++ {
		prev := ring[(i+n-1)%n]
		cur := ring[i]
		next := ring[(i+1)%n]

		d0 := cur.Minus(prev)
		d1 := next.Minus(cur)
		n0 := outwardNormal(d0)
		n1 := outwardNormal(d1)

		// Intersect the two offset edge lines to find the mitre point.
		p0 := prev.Add(n0.Scale(d))
		p1 := cur.Add(n1.Scale(d))
		denom := d0.CrossProductZ(d1)
		if math.Abs(denom) < offsetEpsilon {
			// Collinear edges: offset the vertex directly.
			raw = append(raw, cur.Add(n0.Scale(d)))
			continue
		}
		t := p1.Minus(p0).CrossProductZ(d1) / denom
		raw = append(raw, p0.Add(d0.Scale(t)))
	}

	var out []Polygon
	for _, r := range splitSelfIntersections(dropCoincident(raw)) {
		// Rings that flipped winding were consumed by the offset.
		if len(r) >= 3 && r.SignedArea() > minRingArea {
			out = append(out, r)
		}
	}
	return out
}

// outwardNormal returns the unit normal pointing out of a counterclockwise
// ring for an edge with the given direction.
func outwardNormal(dir Vector2) Vector2 {
	return Vector2{X: dir.Y, Y: -dir.X}.Normalize()
}

func dropCoincident(ring Polygon) Polygon {
	if len(ring) == 0 {
		return nil
	}
	out := make(Polygon, 0, len(ring))
	for _, p := range ring {
		if len(out) == 0 || out[len(out)-1].Distance(p) > offsetEpsilon {
			out = append(out, p)
		}
	}
	if len(out) > 1 && out[0].Distance(out[len(out)-1]) <= offsetEpsilon {
		out = out[:len(out)-1]
	}
	return out
}

// splitSelfIntersections cuts a ring at each point where two non-adjacent
// edges cross, producing simple rings. An offset that pinches a narrow waist
// shows up here as one surviving ring per lobe plus an inverted remainder.
func splitSelfIntersections(ring Polygon) []Polygon {
	n := len(ring)
	if n < 4 {
		return []Polygon{ring}
	}
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent via the closing edge
			}
			p, ok := segmentIntersection(ring[i], ring[(i+1)%n], ring[j], ring[(j+1)%n])
			if !ok {
				continue
			}
			first := append(Polygon{}, ring[:i+1]...)
			first = append(first, p)
			first = append(first, ring[j+1:]...)
			second := append(Polygon{p}, ring[i+1:j+1]...)

			out := splitSelfIntersections(dropCoincident(first))
			return append(out, splitSelfIntersections(dropCoincident(second))...)
		}
	}
	return []Polygon{ring}
}

// segmentIntersection returns the crossing point of segments ab and cd, if
// they properly intersect away from their shared endpoints.
func segmentIntersection(a, b, c, d Point) (Point, bool) {
	ab := b.Minus(a)
	cd := d.Minus(c)
	denom := ab.CrossProductZ(cd)
	if math.Abs(denom) < offsetEpsilon {
		return Point{}, false
	}
	ac := c.Minus(a)
	t := ac.CrossProductZ(cd) / denom
	s := ac.CrossProductZ(ab) / denom
	const margin = 1e-7
	if t <= margin || t >= 1-margin || s <= margin || s >= 1-margin {
		return Point{}, false
	}
	return a.Add(ab.Scale(t)), true
}
