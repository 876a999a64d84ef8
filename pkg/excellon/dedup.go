package excellon

import (
	"math"

	"github.com/asim/quadtree"
	"go.uber.org/zap"

	"drillcam/pkg/cfg"
)

// DedupHoles drops holes whose center and diameter coincide with an earlier
// hole, keeping the first occurrence. Cheap CAD exports sometimes emit the
// same drill hit twice; milling it twice wastes time and chews the hole edge.
// File order of the survivors is preserved.
func DedupHoles(holes []Hole, log *zap.Logger) []Hole {
	if len(holes) < 2 {
		return holes
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, h := range holes {
		minX = math.Min(minX, h.X)
		minY = math.Min(minY, h.Y)
		maxX = math.Max(maxX, h.X)
		maxY = math.Max(maxY, h.Y)
	}

	midX := (maxX + minX) / 2
	midY := (maxY + minY) / 2
	halfWidth := maxX - midX
	halfHeight := maxY - midY

	// Margin keeps boundary holes inside the tree.
	halfWidth += 1
	halfHeight += 1

	aabb := quadtree.NewAABB(
		quadtree.NewPoint(midX, midY, nil),
		quadtree.NewPoint(halfWidth, halfHeight, nil))
	tree := quadtree.New(aabb, 0, nil)

	tolerance := cfg.DuplicateHoleTolerance
	searchHalf := quadtree.NewPoint(tolerance, tolerance, nil)

	out := make([]Hole, 0, len(holes))
	for _, h := range holes {
		center := quadtree.NewPoint(h.X, h.Y, nil)
		near := tree.KNearest(quadtree.NewAABB(center, searchHalf), 4, nil)
		duplicate := false
		for _, p := range near {
			px, py := p.Coordinates()
			if math.Hypot(px-h.X, py-h.Y) > tolerance {
				continue
			}
			if math.Abs(p.Data().(float64)-h.Diameter) < 1e-9 {
				duplicate = true
				break
			}
		}
		if duplicate {
			log.Warn("dropping duplicate hole",
				zap.Float64("x", h.X), zap.Float64("y", h.Y),
				zap.Float64("diameter_mm", h.Diameter))
			continue
		}

		tree.Insert(quadtree.NewPoint(h.X, h.Y, h.Diameter))
		out = append(out, h)
	}
	return out
}
