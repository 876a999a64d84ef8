// Package outline parses board outline files into closed contours in
// millimeters. The parser is a capability: conversions run fine without one,
// they just skip outline routing.
package outline

import (
	"drillcam/pkg/geometry"
)

// Provider turns raw outline-file bytes into zero or more closed contours in
// millimeters, arcs already flattened to line segments. Implementations must
// return contours with at least three points each.
type Provider interface {
	Contours(data []byte) ([]geometry.Polygon, error)
}

// NopProvider is the null outline capability: it never yields contours and
// never fails.
type NopProvider struct{}

func (NopProvider) Contours([]byte) ([]geometry.Polygon, error) {
	return nil, nil
}
