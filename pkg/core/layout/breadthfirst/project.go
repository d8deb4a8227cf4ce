package breadthfirst

import (
	"math"

	"github.com/matzehuels/breadthfirst/pkg/core/digraph"
)

// minDistance is the spacing kept between neighbouring nodes and levels:
// the largest node dimension when overlap avoidance is on, 0 otherwise.
func minDistance(nodes []*digraph.Node, avoidOverlap bool) float64 {
	if !avoidOverlap {
		return 0
	}
	d := 0.0
	for _, n := range nodes {
		d = max(d, n.Width, n.Height)
	}
	return d
}

// project maps every (depth, index) pair to a position inside bb.
func (l *levels) project(bb BoundingBox, minDist float64, circle, grid bool) map[string]Position {
	positions := make(map[string]Position, len(l.info))
	center := bb.Center()
	depthCount := float64(max(1, len(l.slots)))
	widest := l.maxSize()

	distanceY := max(bb.H/(depthCount+1), minDist)
	radiusStep := max(min(bb.W/2/depthCount, bb.H/2/depthCount), minDist)
	inward := 0.0
	if len(l.slots) > 0 && len(l.slots[0]) <= 3 {
		inward = radiusStep / 2
	}
	first := l.firstNonEmpty()

	for d, level := range l.slots {
		size := len(level)
		columns := size
		if grid {
			columns = widest
		}
		distanceX := max(bb.W/float64(columns+1), minDist)

		for i, n := range level {
			if !circle {
				positions[n.ID] = Position{
					X: center.X + (float64(i+1)-float64(size+1)/2)*distanceX,
					Y: float64(d+1) * distanceY,
				}
				continue
			}

			radius := radiusStep*float64(d) + radiusStep - inward
			if d == first && size == 1 {
				radius = 1
			}
			theta := 2 * math.Pi / float64(size) * float64(i)
			positions[n.ID] = Position{
				X: center.X + radius*math.Cos(theta),
				Y: center.Y + radius*math.Sin(theta),
			}
		}
	}
	return positions
}

func (l *levels) firstNonEmpty() int {
	for d, s := range l.slots {
		if len(s) > 0 {
			return d
		}
	}
	return -1
}

// spread scales positions by |factor| about the centre of their bounding
// box. Factors of 0 and 1 leave positions unchanged.
func spread(positions map[string]Position, factor float64) {
	factor = math.Abs(factor)
	if factor == 0 || factor == 1 || len(positions) == 0 {
		return
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range positions {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2

	for id, p := range positions {
		positions[id] = Position{
			X: cx + (p.X-cx)*factor,
			Y: cy + (p.Y-cy)*factor,
		}
	}
}
