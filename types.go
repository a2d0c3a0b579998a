package quadrant

// Embeddable is the constraint for base cells and embeddings.
// Zero value is the default, assignment copies and == compares structurally.
type Embeddable interface {
	comparable
}

// Color is the RGBA display color of a base cell.
type Color [4]uint8

// Variant enumerates possible states of the quad payload.
type Variant byte

const (
	// VariantCached means payload has been discarded and is recoverable from the embedding only.
	VariantCached Variant = iota

	// VariantBase means payload is a base cell.
	VariantBase

	// VariantNode means payload is a set of four children.
	VariantNode
)

func (v Variant) String() string {
	switch v {
	case VariantCached:
		return "cached"
	case VariantBase:
		return "base"
	case VariantNode:
		return "node"
	default:
		return "unknown"
	}
}

// Quadrant is the index of a child inside its parent.
type Quadrant uint8

// Quadrants are relative to the center of the parent. Zero coordinate belongs to the positive half.
const (
	// NegXNegY is the quadrant where x < 0 and y < 0.
	NegXNegY Quadrant = iota

	// PosXNegY is the quadrant where x >= 0 and y < 0.
	PosXNegY

	// NegXPosY is the quadrant where x < 0 and y >= 0.
	NegXPosY

	// PosXPosY is the quadrant where x >= 0 and y >= 0.
	PosXPosY
)

// QuadrantOf returns the quadrant containing point (x, y) relative to the center.
func QuadrantOf(x, y int64) Quadrant {
	var q Quadrant
	if x >= 0 {
		q |= PosXNegY
	}
	if y >= 0 {
		q |= NegXPosY
	}
	return q
}

// Opposite returns the quadrant diagonally opposite to q.
func (q Quadrant) Opposite() Quadrant {
	return PosXPosY - q
}
