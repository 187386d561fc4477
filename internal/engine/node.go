package engine

// Point is a position or vector in some 2D coordinate space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains checks if a point is inside the rect.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersects reports whether the two rects overlap.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width && other.X < r.X+r.Width &&
		r.Y < other.Y+other.Height && other.Y < r.Y+r.Height
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Transform holds a node's local transform fields: position, non-uniform
// scale, rotation in degrees, and the anchor point the rotation/scale
// pivot around (in unscaled local units).
type Transform struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	SX float64 `json:"sx"`
	SY float64 `json:"sy"`
	R  float64 `json:"r"`
	AX float64 `json:"ax"`
	AY float64 `json:"ay"`
}

// IdentityTransform returns a transform with unit scale and no offset.
func IdentityTransform() Transform {
	return Transform{SX: 1, SY: 1}
}

// Size is a node's unscaled local extent.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Kind classifies what a node renders as.
type Kind string

const (
	KindGroup   Kind = "group"
	KindRect    Kind = "rect"
	KindEllipse Kind = "ellipse"
	KindPath    Kind = "path"
)

// Style holds a node's paint properties.
type Style struct {
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Opacity     float64 `json:"opacity"`
}

// Corner indices in clockwise order starting top-left. This ordering is
// also the deterministic tie-break when coincident corner handles must be
// disambiguated.
const (
	CornerTopLeft = iota
	CornerTopRight
	CornerBottomRight
	CornerBottomLeft
)

// Node is one entry in the scene tree arena. Hierarchy is kept as ids, not
// live pointers, so ancestor walks are table lookups and the tree is
// testable without a renderer attached.
type Node struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	Parent   string   `json:"parent,omitempty"`
	Children []string `json:"children,omitempty"`

	Transform Transform `json:"transform"`
	Size      Size      `json:"size"`

	// Radius holds per-corner corner radii in local units, clockwise from
	// top-left. Only meaningful for KindRect.
	Radius [4]float64 `json:"radius"`

	Style Style `json:"style"`

	Visible   bool `json:"visible"`
	Locked    bool `json:"locked"`
	Draggable bool `json:"draggable"`
}

// MaxCornerRadius returns the largest radius any corner of the node can
// take: half the shorter side.
func (n *Node) MaxCornerRadius() float64 {
	return min(n.Size.W, n.Size.H) / 2
}

// LocalRect returns the node's unscaled local rect with origin at (0,0).
func (n *Node) LocalRect() Rect {
	return Rect{Width: n.Size.W, Height: n.Size.H}
}

// LocalCorner returns the given corner in unscaled local coordinates.
func (n *Node) LocalCorner(corner int) Point {
	switch corner {
	case CornerTopLeft:
		return Point{0, 0}
	case CornerTopRight:
		return Point{n.Size.W, 0}
	case CornerBottomRight:
		return Point{n.Size.W, n.Size.H}
	default:
		return Point{0, n.Size.H}
	}
}

// Transformable is the capability every node type bound to a tree exposes
// to the editor: read/write access to the local transform plus the flags a
// gesture suspends and restores. Interface satisfaction replaces runtime
// method probing on node handles.
type Transformable interface {
	LocalTransform() Transform
	SetLocalTransform(Transform)
	NodeSize() Size
	IsDraggable() bool
	SetDraggable(bool)
}

// boundNode adapts a node in a tree to the Transformable capability.
type boundNode struct {
	tree *Tree
	id   string
}

func (b boundNode) LocalTransform() Transform {
	if n, ok := b.tree.Get(b.id); ok {
		return n.Transform
	}
	return IdentityTransform()
}

func (b boundNode) SetLocalTransform(t Transform) {
	b.tree.SetLocalTransform(b.id, t)
}

func (b boundNode) NodeSize() Size {
	if n, ok := b.tree.Get(b.id); ok {
		return n.Size
	}
	return Size{}
}

func (b boundNode) IsDraggable() bool {
	if n, ok := b.tree.Get(b.id); ok {
		return n.Draggable
	}
	return false
}

func (b boundNode) SetDraggable(v bool) {
	if n, ok := b.tree.Get(b.id); ok {
		n.Draggable = v
	}
}
