package engine

import "encoding/json"

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], ["Z"].
type PathCommand []interface{}

// DrawCommand represents a single drawing operation for the frontend to
// execute on its canvas. Commands arrive in painter's order (back to front).
type DrawCommand struct {
	Op          string        `json:"op"` // "path"
	NodeID      string        `json:"nodeId,omitempty"`
	Transform   []float64     `json:"transform,omitempty"` // [a, b, c, d, e, f]
	Path        []PathCommand `json:"path,omitempty"`
	Fill        string        `json:"fill,omitempty"`
	Stroke      string        `json:"stroke,omitempty"`
	StrokeWidth float64       `json:"strokeWidth,omitempty"`
	Opacity     float64       `json:"opacity,omitempty"`
}

// kappa is the bezier approximation constant for a quarter circle:
// 4 * (sqrt(2) - 1) / 3.
const kappa = 0.5522847498

// CompileDrawCommands flattens the tree into a draw command buffer.
func CompileDrawCommands(t *Tree) []DrawCommand {
	var commands []DrawCommand
	t.compileNode(t.root, 1.0, &commands)
	return commands
}

func (t *Tree) compileNode(id string, parentOpacity float64, commands *[]DrawCommand) {
	n, ok := t.nodes[id]
	if !ok || !n.Visible {
		return
	}

	opacity := parentOpacity
	if n.Style.Opacity > 0 {
		opacity *= n.Style.Opacity
	}

	var path []PathCommand
	switch n.Kind {
	case KindRect:
		path = roundedRectPath(n.Size, n.Radius)
	case KindEllipse:
		path = ellipsePath(n.Size)
	}

	if len(path) > 0 {
		*commands = append(*commands, DrawCommand{
			Op:          "path",
			NodeID:      n.ID,
			Transform:   t.AbsoluteMatrix(id).ToSlice(),
			Path:        path,
			Fill:        n.Style.Fill,
			Stroke:      n.Style.Stroke,
			StrokeWidth: n.Style.StrokeWidth,
			Opacity:     opacity,
		})
	}

	for _, child := range n.Children {
		t.compileNode(child, opacity, commands)
	}
}

// roundedRectPath generates path commands for a rectangle with per-corner
// radii (clockwise from top-left). Radii are clamped to half the shorter
// side; a zero-radius rect degenerates to straight corners.
func roundedRectPath(s Size, radius [4]float64) []PathCommand {
	w, h := s.W, s.H
	if w <= 0 || h <= 0 {
		return nil
	}

	maxR := min(w, h) / 2
	var r [4]float64
	rounded := false
	for i := range radius {
		r[i] = max(0, min(radius[i], maxR))
		if r[i] > 0 {
			rounded = true
		}
	}

	if !rounded {
		return []PathCommand{
			{"M", 0.0, 0.0},
			{"L", w, 0.0},
			{"L", w, h},
			{"L", 0.0, h},
			{"Z"},
		}
	}

	tl, tr, br, bl := r[CornerTopLeft], r[CornerTopRight], r[CornerBottomRight], r[CornerBottomLeft]
	return []PathCommand{
		{"M", tl, 0.0},
		{"L", w - tr, 0.0},
		{"C", w - tr + tr*kappa, 0.0, w, tr - tr*kappa, w, tr},
		{"L", w, h - br},
		{"C", w, h - br + br*kappa, w - br + br*kappa, h, w - br, h},
		{"L", bl, h},
		{"C", bl - bl*kappa, h, 0.0, h - bl + bl*kappa, 0.0, h - bl},
		{"L", 0.0, tl},
		{"C", 0.0, tl - tl*kappa, tl - tl*kappa, 0.0, tl, 0.0},
		{"Z"},
	}
}

// ellipsePath generates path commands for an ellipse filling the node's
// local rect, approximated with four bezier curves.
func ellipsePath(s Size) []PathCommand {
	rx, ry := s.W/2, s.H/2
	if rx <= 0 || ry <= 0 {
		return nil
	}
	cx, cy := rx, ry
	kx, ky := rx*kappa, ry*kappa

	return []PathCommand{
		{"M", cx + rx, cy},
		{"C", cx + rx, cy + ky, cx + kx, cy + ry, cx, cy + ry},
		{"C", cx - kx, cy + ry, cx - rx, cy + ky, cx - rx, cy},
		{"C", cx - rx, cy - ky, cx - kx, cy - ry, cx, cy - ry},
		{"C", cx + kx, cy - ry, cx + rx, cy - ky, cx + rx, cy},
		{"Z"},
	}
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
