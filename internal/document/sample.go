package document

import (
	"time"

	"github.com/pivotgfx/pivot/backend-go/internal/engine"
	"github.com/pivotgfx/pivot/backend-go/internal/typeid"
)

// NewEmptyDocument builds a fresh document containing only a root group.
func NewEmptyDocument(projectID, name string) *SceneDocument {
	now := time.Now().UTC().Format(time.RFC3339)
	rootID := typeid.NewNodeID()

	return &SceneDocument{
		Project: Project{
			ID:        projectID,
			Name:      name,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Scene: Scene{
			ID:         typeid.NewSceneID(),
			Name:       "Scene 1",
			Width:      1280,
			Height:     720,
			Background: "#1a1a2e",
			Root:       rootID,
			MinZoom:    0.05,
			MaxZoom:    32,
		},
		Nodes: map[string]SceneEntry{
			rootID: {
				ID:        rootID,
				Kind:      engine.KindGroup,
				Children:  []string{},
				Transform: engine.Transform{SX: 1, SY: 1},
				Visible:   true,
			},
		},
	}
}

// NewSampleDocument builds the playground scene: a three-level nested group
// (outer → inner → leaves) plus a few loose shapes, enough to exercise
// drill-down selection, grouping, and every overlay handle family.
func NewSampleDocument(projectID string) *SceneDocument {
	now := time.Now().UTC().Format(time.RFC3339)

	sceneID := typeid.NewSceneID()
	rootID := typeid.NewNodeID()
	outerID := typeid.NewGroupID()
	innerID := typeid.NewGroupID()
	cardID := typeid.NewNodeID()
	badgeID := typeid.NewNodeID()
	labelID := typeid.NewNodeID()
	heroID := typeid.NewNodeID()
	discID := typeid.NewNodeID()

	ptr := func(s string) *string { return &s }

	return &SceneDocument{
		Project: Project{
			ID:        projectID,
			Name:      "Untitled",
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Scene: Scene{
			ID:         sceneID,
			Name:       "Scene 1",
			Width:      1280,
			Height:     720,
			Background: "#1a1a2e",
			Root:       rootID,
			MinZoom:    0.05,
			MaxZoom:    32,
		},
		Nodes: map[string]SceneEntry{
			rootID: {
				ID:        rootID,
				Kind:      engine.KindGroup,
				Children:  []string{outerID, heroID, discID},
				Transform: engine.Transform{SX: 1, SY: 1},
				Visible:   true,
			},
			outerID: {
				ID:        outerID,
				Kind:      engine.KindGroup,
				Parent:    ptr(rootID),
				Children:  []string{innerID, labelID},
				Transform: engine.Transform{X: 120, Y: 90, SX: 1, SY: 1},
				Visible:   true,
				Draggable: true,
			},
			innerID: {
				ID:        innerID,
				Kind:      engine.KindGroup,
				Parent:    ptr(outerID),
				Children:  []string{cardID, badgeID},
				Transform: engine.Transform{X: 40, Y: 40, SX: 1, SY: 1},
				Visible:   true,
				Draggable: true,
			},
			cardID: {
				ID:        cardID,
				Kind:      engine.KindRect,
				Parent:    ptr(innerID),
				Transform: engine.Transform{SX: 1, SY: 1},
				Size:      engine.Size{W: 220, H: 140},
				Radius:    [4]float64{12, 12, 12, 12},
				Style:     engine.Style{Fill: "#e94560", Stroke: "#16213e", StrokeWidth: 2, Opacity: 1},
				Visible:   true,
				Draggable: true,
			},
			badgeID: {
				ID:        badgeID,
				Kind:      engine.KindEllipse,
				Parent:    ptr(innerID),
				Transform: engine.Transform{X: 190, Y: -20, SX: 1, SY: 1},
				Size:      engine.Size{W: 56, H: 56},
				Style:     engine.Style{Fill: "#f5a623", Stroke: "#c78400", StrokeWidth: 2, Opacity: 1},
				Visible:   true,
				Draggable: true,
			},
			labelID: {
				ID:        labelID,
				Kind:      engine.KindRect,
				Parent:    ptr(outerID),
				Transform: engine.Transform{X: 40, Y: 210, SX: 1, SY: 1},
				Size:      engine.Size{W: 180, H: 32},
				Radius:    [4]float64{6, 6, 6, 6},
				Style:     engine.Style{Fill: "#0f3460", Opacity: 1},
				Visible:   true,
				Draggable: true,
			},
			heroID: {
				ID:        heroID,
				Kind:      engine.KindRect,
				Parent:    ptr(rootID),
				Transform: engine.Transform{X: 640, Y: 160, SX: 1, SY: 1, R: 15},
				Size:      engine.Size{W: 260, H: 180},
				Style:     engine.Style{Fill: "#53d769", Stroke: "#2d6a4f", StrokeWidth: 2, Opacity: 1},
				Visible:   true,
				Draggable: true,
			},
			discID: {
				ID:        discID,
				Kind:      engine.KindEllipse,
				Parent:    ptr(rootID),
				Transform: engine.Transform{X: 560, Y: 440, SX: 1, SY: 1},
				Size:      engine.Size{W: 160, H: 160},
				Style:     engine.Style{Fill: "#bd10e0", Stroke: "#8b0ba8", StrokeWidth: 2, Opacity: 1},
				Visible:   true,
				Draggable: true,
			},
		},
	}
}
