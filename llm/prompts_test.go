package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAnalysisPromptReferenceBlock(t *testing.T) {
	plain := buildAnalysisPrompt("", "")
	assert.Contains(t, plain, "IMMUTABLE room shell")
	assert.NotContains(t, plain, "ARCHITECTURAL ANCHORING")

	withRef := buildAnalysisPrompt("http://fake-store/stage-results/anchor.jpg", "anchor analysis")
	assert.Contains(t, withRef, "CRITICAL ARCHITECTURAL ANCHORING")
	assert.Contains(t, withRef, "http://fake-store/stage-results/anchor.jpg")
	assert.Contains(t, withRef, "anchor analysis")
}

func TestBuildPlacementPromptOptions(t *testing.T) {
	base := PlacementRequest{
		Analysis:    "an empty room",
		RoomType:    "living_room",
		StylePreset: "modern",
	}

	noDecor := buildPlacementPrompt(base)
	assert.Contains(t, noDecor, "Do NOT include any wall decorations")
	assert.NotContains(t, noDecor, "flat screen TV")
	assert.NotContains(t, noDecor, "PHYSICAL INVENTORY MAPPING")

	withDecor := base
	withDecor.WallDecorations = true
	withDecor.IncludeTV = true
	full := buildPlacementPrompt(withDecor)
	assert.Contains(t, full, "hanging paintings")
	assert.Contains(t, full, "flat screen TV")

	withRef := base
	withRef.ReferenceImageURL = "http://fake-store/stage-results/anchor.jpg"
	withRef.ReferencePlan = "sofa on the north wall"
	refPrompt := buildPlacementPrompt(withRef)
	assert.Contains(t, refPrompt, "PHYSICAL INVENTORY MAPPING")
	assert.Contains(t, refPrompt, "Replicate the following layout exactly in the new angle: sofa on the north wall")
}

func TestBuildEditTaskTextLocks(t *testing.T) {
	text := buildEditTaskText("place the sofa", 1920, 1080, false)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(text), "EDIT TASK"))
	assert.Contains(t, text, "place the sofa")
	assert.Contains(t, text, "RESOLUTION LOCK: Output MUST be exactly 1920x1080 pixels.")
	assert.Contains(t, text, "WHITE BALANCE LOCK")
	assert.Contains(t, text, "FAILURE CONDITIONS")

	// unknown dimensions drop the resolution lock; white balance fixes drop the lock
	text = buildEditTaskText("place the sofa", 0, 0, true)
	assert.NotContains(t, text, "RESOLUTION LOCK")
	assert.NotContains(t, text, "WHITE BALANCE LOCK")
}
