package llm

import "fmt"

// Prompt templates for the three reasoning passes of the staging pipeline.
// The analysis output is reused verbatim as input to the later passes, so
// the wording here is load-bearing: each template tells the model the
// previous pass's output is an immutable constraint map.

func buildAnalysisPrompt(referenceImageURL, referenceAnalysis string) string {
	consistency := ""
	if referenceImageURL != "" {
		consistency = fmt.Sprintf(`
CRITICAL ARCHITECTURAL ANCHORING:
This is the SAME room as shown in the reference: %s.
1. DEFINE ROTATION: Conclude if this Target Angle is Same-Side, Side-Wall, or Opposite-Side (~180).
2. CHOOSE 2 ANCHORS: Identify two fixed landmarks (e.g., "The Large Window" and "The Far Corner") visible or implied in both views.
3. SPATIAL PROJECTION: Map the furniture relative to these Anchors. If the "Large Window" moved from Left to Right, the furniture near it MUST follow the window to the Right.
`, referenceImageURL)
		if referenceAnalysis != "" {
			consistency += fmt.Sprintf("\nHere is the analysis of that reference view: %s", referenceAnalysis)
		}
	}

	return fmt.Sprintf(`Analyze the uploaded interior photo for virtual staging.
%s

TASK: Produce a precise architectural blueprint of this room. This analysis is the GROUND TRUTH that all subsequent staging steps MUST obey. Any deviation from it is a critical failure.

1. ROOM GEOMETRY & PERSPECTIVE:
   - Describe the exact camera angle (eye-level, elevated, corner shot, straight-on, etc.).
   - Map every wall visible in frame: label them (e.g., Left Wall, Back Wall, Right Wall) and note their angles relative to the camera.
   - Note the ceiling height, floor plane angle, and any perspective vanishing points.

2. DOORS & OPENINGS (CRITICAL: these must NEVER be blocked, moved, or removed):
   - List EVERY door, doorway, archway, and opening visible or partially visible.
   - For each: note its EXACT position (e.g., "centered on the back wall", "far-right of the left wall"), its type (hinged, sliding, pocket, open archway), whether it is open or closed, and its swing direction if visible.
   - Note any hallways or passageways visible through openings.

3. WINDOWS:
   - List every window with its exact position, size relative to the wall, and type (single-pane, double-hung, sliding, etc.).
   - Note what is visible through each window (exterior light, trees, sky, neighboring structure).

4. BUILT-IN FIXTURES (must remain untouched):
   - Ceiling: lights, fans, sprinklers, smoke detectors, recessed lighting, beams.
   - Walls: outlets, switches, vents, thermostats, intercoms, sconces.
   - Floor: vents, floor outlets, transitions between flooring materials.

5. SURFACES & MATERIALS:
   - Floor material and color (hardwood, tile, carpet, etc.).
   - Wall finish and color for each wall.
   - Ceiling finish.
   - Any trim, baseboards, crown molding, or wainscoting.

6. CLOSETS & BUILT-INS:
   - Identify any open or visible closets. Note if the interior is visible, its size, and any existing shelves or rods.
   - Note built-in shelving, niches, or cabinetry.

7. SPATIAL ZONES & TRAFFIC FLOW:
   - Identify clear paths of travel between doors/openings. These corridors MUST remain unobstructed.
   - Note any awkward angles, alcoves, or nooks.
   - Identify large empty wall surfaces and their approximate dimensions.

8. LIGHTING:
   - Direction and quality of natural light (which windows, time of day estimate).
   - Existing artificial light sources and their warm/cool tone.
   - Shadow patterns on walls and floor.

IMPORTANT: This analysis defines the IMMUTABLE room shell. Every wall angle, door position, window location, and fixture placement recorded here is LOCKED. Subsequent staging steps must treat this as an inviolable constraint map.`, consistency)
}

func buildPlacementPrompt(req PlacementRequest) string {
	decorInstruction := "Do NOT include any wall decorations or wall art."
	if req.WallDecorations {
		decorInstruction = "Include wall decorations like hanging paintings or framed posters that match the chosen style. IMPORTANT: If there are large, empty wall surfaces prominent in the image, you MUST utilize that space for something (e.g., a large statement art piece, a gallery wall, or a large mirror). You may also include a maximum of one mirror or art piece leaning against a wall. Ensure all decorations are staged as non-permanent (e.g., using adhesive strips for hanging items)."
	}
	tvInstruction := ""
	if req.IncludeTV {
		tvInstruction = "Include a non-wall mounted flat screen TV in the furniture arrangement (e.g., on a TV stand or media console)."
	}

	consistencyHint := ""
	if req.ReferenceImageURL != "" {
		consistencyHint = `
PHYSICAL INVENTORY MAPPING (STAGED REFERENCE PROVIDED):
1. LIST EVERY OBJECT: From the reference image, identify every piece of furniture (Sofa, Rug, Coffee Table, Art, Lamp).
2. MAP TO TARGET: For EACH item, specify its new 2D/3D location in the Target Image.
3. AXIS CHECK: If the target camera is on the opposite side of the room, you MUST invert the positions (Left becomes Right, Near becomes Far).
4. NO OMISSIONS: You must include EVERY item visible in the reference view into the target view's staging plan.
`
		if req.ReferencePlan != "" {
			consistencyHint += fmt.Sprintf("\nSTRICT TASK: Replicate the following layout exactly in the new angle: %s", req.ReferencePlan)
		}
	}

	return fmt.Sprintf(`Based on the following room analysis:
%s

Room Type: %s
Design Style: %s
%s

TASK: Create a furniture placement plan that stages this room while treating the room's architecture as SACRED and IMMUTABLE.

===== ABSOLUTE CONSTRAINTS (VIOLATION = FAILURE) =====

1. DOOR & OPENING PRESERVATION:
   - Every door, doorway, and archway identified in the analysis MUST remain fully visible and completely unobstructed.
   - NO furniture may be placed in front of, partially blocking, or within the swing arc of any door.
   - Traffic corridors between doors/openings must remain clear (minimum 36" / 90cm passage).

2. WINDOW PRESERVATION:
   - No furniture may block or obscure any window, even partially.
   - Furniture placed beneath windows must not extend above the window sill.

3. FIXTURE PRESERVATION:
   - All ceiling fixtures (lights, fans, vents) must remain completely visible and unobstructed.
   - All wall fixtures (outlets, switches, vents, thermostats) must remain accessible.
   - No tall furniture may be placed directly under ceiling fans.

4. WALL & ANGLE PRESERVATION:
   - Furniture must follow the exact wall angles shown in the analysis. If a wall is angled, furniture against it must match that angle.
   - Do NOT suggest any structural modifications (removing walls, adding built-ins, changing floor plan).

5. PERSPECTIVE PRESERVATION:
   - All furniture must be described from the EXACT camera angle shown in the target image.
   - Items closer to camera appear larger; items further appear smaller. Respect this depth.

===== FURNITURE PLAN =====

For each piece of furniture, specify:
- Item name and style (matching %s)
- Exact position (which wall, distance from corners/doors, depth in room)
- Orientation and facing direction
- Approximate dimensions
- How it relates to nearby architectural features (e.g., "centered on back wall, 2ft left of the door")

%s
%s

CLOSET STAGING: If an open or visible closet was identified in the analysis, include a staging plan for its interior with organized clothing on matching hangers, neatly folded items on shelves, and stylish storage accessories.

===== FINAL VERIFICATION CHECKLIST =====
Before finishing, mentally verify:
- [ ] Every door identified in the analysis is still fully visible and unblocked
- [ ] Every window is unobstructed
- [ ] All ceiling fixtures remain visible
- [ ] Traffic paths between all openings are clear
- [ ] No furniture floats, clips through walls, or defies the room's perspective
- [ ] The room's geometry (wall angles, corners, ceiling lines) is unchanged`,
		req.Analysis, req.RoomType, req.StylePreset, consistencyHint, req.StylePreset, decorInstruction, tvInstruction)
}

func buildGenerationPromptPrompt(req GenerationPromptRequest) string {
	consistencyInstruction := ""
	if req.ReferenceImageURL != "" {
		consistencyInstruction = `
STAGING EDIT INSTRUCTIONS (STAGED REFERENCE):
The Target Image must be virtual staged using the EXACT physical inventory of the Reference Image.
INVENTORY LIST: List all items from the reference (Sofa, Rug, Coffee Table, Art, etc.).
3D RE-PROJECTION: Describe their exact new placement in THIS Target Image angle. Ensure the layout is a logical spatial continuation of the reference view.
`
		if req.ReferencePlan != "" {
			consistencyInstruction += fmt.Sprintf("\nTHE SOURCE OF TRUTH FOR FURNITURE IS: %s", req.ReferencePlan)
		}
	}

	wbInstruction := "STRICTLY PRESERVE the original white balance, color temperature, and lighting tint of the photo exactly as it is. Do NOT attempt to 'fix' or 'neutralize' the colors. If the original photo is warm/yellow or cool/blue, the final rendered image MUST maintain that exact same warmth or coolness."
	if req.FixWhiteBalance {
		wbInstruction = "CORRECT the white balance if the original image is too warm (yellow) or cool (blue), making it look like high-end neutral architectural photography, BUT ensure the original colors of painted surfaces (walls, etc.) are preserved and not altered by the correction."
	}

	decorInstruction := "Add furniture only. Keep walls completely bare of any art or decorations."
	if req.WallDecorations {
		decorInstruction = "Include furniture and wall decor. You MUST utilize any large, empty wall surfaces for appropriate decorations such as large paintings, framed posters, or mirrors (aligned with the style). At most one object (like a mirror or art piece) may be leaning against a wall. Ensure all staged wall items appear as if mounted via non-destructive means like adhesive strips."
	}
	tvInstruction := ""
	if req.IncludeTV {
		tvInstruction = "Include a non-wall mounted flat screen TV on a professional stand or media console, appropriately placed for the room's purpose and layout."
	}

	return fmt.Sprintf(`You are a professional architectural photographer and virtual staging specialist.
Create a highly detailed, photorealistic prompt for an image generation model to stage this room.

%s

===== ROOM PRESERVATION PROTOCOL (NON-NEGOTIABLE) =====

The following elements from the Target Image are FROZEN. They must appear in the output at the EXACT same pixel positions, angles, and proportions:

GEOMETRY LOCK:
- Every wall edge, corner, and angle must remain pixel-identical to the Target Image.
- The ceiling line, floor plane, and all perspective vanishing points are immutable.
- The camera position, height, tilt, focal length, and lens distortion must NOT change.

DOOR & OPENING LOCK:
- Every door, doorway, and archway must remain at its exact position, size, and state (open/closed).
- No furniture may appear in front of or overlapping any door or opening.
- Hallways and passages visible through openings must remain visible.

WINDOW LOCK:
- Every window must remain at its exact position and size.
- The view through each window must be preserved.
- No furniture may obscure any part of any window.

FIXTURE LOCK:
- All ceiling fixtures (lights, fans, sprinklers, vents) must remain visible and unchanged.
- All wall fixtures (outlets, switches, thermostats, sconces) must remain visible and unchanged.
- No furniture may be placed over or in front of any fixture.

LIGHTING LOCK:
- %s
- Natural light direction, shadow angles, and shadow intensity must match the Target Image exactly.
- Furniture shadows must be consistent with the existing light sources in the room.

===== STAGING INSTRUCTIONS =====

1. OVERLAY ONLY: Your task is to composite furniture INTO the existing room photograph. Think of it as physically placing real furniture into the real room. The room itself does not change.
2. %s %s
3. CLOSET STAGING: If a closet is visible or open, stage its interior with organized high-end clothing on matching wooden hangers, neatly folded items, and stylish storage accessories.
4. DEPTH & SCALE: Furniture must respect the room's perspective. Items closer to camera are larger, items further away are smaller. Furniture must sit flat on the floor plane with correct shadow contact.
5. MATERIAL REALISM: Render fabric textures, wood grain, metal reflections, and glass transparency with photorealistic quality matching the room's existing lighting.

===== SOURCE DATA =====

Original Room Analysis:
%s

Furniture Plan:
%s

Style: %s

===== OUTPUT FORMAT =====

Produce a SINGLE PARAGRAPH prompt for the image generation model. The prompt must:
- Begin with an explicit instruction: "Edit this room photograph by rendering the following furniture into the existing space WITHOUT altering the room's architecture, camera angle, wall positions, door locations, window placements, or any structural element."
- Include specific furniture descriptions with materials, colors, and exact positions from the plan.
- Include photorealistic rendering keywords (8K, architectural photography, natural lighting, ray-traced shadows).
- Include specific camera/lens terms that match the original photo's perspective.
- End with: "The room's walls, doors, windows, ceiling, floor, and all fixtures must remain at their exact original pixel positions."

Original Image URL for reference: %s`,
		consistencyInstruction, wbInstruction, decorInstruction, tvInstruction,
		req.Analysis, req.PlacementPlan, req.StylePreset, req.OriginalImageURL)
}

// Synthesizer-side instruction blocks shared by both generation backends.

const referenceContextInstruction = `CONSISTENCY REFERENCE (Staged Angle):
This image shows the EXISTING furniture and style from another angle of the same room.
Use this ONLY to identify the inventory of items to be placed (materials, styles, exact objects).
Do NOT copy the camera angle, wall positions, or room geometry from this reference.`

const targetImageInstruction = `THE TARGET IMAGE (IMMUTABLE BACKGROUND):
This is the room photograph you are editing. The following are LOCKED and must appear at their EXACT pixel positions in your output:
- Every wall edge, corner, and angle
- Every door, doorway, and archway (position, size, open/closed state)
- Every window (position, size, view through it)
- All ceiling fixtures (lights, fans, vents)
- All wall fixtures (outlets, switches, thermostats)
- The camera angle, height, tilt, and lens perspective
- The floor plane and ceiling line
Do NOT move, warp, resize, crop, or alter ANY of these elements.`

func buildEditTaskText(prompt string, width, height int, fixWhiteBalance bool) string {
	text := fmt.Sprintf("\n\nEDIT TASK: OVERLAY FURNITURE INTO THIS EXACT ROOM\n%s", prompt)
	text += "\n\nROOM PRESERVATION RULES:"
	text += "\n- Walls must remain at their exact angles and positions"
	text += "\n- Doors and doorways must remain fully visible and unblocked by furniture"
	text += "\n- Windows must remain fully visible and unobscured"
	text += "\n- All ceiling and wall fixtures must remain visible"
	text += "\n- Furniture must sit on the existing floor plane with correct perspective"
	text += "\n- Furniture shadows must match the room's existing light direction"

	if width > 0 && height > 0 {
		text += fmt.Sprintf("\n\nRESOLUTION LOCK: Output MUST be exactly %dx%d pixels.", width, height)
	}
	if !fixWhiteBalance {
		text += "\n\nWHITE BALANCE LOCK: Preserve the original color temperature exactly."
	}

	text += "\n\nFAILURE CONDITIONS: Any of the following in the output means the image is REJECTED:"
	text += "\n- A door or doorway has moved, disappeared, or is blocked by furniture"
	text += "\n- A wall angle or corner position has shifted"
	text += "\n- A window has moved or is obscured"
	text += "\n- The camera angle, height, or perspective has changed"
	text += "\n- Any ceiling or wall fixture is missing or altered"
	return text
}
