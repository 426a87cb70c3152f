package orchestrator

import (
	"fmt"
	"strings"

	"podcast-orchestrator/internal/podcast"
)

// BuildVideoPrompt composes the render prompt for one scene from its title,
// description, visual direction, dialogue and optional transition note.
func BuildVideoPrompt(scene podcast.Scene, durationSeconds int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Scene Title: %s\n\n", scene.Title))
	b.WriteString(fmt.Sprintf("Visual Setting: %s\n\n", scene.SceneDescription))
	b.WriteString(fmt.Sprintf("Visual Direction: %s\n\n", scene.VisualDirection))
	b.WriteString(fmt.Sprintf("Dialogue Context: %s\n\n", scene.Dialogue))

	if note := strings.TrimSpace(scene.TransitionNote); note != "" {
		b.WriteString(fmt.Sprintf("Transition: %s\n\n", note))
	}

	b.WriteString("Style Requirements:\n")
	b.WriteString("- High-quality cinematic video\n")
	b.WriteString("- Professional podcast production value\n")
	b.WriteString("- Engaging visual storytelling\n")
	b.WriteString("- Smooth camera movements\n")
	b.WriteString("- Appropriate lighting and mood\n")
	b.WriteString(fmt.Sprintf("- Duration: %d seconds\n", durationSeconds))
	b.WriteString("- Seamless for video stitching\n\n")
	b.WriteString("Create a compelling visual representation that matches the dialogue and enhances the podcast narrative.")

	return b.String()
}
