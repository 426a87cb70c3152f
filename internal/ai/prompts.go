package ai

import (
	"fmt"
	"strings"

	"podcast-orchestrator/internal/podcast"
)

// ScriptSystemPrompt instructs the script model to answer with a five scene
// script as a single JSON object.
const ScriptSystemPrompt = `You are an expert podcast script writer. Create engaging, natural-flowing podcast scripts with excellent scene transitions.

REQUIREMENTS:
- Create exactly 5 scenes that flow naturally together
- Each scene should be 30-60 seconds when spoken
- Include natural transitions between scenes
- Provide visual directions for video generation
- Make dialogue conversational and engaging

OUTPUT FORMAT (JSON only):
{
  "topic": "user_topic",
  "title": "catchy_episode_title",
  "overview": "2-3 sentence overview",
  "scenes": [
    {
      "id": 1,
      "title": "scene_title",
      "dialogue": "natural spoken dialogue",
      "sceneDescription": "setting and context",
      "visualDirection": "detailed visual description for video AI",
      "transitionNote": "how this connects to next scene"
    }
  ]
}

VISUAL DIRECTION GUIDELINES:
- Describe scenes cinematically for AI video generation
- Include lighting, setting, camera angles, mood
- Be specific about visual elements and atmosphere
- Consider transitions between scenes`

func scriptUserPrompt(req podcast.ScriptRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-scene podcast script about: %s\n\n", podcast.SceneCount, req.Topic)
	fmt.Fprintf(&b, "Style: %s\n", req.Style)
	fmt.Fprintf(&b, "Duration: %s\n\n", req.Duration)
	b.WriteString("Make it engaging, informative, and visually compelling for video generation.")
	return b.String()
}

func videoPrompt(scenePrompt string, durationSeconds int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a high-quality video for a podcast scene: %s\n\n", scenePrompt)
	b.WriteString("Style: Professional, cinematic, engaging for podcast audience.\n")
	if durationSeconds > 0 {
		fmt.Fprintf(&b, "Duration: %d seconds.\n", durationSeconds)
	}
	b.WriteString("Quality: High resolution, smooth transitions, appropriate lighting.\n")
	b.WriteString("Mood: Match the content tone, educational yet entertaining.")
	return b.String()
}
