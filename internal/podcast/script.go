package podcast

import (
	"errors"
	"fmt"
	"strings"
)

// SceneCount is the number of scenes every generated script must contain.
const SceneCount = 5

// MaxTopicLength caps the topic accepted for script generation.
const MaxTopicLength = 500

var (
	// ErrTopicRequired is returned when a script request has an empty topic.
	ErrTopicRequired = errors.New("topic is required and cannot be empty")

	// ErrTopicTooLong is returned when the topic exceeds MaxTopicLength.
	ErrTopicTooLong = fmt.Errorf("topic must be less than %d characters", MaxTopicLength)

	// ErrSceneCount is returned when a script does not carry exactly SceneCount scenes.
	ErrSceneCount = fmt.Errorf("script must contain exactly %d scenes", SceneCount)
)

// Style is the tone requested for a script.
type Style string

const (
	StyleEducational    Style = "educational"
	StyleConversational Style = "conversational"
	StyleNews           Style = "news"
	StyleEntertainment  Style = "entertainment"
)

// Length is the requested episode length bucket.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Scene is one segment of a podcast script. It is also the unit of video
// generation: one scene renders to one video.
type Scene struct {
	ID               int    `json:"id"`
	Title            string `json:"title"`
	Dialogue         string `json:"dialogue"`
	SceneDescription string `json:"sceneDescription"`
	VisualDirection  string `json:"visualDirection"`
	TransitionNote   string `json:"transitionNote,omitempty"`
	Duration         int    `json:"duration,omitempty"`
}

// Script is a generated podcast episode script.
type Script struct {
	Topic         string  `json:"topic"`
	Title         string  `json:"title"`
	Overview      string  `json:"overview"`
	Scenes        []Scene `json:"scenes"`
	TotalDuration int     `json:"totalDuration,omitempty"`
}

// ScriptRequest asks for a script about Topic.
type ScriptRequest struct {
	Topic    string `json:"topic"`
	Style    Style  `json:"style,omitempty"`
	Duration Length `json:"duration,omitempty"`
}

// Normalize trims the topic and applies default style and length.
func (r ScriptRequest) Normalize() ScriptRequest {
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Style == "" {
		r.Style = StyleEducational
	}
	if r.Duration == "" {
		r.Duration = LengthMedium
	}
	return r
}

// Validate reports whether the request can be sent upstream.
func (r ScriptRequest) Validate() error {
	topic := strings.TrimSpace(r.Topic)
	if topic == "" {
		return ErrTopicRequired
	}
	if len(topic) > MaxTopicLength {
		return ErrTopicTooLong
	}
	return nil
}

// NumberScenes assigns position-based ids (index+1) to scenes without one.
func NumberScenes(scenes []Scene) {
	for i := range scenes {
		if scenes[i].ID == 0 {
			scenes[i].ID = i + 1
		}
	}
}

// Validate checks the scene count and the fields a renderer needs.
func (s *Script) Validate() error {
	if len(s.Scenes) != SceneCount {
		return fmt.Errorf("%w: got %d", ErrSceneCount, len(s.Scenes))
	}
	for i, scene := range s.Scenes {
		if strings.TrimSpace(scene.Title) == "" {
			return fmt.Errorf("scene %d: title is required", i+1)
		}
		if strings.TrimSpace(scene.VisualDirection) == "" && strings.TrimSpace(scene.SceneDescription) == "" {
			return fmt.Errorf("scene %d: scene description or visual direction is required", i+1)
		}
	}
	return nil
}
