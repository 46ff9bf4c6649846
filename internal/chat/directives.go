package chat

import "strings"

// Markers the model may append to its reply to request enrichment. The
// audio marker is an exact boolean-true token.
const (
	visualMarker = "VISUAL:"
	audioMarker  = "AUDIO: true"
	audioPrefix  = "AUDIO:"
)

// Directives is the result of splitting raw model output into advice text
// and out-of-band enrichment requests.
type Directives struct {
	Advice      string
	ImagePrompt string
	WantsImage  bool
	WantsAudio  bool
}

// ParseDirectives separates conversational advice from trailing directive
// markers. Markers may appear in either order or alone; when neither is
// present the want-flags fall back to the caller-supplied defaults (a
// caller may request media unconditionally via configuration). Pure text
// transformation.
func ParseDirectives(raw string, defaultImage, defaultAudio bool) Directives {
	d := Directives{
		WantsImage: defaultImage,
		WantsAudio: defaultAudio,
	}

	advice := raw
	if idx := strings.Index(advice, visualMarker); idx >= 0 {
		rest := advice[idx+len(visualMarker):]
		advice = advice[:idx]
		if a := strings.Index(rest, audioPrefix); a >= 0 {
			rest = rest[:a]
		}
		d.ImagePrompt = strings.TrimSpace(rest)
		d.WantsImage = true
	}

	if strings.Contains(raw, audioMarker) {
		advice = strings.ReplaceAll(advice, audioMarker, "")
		d.WantsAudio = true
	}

	d.Advice = strings.TrimSpace(advice)
	return d
}
