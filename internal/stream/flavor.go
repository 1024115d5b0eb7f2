package stream

// Flavor parameterizes the transcoder for one of the three chat features.
// The state machine is identical across flavors; only the recognized JSON
// shapes and the emitted event types differ.
type Flavor struct {
	// Name appears in route paths and log lines.
	Name string

	// Discriminator is the JSON field that selects the event type for a
	// parsed block ("action" for the content builder). Empty means the
	// flavor has a single implicit shape.
	Discriminator string

	// Actions maps discriminator values to event types.
	Actions map[string]EventType

	// Implicit is the event type for discriminator-less flavors.
	Implicit EventType

	// SurfaceTrailing controls whether prose after a closing fence marker
	// in the same increment is forwarded. The practice flavor never
	// surfaces text adjacent to its JSON block.
	SurfaceTrailing bool

	// Partial enables the speculative mid-fence parse. Zero value disables
	// it; only the resume flavor uses it.
	Partial PartialConfig

	// MaxTokens is the upstream completion budget for this flavor.
	MaxTokens int
}

// PartialConfig tunes the speculative parse of an unfinished fence buffer.
type PartialConfig struct {
	Event EventType // non-terminal event carrying the partial object
	// MinBuffer is how large the fence buffer must be before the first
	// attempt; Stride is how much it must grow between attempts.
	MinBuffer int
	Stride    int
	// Keys lists top-level keys, any of which marks a parse result as a
	// recognizable partial object.
	Keys []string
}

func (p PartialConfig) enabled() bool { return p.Event != "" }

// ContentBuilder recognizes staged resume items declared via an "action"
// field and surfaces the prose around the block.
var ContentBuilder = Flavor{
	Name:          "content-builder",
	Discriminator: "action",
	Actions: map[string]EventType{
		"content_draft": EventContentDraft,
		"content_ready": EventContentReady,
	},
	SurfaceTrailing: true,
	MaxTokens:       1024,
}

// Practice recognizes a single implicit shape, the feedback scorecard, and
// suppresses any text adjacent to it.
var Practice = Flavor{
	Name:            "practice",
	Implicit:        EventFeedbackComplete,
	SurfaceTrailing: false,
	MaxTokens:       1536,
}

// ResumeGen recognizes a single implicit shape, the generated resume, and
// additionally emits best-effort partial versions while the block is still
// streaming.
var ResumeGen = Flavor{
	Name:            "resume",
	Implicit:        EventResumeComplete,
	SurfaceTrailing: true,
	Partial: PartialConfig{
		Event:     EventResumeUpdate,
		MinBuffer: 80,
		Stride:    120,
		Keys:      []string{"contact", "summary", "experience", "skills", "education", "certifications", "projects"},
	},
	MaxTokens: 3072,
}

// Flavors lists every flavor keyed by name, for route wiring and the probe
// tool.
var Flavors = map[string]Flavor{
	ContentBuilder.Name: ContentBuilder,
	Practice.Name:       Practice,
	ResumeGen.Name:      ResumeGen,
}
