package pipeline

// Kind tags the terminal state of one pipeline run.
type Kind int

const (
	KindInternalError Kind = iota
	KindInvalidURL
	KindAlreadyExists
	KindTranscriptUnavailable
	KindGenerationFailed
	KindGenerated
)

var kindNames = map[Kind]string{
	KindInternalError:         "internal_error",
	KindInvalidURL:            "invalid_url",
	KindAlreadyExists:         "already_exists",
	KindTranscriptUnavailable: "transcript_unavailable",
	KindGenerationFailed:      "generation_failed",
	KindGenerated:             "generated",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Outcome is the result of Service.Process.
//
// Title holds the stored title for KindAlreadyExists, the generated title for
// KindGenerated and the raw provider value (possibly the failure sentinel or
// empty) for KindGenerationFailed. Err carries the cause for failure kinds.
type Outcome struct {
	Kind    Kind
	VideoID string
	Title   string
	Err     error
}

// Succeeded reports whether the outcome carries a usable title.
func (o Outcome) Succeeded() bool {
	return o.Kind == KindAlreadyExists || o.Kind == KindGenerated
}
