package resource

import "strings"

// Kind is the closed set of content families the resolver can embed.
type Kind int

const (
	// KindUnknown covers unrecognized formats. Unknown resources degrade
	// to a plain image fragment rather than failing.
	KindUnknown Kind = iota

	// KindExternal is a link-only resource embedded through a frame.
	KindExternal

	// KindDocument covers pdf, html and packaged tepuy content, all
	// served through the same-origin proxy.
	KindDocument

	KindVideo
	KindAudio
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindExternal:
		return "external"
	case KindDocument:
		return "document"
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// IsMedia reports whether the kind is one of the binary media families.
func (k Kind) IsMedia() bool {
	return k == KindVideo || k == KindAudio || k == KindImage
}

// Classify maps a resource to its content family.
//
// The format hint is free text, so matching is substring based and
// case-insensitive, first match wins: pdf > html > tepuy > video >
// audio > image. External connection type takes precedence over any
// format hint.
func Classify(r *Resource) Kind {
	if r.IsExternal() {
		return KindExternal
	}

	format := strings.ToLower(r.Metadata.Technical.Format)
	if format == "" {
		return KindUnknown
	}

	switch {
	case strings.Contains(format, "pdf"),
		strings.Contains(format, "html"),
		strings.Contains(format, "tepuy"):
		return KindDocument
	case strings.Contains(format, "video"):
		return KindVideo
	case strings.Contains(format, "audio"):
		return KindAudio
	case strings.Contains(format, "image"):
		return KindImage
	default:
		return KindUnknown
	}
}
