package resource

import (
	"bytes"
	"encoding/base64"
	"html/template"
	"strings"
)

// Embed is the result of resolving a resource into an embeddable fragment.
type Embed struct {
	Kind Kind

	// Markup is the embeddable HTML fragment. Empty when the resource
	// carries no format hint; callers must treat that as unresolvable,
	// not as an error.
	Markup string

	// Downloadable is false only for external (link-only) resources.
	Downloadable bool
}

// ResolveOptions parameterizes markup generation.
type ResolveOptions struct {
	// ProxyPrefix is the path prefix of the same-origin reverse proxy.
	// Defaults to "/proxy/".
	ProxyPrefix string
}

const defaultProxyPrefix = "/proxy/"

// contentMarker separates a resource URI from a path inside its package.
const contentMarker = "/!/"

var (
	externalTpl = template.Must(template.New("external").Parse(
		`<iframe src="{{.URL}}"></iframe><p><a target="_blank" href="{{.URL}}">{{.URL}}</a></p>`))

	// The scorm_object id is required by tepuy players to hook into the frame.
	documentTpl = template.Must(template.New("document").Parse(
		`<iframe id="scorm_object" src="{{.Src}}" type="{{.Format}}"></iframe>`))

	videoTpl = template.Must(template.New("video").Parse(
		`<video controls><source src="{{.Src}}" type="{{.Format}}"></source></video>`))

	audioTpl = template.Must(template.New("audio").Parse(
		`<audio controls><source src="{{.Src}}" type="{{.Format}}"></source></audio>`))

	imageTpl = template.Must(template.New("image").Parse(
		`<img src="{{.Src}}" alt="{{.Alt}}"/>`))
)

// Resolve maps a resource's metadata to an embeddable markup fragment.
//
// The dispatch is ordered, first match wins:
//  1. external resources embed manifest.url in a frame plus a visible
//     fallback link for cross-origin frames that refuse to render;
//  2. resources without a format hint yield no markup;
//  3. pdf/html/tepuy formats are framed through the same-origin proxy;
//  4. binary media picks an alternate rendition (small > medium > raw
//     entrypoint; thumb > customicon for non-media) and emits a
//     video/audio/img fragment.
//
// Unrecognized formats fall through to an img fragment with no guaranteed
// validity; that is graceful degradation, not an error.
func Resolve(r *Resource, opts ResolveOptions) Embed {
	kind := Classify(r)

	if kind == KindExternal {
		return Embed{
			Kind:         KindExternal,
			Markup:       render(externalTpl, map[string]string{"URL": r.Manifest.URL}),
			Downloadable: false,
		}
	}

	format := r.Metadata.Technical.Format
	if format == "" {
		return Embed{Kind: KindUnknown, Downloadable: true}
	}

	if kind == KindDocument {
		prefix := opts.ProxyPrefix
		if prefix == "" {
			prefix = defaultProxyPrefix
		}
		src := prefix + base64.StdEncoding.EncodeToString([]byte(r.About+contentMarker)) + "/"
		return Embed{
			Kind:         KindDocument,
			Markup:       render(documentTpl, map[string]string{"Src": src, "Format": format}),
			Downloadable: true,
		}
	}

	src := mediaSource(r, kind)

	var markup string
	switch kind {
	case KindVideo:
		markup = render(videoTpl, map[string]string{"Src": src, "Format": format})
	case KindAudio:
		markup = render(audioTpl, map[string]string{"Src": src, "Format": format})
	default:
		markup = render(imageTpl, map[string]string{"Src": src, "Alt": r.Title()})
	}

	return Embed{Kind: kind, Markup: markup, Downloadable: true}
}

// mediaSource computes the source path for binary media fragments.
func mediaSource(r *Resource, kind Kind) string {
	base := alternateBase(r)

	if r.Manifest.Alternate.Present() && r.Manifest.Entrypoint != "" {
		alterPath := r.About + contentMarker + ".alternate/" + base + "/"

		if kind.IsMedia() {
			if name := r.Manifest.Alternate.Find("small"); name != "" {
				return alterPath + name
			}
			if name := r.Manifest.Alternate.Find("medium"); name != "" {
				return alterPath + name
			}
			return r.About + contentMarker + r.Manifest.Entrypoint
		}

		if name := r.Manifest.Alternate.Find("thumb"); name != "" {
			return alterPath + name
		}
		return r.Manifest.CustomIcon
	}

	if kind.IsMedia() {
		return r.About + contentMarker
	}
	return r.Manifest.CustomIcon
}

// alternateBase is the content path the alternate renditions hang off:
// the substring of the id after "/content/" when present, else the
// manifest entrypoint.
func alternateBase(r *Resource) string {
	const marker = "/content/"
	if idx := strings.Index(r.ID, marker); idx >= 0 {
		return r.ID[idx+len(marker):]
	}
	return r.Manifest.Entrypoint
}

// Preview returns the preview-thumbnail URL for a resource.
func Preview(r *Resource) string {
	if r.Manifest.Alternate.Present() && r.Manifest.Entrypoint != "" {
		alterPath := r.About + contentMarker + ".alternate/" + alternateBase(r)

		if r.Manifest.Alternate.Has("preview.png") {
			return alterPath + "/preview.png"
		}
		if r.Manifest.Alternate.Has("thumb.png") {
			return alterPath + "/thumb.png"
		}
	}

	return r.About + ".img?s=128"
}

// FinalURI is the address a learner lands on when opening the resource
// outside of an embed: the external URL for link-only resources, else the
// package entrypoint.
func FinalURI(r *Resource) string {
	if r.IsExternal() {
		return r.Manifest.URL
	}
	uri := r.About + contentMarker
	if r.Manifest.Entrypoint != "" {
		uri += r.Manifest.Entrypoint
	}
	return uri
}

func render(tpl *template.Template, data any) string {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}
