package resource

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

// DefaultItemTemplate is the built-in minimal list-item template used when
// the caller supplies none.
const DefaultItemTemplate = `<div class="boa-item">` +
	`<div class="boa-thumb"><img src="{thumb}" alt="{title}" /></div>` +
	`<div class="boa-content"><h3>{title}</h3><p>{description}</p>` +
	`<div class="boa-social">` +
	`<span class="boa-comments">{comments}</span>` +
	`<span class="boa-score">{score}</span>` +
	`<span class="boa-views">{views}</span>` +
	`</div></div></div>`

// RenderItem substitutes a resource's fields into the named placeholders of
// a list-item template: {thumb}, {title}, {about}, {description},
// {comments}, {score}, {views} and {type}. Values are HTML-escaped; the
// score renders as "sum/count" when at least one rating exists, else "0".
//
// The result is a pure string transform; attaching interactivity is the
// caller's concern.
func RenderItem(r *Resource, tpl string) string {
	if tpl == "" {
		tpl = DefaultItemTemplate
	}

	score := "0"
	if r.Social.Score.Count > 0 {
		score = fmt.Sprintf("%v/%d", r.Social.Score.Sum, r.Social.Score.Count)
	}

	replacer := strings.NewReplacer(
		"{thumb}", html.EscapeString(Preview(r)),
		"{title}", html.EscapeString(r.Title()),
		"{about}", html.EscapeString(r.About),
		"{description}", html.EscapeString(r.Description()),
		"{comments}", strconv.Itoa(r.Social.Comments),
		"{score}", html.EscapeString(score),
		"{views}", strconv.Itoa(r.Social.Views),
		"{type}", html.EscapeString(r.Metadata.Technical.Format),
	)

	return replacer.Replace(tpl)
}

// Network is a social-network share-link template. The URL carries {url}
// and {name} placeholders.
type Network struct {
	Name string
	URL  string
	Icon string
}

// ShareLink is a ready-to-use share URL for one network.
type ShareLink struct {
	Name string
	URL  string
	Icon string
}

// ShareLinks expands the configured share templates for a resource.
func ShareLinks(networks []Network, r *Resource) []ShareLink {
	links := make([]ShareLink, 0, len(networks))
	for _, n := range networks {
		u := strings.ReplaceAll(n.URL, "{url}", r.About+contentMarker)
		u = strings.ReplaceAll(u, "{name}", r.Title())
		links = append(links, ShareLink{Name: n.Name, URL: u, Icon: n.Icon})
	}
	return links
}
