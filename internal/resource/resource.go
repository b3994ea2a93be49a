package resource

import (
	"encoding/json"
	"strings"
)

// Resource represents a remote object-bank item.
//
// Resources are fetched over HTTP and are read-only for this module.
// The bank guarantees `about`, `metadata.general.title.none` and
// `metadata.general.description.none` on every item it serves; missing
// localized fields resolve to the empty string rather than failing.
type Resource struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// About is the canonical URI identifying the resource.
	// It is globally unique and doubles as the detail-fetch endpoint.
	About string `json:"about"`

	// ID is the internal content identifier. It may encode a nested
	// content path in its substring after "/content/".
	ID string `json:"id"`

	// Size is the result weight the query endpoint attaches to search
	// summaries. Result sets are ordered by descending size.
	Size int `json:"size,omitempty"`

	// ─────────────────────────────
	// Descriptive metadata
	// ─────────────────────────────

	Metadata Metadata `json:"metadata"`

	// Manifest describes how the packaged content is laid out.
	Manifest Manifest `json:"manifest"`

	// Social carries render-only engagement counters.
	Social Social `json:"social"`
}

// Metadata groups the general and technical metadata sections.
type Metadata struct {
	General   General   `json:"general"`
	Technical Technical `json:"technical"`
}

// General holds the localized descriptive fields.
type General struct {
	Title       Localized `json:"title"`
	Description Localized `json:"description"`
	Keywords    Localized `json:"keywords"`
}

// Technical holds the free-text format hint.
type Technical struct {
	// Format is a free-text MIME/format hint, e.g. "video/mp4" or "tepuy".
	Format string `json:"format"`
}

// ConexionExternal marks a resource that is just a link to a third-party
// URL rather than packaged content.
const ConexionExternal = "external"

// Manifest describes the package layout of a resource.
type Manifest struct {
	ConexionType string `json:"conexion_type,omitempty"`

	// URL is required when ConexionType == ConexionExternal.
	URL string `json:"url,omitempty"`

	// Entrypoint is the relative path to the main file within the package.
	Entrypoint string `json:"entrypoint,omitempty"`

	// Alternate lists alternate-rendition file names, when present.
	Alternate Alternate `json:"alternate,omitempty"`

	// CustomIcon is the fallback icon URI when no alternate rendition exists.
	CustomIcon string `json:"customicon,omitempty"`
}

// Social holds numeric engagement counters.
type Social struct {
	Comments int   `json:"comments"`
	Views    int   `json:"views"`
	Score    Score `json:"score"`
}

// Score aggregates user ratings.
type Score struct {
	Sum   float64 `json:"sum"`
	Count int     `json:"count"`
	Avg   float64 `json:"avg"`
}

// IsExternal reports whether the resource is only a link to a third-party URL.
func (r *Resource) IsExternal() bool {
	return r.Manifest.ConexionType == ConexionExternal
}

// Title returns the default-locale title.
func (r *Resource) Title() string { return r.Metadata.General.Title.None() }

// Description returns the default-locale description.
func (r *Resource) Description() string { return r.Metadata.General.Description.None() }

// Keywords returns the default-locale keywords, comma-joined when the bank
// sends them as a collection.
func (r *Resource) Keywords() string { return r.Metadata.General.Keywords.None() }

// Localized maps locale codes to text. This module always reads the
// "none" (default) locale.
type Localized map[string]LocText

// None returns the default-locale value, or "" when absent.
func (l Localized) None() string {
	return string(l["none"])
}

// LocText is a localized value that the bank serializes either as a plain
// string or as a string collection (keywords). Collections are joined with
// ", " on decode.
type LocText string

func (t *LocText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = LocText(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*t = LocText(strings.Join(list, ", "))
	return nil
}

func (t LocText) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

// Alternate is the manifest's alternate-renditions field: absent, a single
// path, or an ordered collection of file names.
type Alternate struct {
	// Names holds the rendition file names when the field is a collection.
	Names []string

	// Single holds the value when the field is a scalar path.
	Single string

	present bool
	isList  bool
}

// AlternateList builds a collection-valued alternate field.
func AlternateList(names ...string) Alternate {
	return Alternate{Names: names, present: true, isList: true}
}

// AlternateSingle builds a scalar-valued alternate field.
func AlternateSingle(path string) Alternate {
	return Alternate{Single: path, present: true}
}

// Present reports whether the manifest carried an alternate field at all.
func (a Alternate) Present() bool { return a.present }

// IsList reports whether the field was an ordered collection.
func (a Alternate) IsList() bool { return a.isList }

// Find returns the first rendition name containing the given substring,
// or "" when the field is not a collection or nothing matches.
func (a Alternate) Find(substr string) string {
	if !a.isList {
		return ""
	}
	for _, name := range a.Names {
		if strings.Contains(name, substr) {
			return name
		}
	}
	return ""
}

// Has reports whether the field references the given rendition name:
// exact membership for collections, substring match for scalar paths.
func (a Alternate) Has(name string) bool {
	if a.isList {
		for _, n := range a.Names {
			if n == name {
				return true
			}
		}
		return false
	}
	return strings.Contains(a.Single, name)
}

func (a *Alternate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Single = s
		a.present = true
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	a.Names = list
	a.present = true
	a.isList = true
	return nil
}

func (a Alternate) MarshalJSON() ([]byte, error) {
	switch {
	case !a.present:
		return []byte("null"), nil
	case a.isList:
		return json.Marshal(a.Names)
	default:
		return json.Marshal(a.Single)
	}
}
