package resource

import (
	"strings"
	"testing"
)

func listItemResource() *Resource {
	r := &Resource{About: "https://bank.example.org/resources/item1"}
	r.Metadata.General.Title = Localized{"none": "A title"}
	r.Metadata.General.Description = Localized{"none": "A description"}
	r.Metadata.Technical.Format = "video/mp4"
	r.Social.Comments = 4
	r.Social.Views = 120
	r.Social.Score.Sum = 9
	r.Social.Score.Count = 2
	return r
}

func TestRenderItemDefaultTemplate(t *testing.T) {
	r := listItemResource()

	out := RenderItem(r, "")

	for _, want := range []string{"A title", "A description", ">4<", ">120<", "9/2"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered item missing %q: %s", want, out)
		}
	}
	if strings.Contains(out, "{title}") || strings.Contains(out, "{thumb}") {
		t.Errorf("unsubstituted placeholders left in output: %s", out)
	}
}

func TestRenderItemCustomTemplate(t *testing.T) {
	r := listItemResource()

	out := RenderItem(r, `<li data-about="{about}">{title} ({type}) {score}</li>`)

	want := `<li data-about="https://bank.example.org/resources/item1">A title (video/mp4) 9/2</li>`
	if out != want {
		t.Errorf("RenderItem() = %q, want %q", out, want)
	}
}

func TestRenderItemZeroScore(t *testing.T) {
	r := listItemResource()
	r.Social.Score.Count = 0

	out := RenderItem(r, "{score}")
	if out != "0" {
		t.Errorf("score with zero count = %q, want \"0\"", out)
	}
}

func TestRenderItemEscapesMetadata(t *testing.T) {
	r := listItemResource()
	r.Metadata.General.Title = Localized{"none": `<img onerror="x">`}

	out := RenderItem(r, "{title}")
	if strings.Contains(out, "<img") {
		t.Errorf("title not escaped: %q", out)
	}
}

func TestShareLinks(t *testing.T) {
	networks := []Network{
		{Name: "facebook", URL: "https://www.facebook.com/sharer/sharer.php?u={url}&t={name}"},
		{Name: "twitter", URL: "https://twitter.com/intent/tweet?source={url}&text={name}"},
	}

	r := listItemResource()
	links := ShareLinks(networks, r)

	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if !strings.Contains(links[0].URL, r.About+"/!/") {
		t.Errorf("share link missing resource URL: %q", links[0].URL)
	}
	if !strings.Contains(links[0].URL, "A title") {
		t.Errorf("share link missing resource name: %q", links[0].URL)
	}
	if strings.Contains(links[1].URL, "{url}") || strings.Contains(links[1].URL, "{name}") {
		t.Errorf("placeholders left in share link: %q", links[1].URL)
	}
}
