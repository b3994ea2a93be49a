package resource

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		conexion string
		expected Kind
	}{
		{name: "pdf document", format: "application/pdf", expected: KindDocument},
		{name: "html document", format: "text/HTML", expected: KindDocument},
		{name: "tepuy package", format: "tepuy", expected: KindDocument},
		{name: "video", format: "video/mp4", expected: KindVideo},
		{name: "audio", format: "audio/mpeg", expected: KindAudio},
		{name: "image", format: "image/png", expected: KindImage},
		{name: "case insensitive", format: "VIDEO/WEBM", expected: KindVideo},
		{name: "unrecognized format", format: "application/zip", expected: KindUnknown},
		{name: "missing format", format: "", expected: KindUnknown},
		{name: "external wins over format", format: "video/mp4", conexion: "external", expected: KindExternal},
		{name: "pdf wins over video substring", format: "pdf+video", expected: KindDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Resource{}
			r.Metadata.Technical.Format = tt.format
			r.Manifest.ConexionType = tt.conexion

			if got := Classify(r); got != tt.expected {
				t.Errorf("Classify() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestKindIsMedia(t *testing.T) {
	media := []Kind{KindVideo, KindAudio, KindImage}
	for _, k := range media {
		if !k.IsMedia() {
			t.Errorf("%v should be media", k)
		}
	}

	notMedia := []Kind{KindExternal, KindDocument, KindUnknown}
	for _, k := range notMedia {
		if k.IsMedia() {
			t.Errorf("%v should not be media", k)
		}
	}
}
