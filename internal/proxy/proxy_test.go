package proxy

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/bambuco/boa/internal/logger"
)

func token(target string) string {
	return base64.StdEncoding.EncodeToString([]byte(target))
}

func newTestProxy(t *testing.T, upstream http.Handler) (*Proxy, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return New("/proxy/", []string{u.Hostname()}, srv.Client(), logger.Nop()), srv
}

func TestProxyFetchesTrailingPath(t *testing.T) {
	var gotPath string
	p, srv := newTestProxy(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.WriteString(w, "%PDF-1.4")
	}))

	req := httptest.NewRequest(http.MethodGet, "/proxy/"+token(srv.URL+"/pkg/")+"/content/doc.pdf", nil)
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if gotPath != "/pkg/content/doc.pdf" {
		t.Errorf("upstream path = %q", gotPath)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
}

func TestProxyRejectsMalformedToken(t *testing.T) {
	p, _ := newTestProxy(t, http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/proxy/%21%21not-base64/", nil)
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestProxyRejectsUnlistedHost(t *testing.T) {
	p, _ := newTestProxy(t, http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/proxy/"+token("http://evil.example/")+"/x", nil)
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestProxyRejectsSchemelessTarget(t *testing.T) {
	p, _ := newTestProxy(t, http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/proxy/"+token("not a url")+"/", nil)
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestProxyRewritesRelativeReferences(t *testing.T) {
	const page = `<html><head>
<link rel="stylesheet" href="css/style.css">
<script src="app.js"></script>
</head><body>
<a href="next/page.html">next</a>
<a href="https://other.example/abs">abs</a>
<a href="#top">top</a>
<img src="/rooted.png">
</body></html>`

	p, srv := newTestProxy(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, page)
	}))

	tok := token(srv.URL + "/pkg/")
	req := httptest.NewRequest(http.MethodGet, "/proxy/"+tok+"/content/index.html", nil)
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		`href="/proxy/` + tok + `/content/css/style.css"`,
		`src="/proxy/` + tok + `/content/app.js"`,
		`href="/proxy/` + tok + `/content/next/page.html"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("rewritten page missing %s\n%s", want, body)
		}
	}

	// Absolute, fragment and rooted references stay untouched.
	for _, keep := range []string{
		`href="https://other.example/abs"`,
		`href="#top"`,
		`src="/rooted.png"`,
	} {
		if !strings.Contains(body, keep) {
			t.Errorf("reference should be untouched: %s\n%s", keep, body)
		}
	}
}

func TestProxyForcesAssetContentTypes(t *testing.T) {
	p, srv := newTestProxy(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.WriteString(w, "body{}")
	}))

	tests := []struct {
		path string
		want string
	}{
		{path: "style.css", want: "text/css; charset=utf-8"},
		{path: "app.js", want: "text/javascript; charset=utf-8"},
		{path: "blob.bin", want: "application/octet-stream"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/proxy/"+token(srv.URL+"/")+"/"+tt.path, nil)
		rec := httptest.NewRecorder()
		p.ServeHTTP(rec, req)

		if ct := rec.Header().Get("Content-Type"); ct != tt.want {
			t.Errorf("%s: content type = %q, want %q", tt.path, ct, tt.want)
		}
	}
}

func TestProxyUpstreamUnreachable(t *testing.T) {
	p := New("/proxy/", []string{"127.0.0.1"}, &http.Client{}, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/proxy/"+token("http://127.0.0.1:1/")+"/x", nil)
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}
