package proxy

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/bambuco/boa/internal/logger"
)

// Proxy serves remote repository content from the plugin's own origin so
// framed documents escape cross-origin restrictions. Requests are shaped
// as {prefix}{base64(target)}/{trailing path}; only hosts on the
// allow-list are reachable.
type Proxy struct {
	prefix  string
	allowed map[string]struct{}
	client  *http.Client
	log     logger.Logger
}

// New creates a proxy restricted to the given hosts. prefix is the mount
// path and must end with a slash.
func New(prefix string, hosts []string, client *http.Client, log logger.Logger) *Proxy {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	allowed := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		allowed[strings.ToLower(h)] = struct{}{}
	}
	return &Proxy{
		prefix:  prefix,
		allowed: allowed,
		client:  client,
		log:     log,
	}
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, p.prefix)
	token, trailing, _ := strings.Cut(rest, "/")

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		http.Error(w, "malformed proxy token", http.StatusBadRequest)
		return
	}

	target, err := url.Parse(string(raw))
	if err != nil || target.Scheme == "" || target.Host == "" {
		http.Error(w, "malformed target address", http.StatusBadRequest)
		return
	}

	if _, ok := p.allowed[strings.ToLower(target.Hostname())]; !ok {
		p.log.Warn("refused proxy request for unlisted host",
			logger.String("host", target.Hostname()))
		http.Error(w, "host not allowed", http.StatusForbidden)
		return
	}

	upstream := *target
	if trailing != "" {
		ref, err := url.Parse(trailing)
		if err != nil {
			http.Error(w, "malformed trailing path", http.StatusBadRequest)
			return
		}
		upstream = *target.ResolveReference(ref)
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, upstream.String(), nil)
	if err != nil {
		http.Error(w, "bad upstream request", http.StatusBadRequest)
		return
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Error("upstream fetch failed",
			logger.String("url", upstream.String()),
			logger.Error(err))
		http.Error(w, "upstream unreachable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	contentType := contentTypeFor(trailing, resp.Header.Get("Content-Type"))
	w.Header().Set("Content-Type", contentType)

	if strings.Contains(contentType, "text/html") {
		body, err := p.rewriteHTML(resp.Body, token, trailing)
		if err != nil {
			http.Error(w, "unreadable upstream document", http.StatusBadGateway)
			return
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = io.WriteString(w, body)
		return
	}

	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

// rewriteHTML routes every relative href/src in the document back through
// the proxy so nested assets stay same-origin.
func (p *Proxy) rewriteHTML(body io.Reader, token, trailing string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", err
	}

	base := path.Dir(trailing)
	if base == "." {
		base = ""
	}

	rewrite := func(attr string) func(int, *goquery.Selection) {
		return func(_ int, sel *goquery.Selection) {
			ref, ok := sel.Attr(attr)
			if !ok || !isRelative(ref) {
				return
			}
			joined := ref
			if base != "" {
				joined = base + "/" + ref
			}
			sel.SetAttr(attr, p.prefix+token+"/"+path.Clean(joined))
		}
	}

	doc.Find("[href]").Each(rewrite("href"))
	doc.Find("[src]").Each(rewrite("src"))

	return doc.Html()
}

// isRelative reports whether a reference should be routed through the
// proxy. Absolute URLs, fragments and non-http schemes pass untouched.
func isRelative(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "/") {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// contentTypeFor fixes the content type for stylesheet and script assets:
// repositories serve package members with a generic type, which browsers
// refuse to apply.
func contentTypeFor(trailing, upstream string) string {
	switch strings.ToLower(path.Ext(trailing)) {
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "text/javascript; charset=utf-8"
	}
	if upstream != "" {
		return upstream
	}
	return "application/octet-stream"
}
