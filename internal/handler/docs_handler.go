package handler

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"html/template"
	"net/http"
)

//go:embed openapi.yaml
var openAPIDocument []byte

var swaggerPage = template.Must(template.New("swagger").Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({ url: {{.SpecURL}}, dom_id: '#swagger-ui', persistAuthorization: true });
    </script>
  </body>
</html>`))

const swaggerCSP = "default-src 'self'; connect-src 'self'; script-src 'self' 'unsafe-inline' https://unpkg.com; style-src 'self' https://unpkg.com; img-src 'self' data:"

// DocsHandler serves the embedded OpenAPI document and a Swagger UI page for it.
type DocsHandler struct {
	spec []byte
	etag string
	page []byte
}

func NewDocsHandler() *DocsHandler {
	sum := sha256.Sum256(openAPIDocument)

	var page bytes.Buffer
	_ = swaggerPage.Execute(&page, struct {
		Title   string
		SpecURL string
	}{Title: "Enrollment API", SpecURL: "/openapi.yaml"})

	return &DocsHandler{
		spec: openAPIDocument,
		etag: `"` + hex.EncodeToString(sum[:8]) + `"`,
		page: page.Bytes(),
	}
}

func (h *DocsHandler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("ETag", h.etag)
	w.Header().Set("Cache-Control", "public, max-age=300")
	if r.Header.Get("If-None-Match") == h.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.spec)
}

func (h *DocsHandler) SwaggerUI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Security-Policy", swaggerCSP)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.page)
}
