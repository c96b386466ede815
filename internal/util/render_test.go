package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFS = fstest.MapFS{
	"t/layout.html": {Data: []byte(`{{define "base"}}<main>{{template "content" .}}</main>{{end}}`)},
	"t/hello.html":  {Data: []byte(`{{define "content"}}hi {{.Name}} {{date .When}} {{add 1 2}}{{end}}`)},
	"t/broken.html": {Data: []byte(`{{define "content"}}{{.Missing.Field}}{{end}}`)},
}

func TestRender(t *testing.T) {
	r, err := NewRenderer(testFS, "t")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	when := time.Date(2021, 3, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, r.Render(rec, http.StatusTeapot, "hello.html", map[string]any{"Name": "<b>", "When": when}))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<main>hi &lt;b&gt; 1 Mar 2021 12:30 3</main>", rec.Body.String())
}

func TestRenderErrorsWriteNothing(t *testing.T) {
	r, err := NewRenderer(testFS, "t")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	assert.Error(t, r.Render(rec, http.StatusOK, "nope.html", nil))

	rec = httptest.NewRecorder()
	assert.Error(t, r.Render(rec, http.StatusOK, "broken.html", struct{}{}))
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Content-Type"))
}
