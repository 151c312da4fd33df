package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapDocumentTitle(t *testing.T) {
	out := WrapDocument("<p>текст</p>", `Отчет "Q1" & <итоги>`)

	escaped := "Отчет &#34;Q1&#34; &amp; &lt;итоги&gt;"
	assert.Contains(t, out, "<title>"+escaped+"</title>")
	assert.Contains(t, out, `<h1 class="document-title">`+escaped+"</h1>")
	assert.Contains(t, out, "<p>текст</p>")
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
}

func TestWrapDocumentNoExternalReferences(t *testing.T) {
	out := WrapDocument("", "")

	for _, ref := range []string{"http:", "https:", "url(", "@import", "<link", "<script", "src="} {
		assert.NotContains(t, out, ref)
	}
	assert.Contains(t, out, "<style>")
	assert.Contains(t, out, "font-family:")
}

func TestWrapDocumentStyleMinified(t *testing.T) {
	assert.NotContains(t, string(documentStyle), "/*")
	assert.NotContains(t, string(documentStyle), "\n")
	assert.Less(t, len(documentStyle), len(rawStyle))
}

func TestWrapDocumentSanitizesFragment(t *testing.T) {
	out := WrapDocument(`<p onclick="steal()">a</p><script>alert(1)</script>`+
		`<img src="javascript:alert(1)" onerror="x()"><link rel="stylesheet" href="https://evil.example/x.css">`+
		`<iframe src="https://evil.example"></iframe><p style="text-align: center">b</p>`, "t")

	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
	assert.NotContains(t, out, "onerror")
	assert.NotContains(t, out, "evil.example")
	assert.NotContains(t, out, "<iframe")
	assert.Contains(t, out, "<p>a</p>")
	assert.Contains(t, out, "text-align: center")
}
