package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aisa-it/aiplan/docexport/internal/aiplan/apierrors"
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/editor/edtypes"
	policy "github.com/aisa-it/aiplan/docexport/internal/aiplan/render-policy"
	sandbox "github.com/aisa-it/aiplan/docexport/internal/aiplan/render-sandbox"
	"github.com/aisa-it/aiplan/docexport/pkg/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalPDF собирает корректный PDF с заданным числом пустых страниц.
func minimalPDF(pages int) []byte {
	objs := []string{"<< /Type /Catalog /Pages 2 0 R >>", ""}
	kids := make([]string, 0, pages)
	for i := 0; i < pages; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", i+3))
		objs = append(objs, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>")
	}
	objs[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages)

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return b.Bytes()
}

type fakeEngine struct {
	render   func(ctx context.Context) (sandbox.Result, error)
	document string
	closed   atomic.Int32
}

func (f *fakeEngine) Render(ctx context.Context, document string) (sandbox.Result, error) {
	f.document = document
	return f.render(ctx)
}

func (f *fakeEngine) Close() error {
	f.closed.Add(1)
	return nil
}

type fakeLauncher struct {
	engine   *fakeEngine
	err      error
	launched atomic.Int32
}

func (l *fakeLauncher) Launch(ctx context.Context) (sandbox.Engine, error) {
	l.launched.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	return l.engine, nil
}

func newFake(render func(ctx context.Context) (sandbox.Result, error)) (*fakeLauncher, *fakeEngine) {
	engine := &fakeEngine{render: render}
	return &fakeLauncher{engine: engine}, engine
}

func returns(res sandbox.Result) func(context.Context) (sandbox.Result, error) {
	return func(context.Context) (sandbox.Result, error) { return res, nil }
}

const scriptDoc = `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"<script>alert(1)</script>"}]}]}`

func TestExportDocumentSuccess(t *testing.T) {
	launcher, engine := newFake(returns(sandbox.Result{
		PDF:           minimalPDF(1),
		Blocked:       2,
		BlockedByType: map[string]int{"Image": 2},
	}))
	metrics := NewMetrics(prometheus.NewRegistry())
	e := NewExporter(launcher, nil, WithMetrics(metrics))

	out, err := e.ExportDocument(context.Background(), StoredDocument{
		ID:      "doc-1",
		Title:   "План <b>",
		Content: []byte(scriptDoc),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-1.4")))

	assert.Equal(t, int32(1), engine.closed.Load())
	assert.Contains(t, engine.document, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, engine.document, "<script>")
	assert.Contains(t, engine.document, "<title>План &lt;b&gt;</title>")
	assert.Contains(t, engine.document, `<h1 class="document-title">План &lt;b&gt;</h1>`)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.exports.WithLabelValues(resultOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.blocked.WithLabelValues("Image")))
}

func TestExportDocumentTree(t *testing.T) {
	launcher, engine := newFake(returns(sandbox.Result{PDF: minimalPDF(1)}))
	e := NewExporter(launcher, nil)

	_, err := e.ExportDocument(context.Background(), StoredDocument{
		ID:   "doc-tree",
		Tree: &edtypes.Document{Content: []edtypes.Node{&edtypes.Paragraph{Content: []edtypes.Node{&edtypes.Text{Text: "из дерева"}}}}},
	})
	require.NoError(t, err)
	assert.Contains(t, engine.document, "<p>из дерева</p>")
}

func TestExportEmptyDocument(t *testing.T) {
	launcher, _ := newFake(returns(sandbox.Result{PDF: minimalPDF(1)}))
	e := NewExporter(launcher, nil)

	out, err := e.ExportDocument(context.Background(), StoredDocument{ID: "empty", Content: []byte(`{"type":"doc"}`)})
	require.NoError(t, err)
	assert.NoError(t, validatePDF(out))
}

func TestExportMalformed(t *testing.T) {
	launcher, _ := newFake(returns(sandbox.Result{PDF: minimalPDF(1)}))
	metrics := NewMetrics(prometheus.NewRegistry())
	e := NewExporter(launcher, nil, WithMetrics(metrics))

	for _, content := range []string{``, `{"type":"doc","content":[`, `{"type":"paragraph"}`, `[]`} {
		_, err := e.ExportDocument(context.Background(), StoredDocument{ID: "bad", Content: []byte(content)})
		assert.ErrorIs(t, err, apierrors.ErrMalformedDocument, content)
	}

	assert.Equal(t, int32(0), launcher.launched.Load())
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.exports.WithLabelValues(resultMalformed)))
}

func TestExportTimeout(t *testing.T) {
	launcher, engine := newFake(func(ctx context.Context) (sandbox.Result, error) {
		<-ctx.Done()
		return sandbox.Result{}, ctx.Err()
	})
	e := NewExporter(launcher, nil, WithTimeout(20*time.Millisecond))

	_, err := e.ExportDocument(context.Background(), StoredDocument{ID: "slow", Content: []byte(scriptDoc)})
	assert.ErrorIs(t, err, apierrors.ErrRenderTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), engine.closed.Load())
}

func TestExportCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	launcher, engine := newFake(func(renderCtx context.Context) (sandbox.Result, error) {
		cancel()
		<-renderCtx.Done()
		return sandbox.Result{}, renderCtx.Err()
	})
	e := NewExporter(launcher, nil)

	out, err := e.ExportDocument(ctx, StoredDocument{ID: "gone", Content: []byte(scriptDoc)})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, apierrors.ErrExportCanceled)
	assert.False(t, errors.Is(err, apierrors.ErrRenderTimeout))
	assert.Equal(t, int32(1), engine.closed.Load())
}

func TestExportLaunchFailure(t *testing.T) {
	launcher := &fakeLauncher{err: errors.New("exec: chrome not found")}
	e := NewExporter(launcher, nil)

	_, err := e.ExportDocument(context.Background(), StoredDocument{ID: "x", Content: []byte(scriptDoc)})
	assert.ErrorIs(t, err, apierrors.ErrRenderEngineFailure)
	assert.ErrorContains(t, err, "chrome not found")
}

func TestExportPanicReleasesEngine(t *testing.T) {
	launcher, engine := newFake(func(context.Context) (sandbox.Result, error) {
		panic("renderer crashed")
	})
	l := limiter.NewCommunityLimiter(1)
	e := NewExporter(launcher, nil, WithLimiter(l))

	out, err := e.ExportDocument(context.Background(), StoredDocument{ID: "boom", Content: []byte(scriptDoc)})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, apierrors.ErrRenderEngineFailure)
	assert.Equal(t, int32(1), engine.closed.Load())

	// Слот лимитера освобожден.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	release, err := l.Acquire(ctx)
	require.NoError(t, err)
	release()
}

func TestExportInvalidOutput(t *testing.T) {
	tests := []struct {
		name     string
		pdf      []byte
		noOutput bool
	}{
		{"empty", nil, true},
		{"garbage", []byte(strings.Repeat("not a pdf ", 20)), false},
		{"no pages", minimalPDF(0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			launcher, engine := newFake(returns(sandbox.Result{PDF: tt.pdf}))
			e := NewExporter(launcher, nil)

			out, err := e.ExportDocument(context.Background(), StoredDocument{ID: tt.name, Content: []byte(scriptDoc)})
			assert.Nil(t, out)
			assert.ErrorIs(t, err, apierrors.ErrRenderEngineFailure)
			if tt.noOutput {
				assert.ErrorIs(t, err, sandbox.ErrNoOutput)
			}
			assert.Equal(t, int32(1), engine.closed.Load())
		})
	}
}

func TestExportWaitsForLimiter(t *testing.T) {
	l := limiter.NewCommunityLimiter(1)
	release, err := l.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	launcher, _ := newFake(returns(sandbox.Result{PDF: minimalPDF(1)}))
	e := NewExporter(launcher, nil, WithLimiter(l))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = e.ExportDocument(ctx, StoredDocument{ID: "queued", Content: []byte(scriptDoc)})
	assert.ErrorIs(t, err, apierrors.ErrExportCanceled)
	assert.Equal(t, int32(0), launcher.launched.Load())
}

func TestExportHTML(t *testing.T) {
	e := NewExporter(nil, nil)

	doc := StoredDocument{
		Title: "Ссылки",
		Content: []byte(`{"type":"doc","content":[
			{"type":"paragraph","content":[{"type":"text","text":"meta","marks":[{"type":"link","attrs":{"href":"http://169.254.169.254/latest/meta-data"}}]}]},
			{"type":"image","attrs":{"src":"http://localhost/secret.png","alt":"x"}},
			{"type":"heading","attrs":{"level":0},"content":[{"type":"text","text":"Top"}]}
		]}`),
	}

	first, err := e.ExportHTML(doc)
	require.NoError(t, err)
	second, err := e.ExportHTML(doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.NotContains(t, first, "169.254.169.254")
	assert.NotContains(t, first, "localhost")
	assert.Contains(t, first, `<a href="#"`)
	assert.Contains(t, first, `<img src="#"`)
	assert.Contains(t, first, "<h1>Top</h1>")
}

func TestExportHTMLDeepDocument(t *testing.T) {
	const depth = 10000
	content := `{"type":"doc","content":[` +
		strings.Repeat(`{"type":"blockquote","content":[`, depth) +
		`{"type":"paragraph","content":[{"type":"text","text":"<bottom>"}]}` +
		strings.Repeat(`]}`, depth) + `]}`

	e := NewExporter(nil, nil)
	out, err := e.ExportHTML(StoredDocument{ID: "deep", Content: []byte(content)})
	require.NoError(t, err)
	assert.Contains(t, out, "&lt;bottom&gt;")
	assert.Greater(t, strings.Count(out, "<blockquote>"), 0)
	assert.LessOrEqual(t, strings.Count(out, "<blockquote>"), policy.DefaultMaxDepth)
}
