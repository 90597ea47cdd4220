package build

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitewrap/internal/config"
	ferrors "git.home.luguber.info/inful/sitewrap/internal/foundation/errors"
	"git.home.luguber.info/inful/sitewrap/internal/metrics"
)

const layoutBase = "<div>{{ header }}{{ body }}{{ footer }}</div>"

// project is an on-disk fixture for a sitewrap project root.
type project struct {
	t    *testing.T
	root string
}

func newProject(t *testing.T, manifest string) *project {
	t.Helper()
	p := &project{t: t, root: t.TempDir()}
	p.write("config.json", `{
    "template": {
        "base": "template/layout/base.html",
        "header": "template/layout/header.html",
        "footer": "template/layout/footer.html"
    },
    "manifest": `+manifest+`
}`)
	p.write("template/layout/base.html", layoutBase)
	require.NoError(t, os.MkdirAll(filepath.Join(p.root, "public"), 0o750))
	return p
}

func (p *project) write(rel, content string) {
	p.t.Helper()
	path := filepath.Join(p.root, filepath.FromSlash(rel))
	require.NoError(p.t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(p.t, os.WriteFile(path, []byte(content), 0o600))
}

func (p *project) read(rel string) string {
	p.t.Helper()
	data, err := os.ReadFile(filepath.Join(p.root, filepath.FromSlash(rel)))
	require.NoError(p.t, err)
	return string(data)
}

func (p *project) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(p.root, filepath.FromSlash(rel)))
	return err == nil
}

func (p *project) publicEntries() []os.DirEntry {
	p.t.Helper()
	entries, err := os.ReadDir(filepath.Join(p.root, "public"))
	require.NoError(p.t, err)
	return entries
}

func (p *project) builder() *Builder {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBuilder(config.NewStore(p.root)).WithLogger(logger)
}

func TestBuild_EmptyHeaderMissingFooter(t *testing.T) {
	p := newProject(t, `{}`)
	p.write("template/layout/header.html", "")
	p.write("html/x.html", "<body><p>X</p></body>")

	res, err := p.builder().Build("html/x.html", "x.html")
	require.NoError(t, err)

	assert.Equal(t, "<div><p>X</p></div>", p.read("public/x.html"))
	assert.Equal(t, filepath.Join(p.root, "public", "x.html"), res.OutputPath)
	assert.Equal(t, len("<div><p>X</p></div>"), res.Bytes)
	assert.Equal(t, StatusSuccess, res.Status)
}

func TestBuild_FullEditorExport(t *testing.T) {
	p := newProject(t, `{}`)
	p.write("template/layout/header.html", "<header>Site</header>")
	p.write("template/layout/footer.html", "<footer>(c)</footer>")
	p.write("html/index.html", "<!DOCTYPE html><html><head><title>index</title></head><body><h1>Hello</h1></body></html>")

	_, err := p.builder().Build("html/index.html", "index.html")
	require.NoError(t, err)
	assert.Equal(t, "<div><header>Site</header><h1>Hello</h1><footer>(c)</footer></div>", p.read("public/index.html"))
}

func TestBuild_MissingSourceWritesNothing(t *testing.T) {
	p := newProject(t, `{}`)

	_, err := p.builder().Build("html/missing.html", "blog/missing.html")
	require.Error(t, err)
	assert.True(t, ferrors.HasCode(err, ferrors.CodeMissingSourceFile))
	assert.Empty(t, p.publicEntries())
}

func TestBuild_MissingBaseTemplate(t *testing.T) {
	p := newProject(t, `{}`)
	require.NoError(t, os.Remove(filepath.Join(p.root, "template", "layout", "base.html")))
	p.write("html/x.html", "<p>X</p>")

	_, err := p.builder().Build("html/x.html", "x.html")
	require.Error(t, err)
	assert.True(t, ferrors.HasCode(err, ferrors.CodeMissingBaseTemplate))
	assert.Empty(t, p.publicEntries())
}

func TestBuild_BaseTemplateNotConfigured(t *testing.T) {
	p := newProject(t, `{}`)
	p.write("config.json", `{"template": {}, "manifest": {}}`)
	p.write("html/x.html", "<p>X</p>")

	_, err := p.builder().Build("html/x.html", "x.html")
	require.Error(t, err)
	assert.True(t, ferrors.HasCode(err, ferrors.CodeMissingBaseTemplate))
}

func TestBuild_MissingPublicDirIsNotCreated(t *testing.T) {
	p := newProject(t, `{}`)
	require.NoError(t, os.Remove(filepath.Join(p.root, "public")))
	p.write("html/x.html", "<p>X</p>")

	_, err := p.builder().Build("html/x.html", "x.html")
	require.Error(t, err)
	assert.True(t, ferrors.HasCode(err, ferrors.CodeMissingPublicDir))
	assert.False(t, p.exists("public"))
}

func TestBuild_MissingConfig(t *testing.T) {
	p := newProject(t, `{}`)
	require.NoError(t, os.Remove(filepath.Join(p.root, "config.json")))

	_, err := p.builder().Build("html/x.html", "x.html")
	require.Error(t, err)
	assert.True(t, ferrors.HasCode(err, ferrors.CodeMissingConfig))
}

func TestBuild_CreatesNestedDirectoriesAndOverwrites(t *testing.T) {
	p := newProject(t, `{}`)
	p.write("html/post.html", "<p>new</p>")
	p.write("public/blog/2024/post.html", "old content that is longer than the new page")

	_, err := p.builder().Build("html/post.html", "blog/2024/post.html")
	require.NoError(t, err)
	assert.Equal(t, "<div><p>new</p></div>", p.read("public/blog/2024/post.html"))

	p.write("html/other.html", "<p>o</p>")
	_, err = p.builder().Build("html/other.html", "blog/2025/deep/other.html")
	require.NoError(t, err)
	assert.True(t, p.exists("public/blog/2025/deep/other.html"))
}

func TestBuild_RejectsDestinationOutsidePublic(t *testing.T) {
	tests := []string{"../escape.html", "/etc/escape.html", "", ".", "a/../../escape.html"}
	for _, dest := range tests {
		t.Run(dest, func(t *testing.T) {
			p := newProject(t, `{}`)
			p.write("html/x.html", "<p>X</p>")

			_, err := p.builder().Build("html/x.html", dest)
			require.Error(t, err)
			assert.True(t, ferrors.HasCode(err, ferrors.CodeInvalidDestination))
			assert.False(t, p.exists("escape.html"))
			assert.Empty(t, p.publicEntries())
		})
	}
}

func TestBuild_TemplatesAreReadFreshEachTime(t *testing.T) {
	p := newProject(t, `{}`)
	p.write("html/x.html", "<p>X</p>")
	p.write("template/layout/header.html", "v1")
	b := p.builder()

	_, err := b.Build("html/x.html", "x.html")
	require.NoError(t, err)
	assert.Equal(t, "<div>v1<p>X</p></div>", p.read("public/x.html"))

	p.write("template/layout/header.html", "v2")
	_, err = b.Build("html/x.html", "x.html")
	require.NoError(t, err)
	assert.Equal(t, "<div>v2<p>X</p></div>", p.read("public/x.html"))
}

func TestBuild_DryRunWritesNothing(t *testing.T) {
	p := newProject(t, `{}`)
	p.write("html/x.html", "<p>X</p>")

	res, err := p.builder().WithDryRun(true).Build("html/x.html", "nested/x.html")
	require.NoError(t, err)
	assert.Equal(t, StatusDryRun, res.Status)
	assert.Equal(t, filepath.Join(p.root, "public", "nested", "x.html"), res.OutputPath)
	assert.Empty(t, p.publicEntries())
}

func TestBuild_CustomPublicDir(t *testing.T) {
	p := newProject(t, `{}`)
	p.write("html/x.html", "<p>X</p>")
	require.NoError(t, os.MkdirAll(filepath.Join(p.root, "dist"), 0o750))

	_, err := p.builder().WithPublicDir("dist").Build("html/x.html", "x.html")
	require.NoError(t, err)
	assert.True(t, p.exists("dist/x.html"))
	assert.Empty(t, p.publicEntries())
}

func TestBuildAll_ManifestOrder(t *testing.T) {
	p := newProject(t, `{"html/z.html": "z.html", "html/a.html": "docs/a.html", "html/m.html": "m/index.html"}`)
	p.write("html/z.html", "<p>z</p>")
	p.write("html/a.html", "<p>a</p>")
	p.write("html/m.html", "<p>m</p>")

	results, err := p.builder().BuildAll()
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"html/z.html", "html/a.html", "html/m.html"},
		[]string{results[0].Source, results[1].Source, results[2].Source})
	assert.Equal(t, "<div><p>a</p></div>", p.read("public/docs/a.html"))
	assert.Equal(t, "<div><p>m</p></div>", p.read("public/m/index.html"))
}

func TestBuildAll_HaltsOnFirstFailure(t *testing.T) {
	p := newProject(t, `{"html/one.html": "one.html", "html/two.html": "two.html", "html/three.html": "three.html"}`)
	p.write("html/one.html", "<p>1</p>")
	p.write("html/three.html", "<p>3</p>")

	results, err := p.builder().BuildAll()
	require.Error(t, err)
	assert.True(t, ferrors.HasCode(err, ferrors.CodeMissingSourceFile))

	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	entry, _ := ce.Context().Get("manifest_entry")
	assert.Equal(t, 2, entry)

	require.Len(t, results, 1)
	assert.Equal(t, "html/one.html", results[0].Source)
	assert.True(t, p.exists("public/one.html"))
	assert.False(t, p.exists("public/three.html"), "entries after the failure must not run")
}

func TestBuildAll_EmptyManifest(t *testing.T) {
	p := newProject(t, `{}`)

	results, err := p.builder().BuildAll()
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBuildAll_DefaultInitProject(t *testing.T) {
	root := t.TempDir()
	store := config.NewStore(root)
	require.NoError(t, store.Init())

	p := &project{t: t, root: root}
	p.write("template/layout/base.html", "<html><body>{{ header }}{{ body }}{{ footer }}</body></html>")
	p.write("html/index.html", "<h1>Home</h1>")
	p.write("html/error.html", "<h1>Not found</h1>")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "public"), 0o750))

	results, err := NewBuilder(store).WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).BuildAll()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "<html><body><h1>Home</h1></body></html>", p.read("public/index.html"))
	assert.Equal(t, "<html><body><h1>Not found</h1></body></html>", p.read("public/error.html"))
}

type stageRecorder struct {
	stages   []string
	results  map[string]metrics.ResultLabel
	outcomes map[metrics.BuildOutcomeLabel]int
	pages    int
}

func newStageRecorder() *stageRecorder {
	return &stageRecorder{results: map[string]metrics.ResultLabel{}, outcomes: map[metrics.BuildOutcomeLabel]int{}}
}

func (r *stageRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	r.stages = append(r.stages, stage)
}
func (r *stageRecorder) IncStageResult(stage string, result metrics.ResultLabel) {
	r.results[stage] = result
}
func (r *stageRecorder) ObserveBuildDuration(time.Duration)                 {}
func (r *stageRecorder) IncBuildOutcome(outcome metrics.BuildOutcomeLabel) { r.outcomes[outcome]++ }
func (r *stageRecorder) IncPageWritten(int)                                { r.pages++ }

func TestBuild_RecordsStages(t *testing.T) {
	p := newProject(t, `{}`)
	p.write("html/x.html", "<p>X</p>")
	rec := newStageRecorder()

	_, err := p.builder().WithRecorder(rec).Build("html/x.html", "x.html")
	require.NoError(t, err)
	assert.Equal(t, []string{StageLoadConfig, StageReadTemplates, StageReadSource, StageExtract, StageCompose, StageWrite}, rec.stages)
	assert.Equal(t, 1, rec.outcomes[metrics.BuildOutcomeSuccess])
	assert.Equal(t, 1, rec.pages)

	_, err = p.builder().WithRecorder(rec).Build("html/missing.html", "x.html")
	require.Error(t, err)
	assert.Equal(t, metrics.ResultFailed, rec.results[StageReadSource])
	assert.Equal(t, 1, rec.outcomes[metrics.BuildOutcomeFailed])
}

func TestBuild_LogsStagesAtDebug(t *testing.T) {
	p := newProject(t, `{}`)
	p.write("html/x.html", "<p>X</p>")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := NewBuilder(config.NewStore(p.root)).WithLogger(logger).Build("html/x.html", "x.html")
	require.NoError(t, err)

	out := logs.String()
	for _, stage := range []string{StageLoadConfig, StageReadTemplates, StageReadSource, StageExtract, StageCompose, StageWrite} {
		assert.Contains(t, out, "stage="+stage)
	}
	assert.Contains(t, out, "duration_ms=")
	assert.Contains(t, out, `msg="Generated page"`)
}
