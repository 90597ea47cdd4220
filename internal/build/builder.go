package build

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitewrap/internal/compose"
	"git.home.luguber.info/inful/sitewrap/internal/config"
	ferrors "git.home.luguber.info/inful/sitewrap/internal/foundation/errors"
	"git.home.luguber.info/inful/sitewrap/internal/htmlbody"
	"git.home.luguber.info/inful/sitewrap/internal/logfields"
	"git.home.luguber.info/inful/sitewrap/internal/metrics"
)

// Stage names reported to the metrics recorder.
const (
	StageLoadConfig    = "load_config"
	StageReadTemplates = "read_templates"
	StageReadSource    = "read_source"
	StageExtract       = "extract"
	StageCompose       = "compose"
	StageWrite         = "write"
)

// Builder generates pages for one project root.
type Builder struct {
	store     *config.Store
	publicDir string
	dryRun    bool
	logger    *slog.Logger
	recorder  metrics.Recorder
}

// NewBuilder returns a Builder reading config.json through store.
func NewBuilder(store *config.Store) *Builder {
	return &Builder{
		store:     store,
		publicDir: DefaultPublicDir,
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
	}
}

// WithLogger sets the logger used for progress messages.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithRecorder sets the metrics recorder.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r != nil {
		b.recorder = r
	}
	return b
}

// WithPublicDir overrides the output directory name under the project root.
func (b *Builder) WithPublicDir(name string) *Builder {
	if name != "" {
		b.publicDir = name
	}
	return b
}

// WithDryRun runs every read and check but skips directory creation and writes.
func (b *Builder) WithDryRun(dryRun bool) *Builder {
	b.dryRun = dryRun
	return b
}

// Build generates dest (relative to the public directory) from source
// (relative to the project root).
func (b *Builder) Build(source, dest string) (*Result, error) {
	var cfg *config.ProjectConfig
	err := b.stage(StageLoadConfig, func() error {
		var err error
		cfg, err = b.store.Load()
		return err
	})
	if err != nil {
		b.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		return nil, err
	}
	return b.build(cfg, source, dest)
}

// BuildAll generates every manifest entry in order. The first failure stops
// the run; the results of the pages already written are returned with it.
func (b *Builder) BuildAll() ([]*Result, error) {
	var cfg *config.ProjectConfig
	err := b.stage(StageLoadConfig, func() error {
		var err error
		cfg, err = b.store.Load()
		return err
	})
	if err != nil {
		b.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		return nil, err
	}

	if len(cfg.Manifest) == 0 {
		b.logger.Warn("Manifest is empty, nothing to generate", logfields.Config(b.store.Path()))
		return nil, nil
	}

	b.logger.Info("Generating pages from manifest", logfields.Entries(len(cfg.Manifest)))
	results := make([]*Result, 0, len(cfg.Manifest))
	for i, entry := range cfg.Manifest {
		res, err := b.build(cfg, entry.Source, entry.Dest)
		if err != nil {
			b.logger.Error("Manifest entry failed, stopping",
				logfields.Index(i), logfields.Source(entry.Source), logfields.Dest(entry.Dest), logfields.Error(err))
			if ce, ok := ferrors.AsClassified(err); ok {
				err = ce.WithContext("manifest_entry", i+1)
			}
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (b *Builder) build(cfg *config.ProjectConfig, source, dest string) (*Result, error) {
	start := time.Now()
	res, err := b.run(cfg, source, dest)
	elapsed := time.Since(start)
	b.recorder.ObserveBuildDuration(elapsed)
	if err != nil {
		b.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		return nil, err
	}
	res.Duration = elapsed
	b.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)

	attrs := []any{
		logfields.Source(source), logfields.Dest(dest), logfields.Path(res.OutputPath),
		logfields.Bytes(res.Bytes), logfields.DurationMS(durationMS(elapsed)),
	}
	if res.Status == StatusDryRun {
		b.logger.Info("Dry run, page not written", attrs...)
	} else {
		b.logger.Info("Generated page", attrs...)
	}
	return res, nil
}

func (b *Builder) run(cfg *config.ProjectConfig, source, dest string) (*Result, error) {
	var parts compose.Parts
	err := b.stage(StageReadTemplates, func() error {
		var err error
		parts, err = b.loadParts(cfg.Template)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !strings.Contains(parts.Base, compose.Body) {
		b.logger.Warn("Base template has no body placeholder", logfields.Path(b.store.Resolve(cfg.Template.Base)))
	}

	var doc string
	if err := b.stage(StageReadSource, func() error {
		var err error
		doc, err = b.readSource(source)
		return err
	}); err != nil {
		return nil, err
	}

	var body string
	if err := b.stage(StageExtract, func() error {
		var err error
		body, err = htmlbody.Extract(doc)
		if err != nil {
			return ferrors.BuildError("failed to extract body").
				WithCause(err).
				WithContext("source", source).
				Build()
		}
		return nil
	}); err != nil {
		return nil, err
	}

	var page string
	if err := b.stage(StageCompose, func() error {
		page = parts.Compose(body)
		return nil
	}); err != nil {
		return nil, err
	}

	res := &Result{Source: source, Dest: dest, Bytes: len(page), Status: StatusSuccess}
	if err := b.stage(StageWrite, func() error {
		var err error
		res.OutputPath, err = b.write(dest, page)
		return err
	}); err != nil {
		return nil, err
	}

	if b.dryRun {
		res.Status = StatusDryRun
		return res, nil
	}
	b.recorder.IncPageWritten(res.Bytes)
	return res, nil
}

func (b *Builder) readSource(source string) (string, error) {
	path := b.store.Resolve(source)
	doc, ok, err := readFileIfExists(path)
	if err != nil {
		return "", ferrors.FileSystemError("failed to read source file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	if !ok {
		return "", ferrors.NotFoundError("source file does not exist").
			WithCode(ferrors.CodeMissingSourceFile).
			WithContext("path", path).
			Build()
	}
	return doc, nil
}

// write resolves dest, creates its parent directories and writes page,
// truncating any existing file. In dry-run mode only the checks run.
func (b *Builder) write(dest, page string) (string, error) {
	publicDir, err := b.checkPublicDir()
	if err != nil {
		return "", err
	}
	out, err := resolveDest(publicDir, dest)
	if err != nil {
		return "", err
	}
	if b.dryRun {
		return out, nil
	}

	dir := filepath.Dir(out)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", ferrors.FileSystemError("failed to create output directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}

	// #nosec G306 -- generated pages are published and must be world-readable.
	if err := os.WriteFile(out, []byte(page), 0o644); err != nil {
		return "", ferrors.FileSystemError("failed to write generated page").
			WithCause(err).
			WithContext("path", out).
			Build()
	}
	return out, nil
}

// stage runs fn and reports its duration and result.
func (b *Builder) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	b.recorder.ObserveStageDuration(name, elapsed)
	if err != nil {
		b.recorder.IncStageResult(name, metrics.ResultFailed)
		b.logger.Debug("Stage failed", logfields.Stage(name), logfields.DurationMS(durationMS(elapsed)), logfields.Error(err))
		return err
	}
	b.recorder.IncStageResult(name, metrics.ResultSuccess)
	b.logger.Debug("Stage completed", logfields.Stage(name), logfields.DurationMS(durationMS(elapsed)))
	return nil
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
