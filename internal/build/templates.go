package build

import (
	"errors"
	"io/fs"
	"os"

	"git.home.luguber.info/inful/sitewrap/internal/compose"
	"git.home.luguber.info/inful/sitewrap/internal/config"
	ferrors "git.home.luguber.info/inful/sitewrap/internal/foundation/errors"
	"git.home.luguber.info/inful/sitewrap/internal/logfields"
)

// loadParts reads the three template files named by tc. The base layout must
// exist; a header or footer that is unset or missing is substituted as "".
func (b *Builder) loadParts(tc config.TemplateConfig) (compose.Parts, error) {
	var parts compose.Parts

	if tc.Base == "" {
		return parts, ferrors.NotFoundError("base template is not configured").
			WithCode(ferrors.CodeMissingBaseTemplate).
			WithContext("config", b.store.Path()).
			Build()
	}
	basePath := b.store.Resolve(tc.Base)
	base, ok, err := readFileIfExists(basePath)
	if err != nil {
		return parts, ferrors.FileSystemError("failed to read base template").
			WithCause(err).
			WithContext("path", basePath).
			Build()
	}
	if !ok {
		return parts, ferrors.NotFoundError("base template is missing in template directory").
			WithCode(ferrors.CodeMissingBaseTemplate).
			WithContext("path", basePath).
			Build()
	}
	parts.Base = base

	if parts.Header, err = b.loadOptional("header", tc.Header); err != nil {
		return parts, err
	}
	if parts.Footer, err = b.loadOptional("footer", tc.Footer); err != nil {
		return parts, err
	}
	return parts, nil
}

func (b *Builder) loadOptional(name, rel string) (string, error) {
	if rel == "" {
		b.logger.Debug("Optional template not configured", logfields.Template(name))
		return "", nil
	}
	path := b.store.Resolve(rel)
	content, ok, err := readFileIfExists(path)
	if err != nil {
		return "", ferrors.FileSystemError("failed to read "+name+" template").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	if !ok {
		b.logger.Debug("Optional template missing, using empty content", logfields.Template(name), logfields.Path(path))
	}
	return content, nil
}

// readFileIfExists returns the file content and true, or false when there is
// no regular file at path.
func readFileIfExists(path string) (string, bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if info.IsDir() {
		return "", false, nil
	}
	// #nosec G304 -- path is resolved under the project root from config.json.
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}
