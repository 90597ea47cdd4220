package build

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/sitewrap/internal/foundation/errors"
)

// DefaultPublicDir is the output directory under the project root.
const DefaultPublicDir = "public"

// checkPublicDir ensures the output directory exists. It is never created.
func (b *Builder) checkPublicDir() (string, error) {
	publicDir := filepath.Join(b.store.Root(), b.publicDir)
	info, err := os.Stat(publicDir)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return "", ferrors.NotFoundError("public directory is missing in project root").
			WithCode(ferrors.CodeMissingPublicDir).
			WithContext("path", publicDir).
			Build()
	}
	if err != nil {
		return "", ferrors.FileSystemError("failed to check public directory").
			WithCause(err).
			WithContext("path", publicDir).
			Build()
	}
	return publicDir, nil
}

// resolveDest maps a slash-separated destination onto publicDir. The result
// must name a file strictly inside publicDir.
func resolveDest(publicDir, dest string) (string, error) {
	invalid := func(reason string) error {
		return ferrors.ValidationError("invalid destination path: "+reason).
			WithCode(ferrors.CodeInvalidDestination).
			WithContext("dest", dest).
			Build()
	}

	if strings.TrimSpace(dest) == "" {
		return "", invalid("empty")
	}
	rel := filepath.Clean(filepath.FromSlash(dest))
	if filepath.IsAbs(rel) || strings.HasPrefix(dest, "/") {
		return "", invalid("must be relative to the public directory")
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", invalid("escapes the public directory")
	}
	return filepath.Join(publicDir, rel), nil
}
