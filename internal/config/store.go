package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/sitewrap/internal/foundation/errors"
	"git.home.luguber.info/inful/sitewrap/internal/logfields"
)

// FileName is the name of the project configuration file at the project root.
const FileName = "config.json"

// Store reads and writes config.json for a single project root.
type Store struct {
	root string
}

// NewStore returns a store rooted at root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the project root directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the location of config.json.
func (s *Store) Path() string {
	return filepath.Join(s.root, FileName)
}

// Resolve joins a slash-separated project-relative path onto the root.
func (s *Store) Resolve(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Init writes the default configuration. An existing config is never overwritten.
func (s *Store) Init() error {
	path := s.Path()
	if _, err := os.Stat(path); err == nil {
		return ferrors.AlreadyExistsError("configuration already exists").
			WithCode(ferrors.CodeConfigAlreadyExists).
			WithContext("path", path).
			Build()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return ferrors.FileSystemError("failed to check configuration file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	data, err := encode(DefaultProjectConfig())
	if err != nil {
		return ferrors.InternalError("failed to marshal config").WithCause(err).Build()
	}

	// #nosec G306 -- config.json is meant to be shared and hand-edited.
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ferrors.FileSystemError("failed to write config file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	slog.Debug("Wrote default configuration", logfields.Config(path))
	return nil
}

// Load reads config.json. Template and manifest paths are not checked here;
// consumers validate what they use.
func (s *Store) Load() (*ProjectConfig, error) {
	path := s.Path()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, ferrors.ConfigError("missing project config.json; run `sitewrap init` to create a basic configuration").
			WithCode(ferrors.CodeMissingConfig).
			WithContext("path", path).
			Build()
	}

	if loaded, err := LoadEnvFiles(s.root); err != nil {
		slog.Warn("Failed to load environment file", logfields.Root(s.root), logfields.Error(err))
	} else {
		for _, f := range loaded {
			slog.Debug("Loaded environment variables", logfields.Path(f))
		}
	}

	// #nosec G304 -- path is the fixed config location under the project root.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.FileSystemError("failed to read config file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	var cfg ProjectConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, ferrors.ValidationError("failed to parse config file").
			WithCause(err).
			WithCode(ferrors.CodeInvalidConfig).
			WithContext("path", path).
			Build()
	}
	cfg.expandEnv()

	return &cfg, nil
}

// encode renders cfg as pretty-printed JSON with a trailing newline.
func encode(cfg *ProjectConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
