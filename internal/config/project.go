package config

import (
	"os"
	"regexp"
)

// ProjectConfig is the content of config.json at the project root.
type ProjectConfig struct {
	Template TemplateConfig `json:"template"`
	Manifest Manifest       `json:"manifest"`
}

// TemplateConfig holds template locations relative to the project root.
// Base is required at build time; Header and Footer are optional.
type TemplateConfig struct {
	Base   string `json:"base"`
	Header string `json:"header"`
	Footer string `json:"footer"`
}

// DefaultProjectConfig returns the configuration written by Init: a layout
// with universal header and footer, plus the index and error pages a static
// bucket host expects.
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Template: TemplateConfig{
			Base:   "template/layout/base.html",
			Header: "template/layout/header.html",
			Footer: "template/layout/footer.html",
		},
		Manifest: Manifest{
			{Source: "html/index.html", Dest: "index.html"},
			{Source: "html/error.html", Dest: "error.html"},
		},
	}
}

var envRef = regexp.MustCompile(`\$(?:\{([A-Za-z_][A-Za-z0-9_]*)\}|([A-Za-z_][A-Za-z0-9_]*))`)

// expandEnv substitutes $VAR and ${VAR} references in every configured path.
// References to unset variables are left as written.
func (c *ProjectConfig) expandEnv() {
	c.Template.Base = expandEnv(c.Template.Base)
	c.Template.Header = expandEnv(c.Template.Header)
	c.Template.Footer = expandEnv(c.Template.Footer)
	for i := range c.Manifest {
		c.Manifest[i].Source = expandEnv(c.Manifest[i].Source)
		c.Manifest[i].Dest = expandEnv(c.Manifest[i].Dest)
	}
}

func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		m := envRef.FindStringSubmatch(ref)
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return ref
	})
}
