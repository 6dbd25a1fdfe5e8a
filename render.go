package hostsession

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/ruffel/hostsession/fileutil"
	"go.uber.org/zap"
)

const defaultMissingKey = "error"

// TemplateRenderer renders templates with text/template.
type TemplateRenderer struct{}

var _ Renderer = TemplateRenderer{}

// Render parses text and executes it against vars.
func (TemplateRenderer) Render(text string, vars Vars, opts RenderOptions) (string, error) {
	tmpl := template.New("hostsession")

	if opts.LeftDelim != "" || opts.RightDelim != "" {
		tmpl = tmpl.Delims(opts.LeftDelim, opts.RightDelim)
	}

	missingKey := opts.MissingKey
	if missingKey == "" {
		missingKey = defaultMissingKey
	}

	switch missingKey {
	case "default", "invalid", "zero", "error":
	default:
		return "", fmt.Errorf("unsupported missingkey policy %q", missingKey)
	}

	tmpl = tmpl.Option("missingkey=" + missingKey)

	if opts.Funcs != nil {
		tmpl = tmpl.Funcs(opts.Funcs)
	}

	tmpl, err := tmpl.Parse(text)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, map[string]any(vars)); err != nil {
		return "", err
	}

	return out.String(), nil
}

// renderFile reads a local file and renders it against vars.
// Without vars the content is returned as is; template syntax is not evaluated.
func (s *Session) renderFile(path string, vars Vars) (string, error) {
	resolved, err := s.localPath(path)
	if err != nil {
		return "", &IOError{Path: path, Err: err}
	}

	data, err := s.readFile(resolved)
	if err != nil {
		return "", &IOError{Path: path, Err: err}
	}

	if len(vars) == 0 {
		return string(data), nil
	}

	s.logger.Debug("rendering template", zap.String("path", resolved), zap.Int("vars", len(vars)))

	out, err := s.renderer.Render(string(data), vars, s.config.Render)
	if err != nil {
		return "", &TemplateError{Path: path, Err: err}
	}

	return out, nil
}

// localPath applies the base directory scope, if any.
func (s *Session) localPath(path string) (string, error) {
	if s.config.BaseDir == "" {
		return path, nil
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(s.config.BaseDir, path)
	}

	if err := fileutil.CheckPathTraversal(s.config.BaseDir, path); err != nil {
		return "", err
	}

	return path, nil
}
