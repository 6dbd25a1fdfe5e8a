package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"
	"github.com/ruffel/hostsession"
	"gopkg.in/yaml.v3"
)

// parseVars parses shell-style assignments such as `name=x region="us east"`.
// Each argument may hold several assignments; later ones win.
func parseVars(args []string) (hostsession.Vars, error) {
	vars := hostsession.Vars{}

	for _, arg := range args {
		words, err := shlex.Split(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid --vars %q: %w", arg, err)
		}

		for _, word := range words {
			key, value, ok := strings.Cut(word, "=")
			if !ok || key == "" {
				return nil, fmt.Errorf("invalid variable %q: expected key=value", word)
			}

			vars[key] = value
		}
	}

	return vars, nil
}

// loadVarsFile reads a YAML mapping of template variables.
func loadVarsFile(path string) (hostsession.Vars, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vars file: %w", err)
	}

	var vars hostsession.Vars
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("failed to parse vars file %s: %w", path, err)
	}

	return vars, nil
}

// collectVars merges the vars file and --vars flags. It returns nil when
// neither was given so that copies are not templated.
func collectVars(file string, args []string) (hostsession.Vars, error) {
	if file == "" && len(args) == 0 {
		return nil, nil //nolint:nilnil // no variables requested
	}

	vars := hostsession.Vars{}

	if file != "" {
		fromFile, err := loadVarsFile(file)
		if err != nil {
			return nil, err
		}

		for k, v := range fromFile {
			vars[k] = v
		}
	}

	fromFlags, err := parseVars(args)
	if err != nil {
		return nil, err
	}

	for k, v := range fromFlags {
		vars[k] = v
	}

	return vars, nil
}
