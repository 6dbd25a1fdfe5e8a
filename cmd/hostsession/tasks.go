package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/ruffel/hostsession"
	"gopkg.in/yaml.v3"
)

// taskFile is the document read by `hostsession run`.
//
//	vars:
//	  app: web
//	tasks:
//	  - name: upload config
//	    copy: {src: app.conf.tmpl, dest: /etc/app.conf, template: true}
//	  - name: restart
//	    exec: systemctl restart {{ .app }}
type taskFile struct {
	Vars  hostsession.Vars `yaml:"vars"`
	Tasks []task           `yaml:"tasks"`
}

type task struct {
	Name         string            `yaml:"name"`
	Exec         string            `yaml:"exec"`
	Script       string            `yaml:"script"`
	Copy         *copyTask         `yaml:"copy"`
	Vars         hostsession.Vars  `yaml:"vars"`
	Env          map[string]string `yaml:"env"`
	Dir          string            `yaml:"dir"`
	IgnoreErrors bool              `yaml:"ignore_errors"`
}

type copyTask struct {
	Src      string `yaml:"src"`
	Dest     string `yaml:"dest"`
	Template bool   `yaml:"template"`
	Progress bool   `yaml:"progress"`
}

func (t task) kind() string {
	switch {
	case t.Exec != "":
		return "exec"
	case t.Script != "":
		return "script"
	default:
		return "copy"
	}
}

func (t task) validate() error {
	set := 0

	for _, ok := range []bool{t.Exec != "", t.Script != "", t.Copy != nil} {
		if ok {
			set++
		}
	}

	if set != 1 {
		return errors.New("exactly one of exec, script or copy is required")
	}

	if t.Copy != nil && (t.Copy.Src == "" || t.Copy.Dest == "") {
		return errors.New("copy requires src and dest")
	}

	return nil
}

func parseTaskFile(data []byte) (*taskFile, error) {
	var file taskFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse tasks: %w", err)
	}

	if len(file.Tasks) == 0 {
		return nil, errors.New("no tasks defined")
	}

	for i, t := range file.Tasks {
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("task %d (%s): %w", i+1, t.Name, err)
		}
	}

	return &file, nil
}

func loadTaskFile(path string) (*taskFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}

	return parseTaskFile(data)
}

// taskRunner runs tasks in order against one session. It stops at the first
// failing task unless that task sets ignore_errors.
type taskRunner struct {
	session *hostsession.Session
	stdout  io.Writer
	status  io.Writer
}

func (r *taskRunner) run(ctx context.Context, file *taskFile) error {
	statusf(r.status, titleStyle, "▶ %s (%d tasks)", r.session.Host(), len(file.Tasks))

	start := time.Now()

	for i, t := range file.Tasks {
		name := t.Name
		if name == "" {
			name = t.kind()
		}

		statusf(r.status, stepStyle, "[%d/%d] %s", i+1, len(file.Tasks), name)

		err := r.runTask(ctx, t, mergeVars(file.Vars, t.Vars))
		if err == nil {
			statusf(r.status, checkStyle, "✓ %s", name)
			continue
		}

		if t.IgnoreErrors {
			statusf(r.status, warnStyle, "! %s: %v (ignored)", name, err)
			continue
		}

		return fmt.Errorf("task %q: %w", name, err)
	}

	statusf(r.status, infoStyle, "done in %s", elapsed(start))

	return nil
}

func (r *taskRunner) runTask(ctx context.Context, t task, vars hostsession.Vars) error {
	if t.Copy != nil {
		var opts []hostsession.OpOption
		if t.Copy.Template || t.Vars != nil {
			opts = append(opts, hostsession.WithVars(vars))
		}

		if t.Copy.Progress {
			opts = append(opts, hostsession.WithProgressBar())
		}

		_, err := r.session.Copy(ctx, t.Copy.Src, t.Copy.Dest, opts...)

		return err
	}

	opts := []hostsession.OpOption{
		hostsession.WithStdout(r.stdout),
		hostsession.WithStderr(r.status),
	}

	for k, v := range t.Env {
		opts = append(opts, hostsession.WithEnv(k, v))
	}

	if t.Dir != "" {
		opts = append(opts, hostsession.WithDir(t.Dir))
	}

	var (
		res *hostsession.Result
		err error
	)

	if t.Script != "" {
		res, err = r.session.ExecuteScript(ctx, t.Script, append(opts, hostsession.WithVars(vars))...)
	} else {
		command, renderErr := renderCommand(t.Exec, vars)
		if renderErr != nil {
			return renderErr
		}

		res, err = r.session.Execute(ctx, command, opts...)
	}

	if err != nil {
		return err
	}

	return exitStatus(res)
}

// renderCommand expands template actions in an exec task.
func renderCommand(command string, vars hostsession.Vars) (string, error) {
	if !strings.Contains(command, "{{") {
		return command, nil
	}

	out, err := hostsession.TemplateRenderer{}.Render(command, vars, hostsession.RenderOptions{})
	if err != nil {
		return "", &hostsession.TemplateError{Path: "exec", Err: err}
	}

	return out, nil
}

func mergeVars(base, override hostsession.Vars) hostsession.Vars {
	vars := hostsession.Vars{}
	maps.Copy(vars, base)
	maps.Copy(vars, override)

	return vars
}
