// Package fileutil provides shared file-transfer utilities for hostsession clients.
//
// Providers use it for percentage progress reporting and context-aware copies;
// the Session uses it to keep local reads inside a base directory.
package fileutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ProgressReader wraps an io.Reader and reports completion as a percentage.
// Fn is only called when the percentage changes. With an unknown (zero) Total,
// 100 is reported once the underlying reader hits EOF.
type ProgressReader struct {
	io.Reader

	Total int64
	Fn    func(percent int)

	current int64
	last    int
}

// NewProgressReader returns a ProgressReader over r for a transfer of total bytes.
func NewProgressReader(r io.Reader, total int64, fn func(percent int)) *ProgressReader {
	return &ProgressReader{Reader: r, Total: total, Fn: fn, last: -1}
}

// Read reads from the underlying reader and reports progress.
func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.Reader.Read(p)
	if n > 0 {
		pr.current += int64(n)
		if pr.Total > 0 {
			pr.report(Percent(pr.current, pr.Total))
		}
	}

	if errors.Is(err, io.EOF) {
		pr.report(100)
	}

	return n, err
}

func (pr *ProgressReader) report(percent int) {
	if pr.Fn == nil || percent == pr.last {
		return
	}

	pr.last = percent
	pr.Fn(percent)
}

// Percent returns current as a percentage of total, clamped to 0..100.
func Percent(current, total int64) int {
	if total <= 0 {
		return 0
	}

	pct := int(current * 100 / total)

	return max(0, min(pct, 100))
}

// ContextReader wraps an io.Reader to check for context cancellation
// before each Read call. This allows long-running io.Copy operations
// to be interrupted by context cancellation.
type ContextReader struct {
	Ctx    context.Context //nolint:containedctx
	Reader io.Reader
}

// Read checks for context cancellation before delegating to the underlying reader.
func (cr *ContextReader) Read(p []byte) (int, error) {
	if cr.Ctx.Err() != nil {
		return 0, cr.Ctx.Err()
	}

	return cr.Reader.Read(p)
}

// CheckPathTraversal validates that target is root or a child of root using local
// filesystem path conventions. Returns an error if target escapes root.
func CheckPathTraversal(root, target string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("illegal file path: cannot resolve root %s: %w", root, err)
	}

	absTarget, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("illegal file path: cannot resolve target %s: %w", target, err)
	}

	if absRoot == absTarget {
		return nil
	}

	if !strings.HasPrefix(absTarget, absRoot+string(os.PathSeparator)) {
		return fmt.Errorf("illegal file path: %s is not within %s", target, root)
	}

	return nil
}
