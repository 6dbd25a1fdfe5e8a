package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ruffel/hostsession"
	"github.com/ruffel/hostsession/fileutil"
)

const contentPermissions = 0o644

// PutFile copies a local file or directory to remotePath on this machine.
func (c *Client) PutFile(ctx context.Context, localPath, remotePath string, onProgress hostsession.ProgressFunc) error {
	if err := c.ready(); err != nil {
		return err
	}

	dst, err := c.resolve(remotePath)
	if err != nil {
		return err
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return copyDir(ctx, localPath, dst, onProgress)
	}

	return copyFile(ctx, localPath, dst, info.Mode().Perm(), onProgress)
}

// PutContent writes content to remotePath on this machine.
func (c *Client) PutContent(ctx context.Context, content, remotePath string) error {
	if err := c.ready(); err != nil {
		return err
	}

	dst, err := c.resolve(remotePath)
	if err != nil {
		return err
	}

	return writeFile(ctx, strings.NewReader(content), dst, contentPermissions)
}

// copyDir copies a tree. Progress is reported per completed file.
func copyDir(ctx context.Context, src, dst string, onProgress hostsession.ProgressFunc) error {
	var files []string

	err := filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, relPath)

		if err := fileutil.CheckPathTraversal(dst, target); err != nil {
			return err
		}

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		files = append(files, relPath)

		return nil
	})
	if err != nil {
		return err
	}

	for i, rel := range files {
		info, err := os.Stat(filepath.Join(src, rel))
		if err != nil {
			return err
		}

		if err := copyFile(ctx, filepath.Join(src, rel), filepath.Join(dst, rel), info.Mode().Perm(), nil); err != nil {
			return err
		}

		if onProgress != nil {
			onProgress(fileutil.Percent(int64(i+1), int64(len(files))))
		}
	}

	if len(files) == 0 && onProgress != nil {
		onProgress(100)
	}

	return nil
}

func copyFile(ctx context.Context, src, dst string, mode os.FileMode, onProgress hostsession.ProgressFunc) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}

	defer func() { _ = sourceFile.Close() }()

	var size int64
	if info, err := sourceFile.Stat(); err == nil {
		size = info.Size()
	}

	var reader io.Reader = sourceFile
	if onProgress != nil {
		reader = fileutil.NewProgressReader(sourceFile, size, onProgress)
	}

	return writeFile(ctx, reader, dst, mode)
}

func writeFile(ctx context.Context, r io.Reader, dst string, mode os.FileMode) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	destFile, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	defer func() { _ = destFile.Close() }()

	if err := destFile.Chmod(mode); err != nil {
		return err
	}

	if _, err := io.Copy(destFile, &fileutil.ContextReader{Ctx: ctx, Reader: r}); err != nil {
		return err
	}

	if err := destFile.Sync(); err != nil {
		return err
	}

	return destFile.Close()
}
