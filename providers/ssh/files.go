package ssh

import (
	"context"
	"fmt"
	"io"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"

	"github.com/pkg/sftp"
	"github.com/ruffel/hostsession"
	"github.com/ruffel/hostsession/fileutil"
)

const contentPermissions = 0o644

// PutFile copies a local file or directory to remotePath using SFTP.
// Missing parent directories are created. onProgress receives 0..100.
func (c *Client) PutFile(ctx context.Context, localPath, remotePath string, onProgress hostsession.ProgressFunc) error {
	sftpClient, err := c.sftp()
	if err != nil {
		return err
	}

	defer func() { _ = sftpClient.Close() }()

	info, err := os.Stat(localPath)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return putDir(ctx, sftpClient, localPath, remotePath, onProgress)
	}

	return putFile(ctx, sftpClient, localPath, remotePath, info.Mode().Perm(), onProgress)
}

// PutContent writes content to remotePath using SFTP, replacing any existing file.
func (c *Client) PutContent(ctx context.Context, content, remotePath string) error {
	sftpClient, err := c.sftp()
	if err != nil {
		return err
	}

	defer func() { _ = sftpClient.Close() }()

	return putReader(ctx, sftpClient, strings.NewReader(content), remotePath, contentPermissions)
}

func (c *Client) sftp() (*sftp.Client, error) {
	conn, err := c.client()
	if err != nil {
		return nil, err
	}

	sftpClient, err := sftp.NewClient(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create sftp client: %w", err)
	}

	return sftpClient, nil
}

// putDir uploads a directory tree. Progress is reported per completed file.
func putDir(ctx context.Context, client *sftp.Client, localBase, remoteBase string, onProgress hostsession.ProgressFunc) error {
	var files []string

	err := filepath.WalkDir(localBase, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if err := client.MkdirAll(remoteBase); err != nil {
		return fmt.Errorf("failed to create remote directory %q: %w", remoteBase, err)
	}

	for i, path := range files {
		relPath, err := filepath.Rel(localBase, path)
		if err != nil {
			return err
		}

		info, err := os.Stat(path)
		if err != nil {
			return err
		}

		remotePath := pathpkg.Join(remoteBase, filepath.ToSlash(relPath))

		if err := putFile(ctx, client, path, remotePath, info.Mode().Perm(), nil); err != nil {
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

func putFile(ctx context.Context, client *sftp.Client, localPath, remotePath string, mode os.FileMode, onProgress hostsession.ProgressFunc) error {
	src, err := os.Open(localPath)
	if err != nil {
		return err
	}

	defer func() { _ = src.Close() }()

	var size int64
	if info, err := src.Stat(); err == nil {
		size = info.Size()
	}

	var reader io.Reader = src
	if onProgress != nil {
		reader = fileutil.NewProgressReader(src, size, onProgress)
	}

	return putReader(ctx, client, reader, remotePath, mode)
}

func putReader(ctx context.Context, client *sftp.Client, r io.Reader, remotePath string, mode os.FileMode) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if dir := pathpkg.Dir(remotePath); dir != "." && dir != "/" {
		if err := client.MkdirAll(dir); err != nil {
			return fmt.Errorf("failed to create remote directory %q: %w", dir, err)
		}
	}

	dst, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("failed to create remote file %q: %w", remotePath, err)
	}

	defer func() { _ = dst.Close() }()

	if err := client.Chmod(remotePath, mode); err != nil {
		return fmt.Errorf("failed to chmod remote file: %w", err)
	}

	if _, err := io.Copy(dst, &fileutil.ContextReader{Ctx: ctx, Reader: r}); err != nil {
		return fmt.Errorf("failed to write remote file %q: %w", remotePath, err)
	}

	return nil
}
