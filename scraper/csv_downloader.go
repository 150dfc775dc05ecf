// scraper/csv_downloader.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gewnthar/airquality/config"
	"github.com/gewnthar/airquality/utils"
)

// DefaultChunkSize bounds how much of a response body is held in memory.
const DefaultChunkSize = 100 * 1024

// StatusError is returned when the portal answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to download file from %s: received status code %d", e.URL, e.StatusCode)
}

// FileDownloader fetches url into dir and returns the local path.
type FileDownloader interface {
	DownloadFileChunked(ctx context.Context, url, dir string) (string, error)
}

// Downloader stores response bodies as local artifacts named after their URL.
// An artifact that already exists is never fetched again; there is no
// staleness or content check.
type Downloader struct {
	Client            *http.Client
	ChunkSize         int
	Substitute        string
	MaxFilenameLength int
	Logger            *slog.Logger
}

// NewDownloader builds a Downloader from the download section of the config.
// With no timeout configured the client waits on a hung connection until ctx
// is cancelled.
func NewDownloader(cfg config.DownloadConfig, logger *slog.Logger) *Downloader {
	return &Downloader{
		Client:            &http.Client{Timeout: cfg.Timeout},
		ChunkSize:         cfg.ChunkSizeKiB * 1024,
		Substitute:        cfg.Substitute,
		MaxFilenameLength: cfg.MaxFilenameLength,
		Logger:            logger,
	}
}

func (d *Downloader) defaults() {
	if d.Client == nil {
		d.Client = http.DefaultClient
	}
	if d.ChunkSize <= 0 {
		d.ChunkSize = DefaultChunkSize
	}
	if d.Substitute == "" {
		d.Substitute = "+"
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
}

// LocalPath is where url's body is (or would be) stored under dir.
func (d *Downloader) LocalPath(url, dir string) string {
	d.defaults()
	return filepath.Join(dir, ValidFilename(url, d.MaxFilenameLength, d.Substitute))
}

// DownloadFileChunked returns the local artifact for url, downloading it into
// dir only if it is not there yet. The body is written in ChunkSize pieces to
// a temporary file that is renamed into place once complete, so an
// interrupted download never leaves a file that looks cached.
func (d *Downloader) DownloadFileChunked(ctx context.Context, url, dir string) (string, error) {
	d.defaults()

	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	switch name := ValidFilename(url, d.MaxFilenameLength, d.Substitute); name {
	case "", ".", "..":
		return "", fmt.Errorf("no usable filename in %s", url)
	}
	localPath := d.LocalPath(url, dir)

	info, err := os.Stat(localPath)
	switch {
	case err == nil && info.Mode().IsRegular():
		d.Logger.Info("already exists", "path", localPath)
		return localPath, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("failed to stat %s: %w", localPath, err)
	}

	d.Logger.Info("downloading", "url", url, "path", localPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build GET request for %s: %w", url, err)
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	written, err := d.writeAtomically(localPath, resp.Body)
	if err != nil {
		return "", err
	}

	d.Logger.Info("saved", "path", localPath, "bytes", written)
	return localPath, nil
}

func (d *Downloader) writeAtomically(localPath string, body io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(localPath), "."+filepath.Base(localPath)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file for %s: %w", localPath, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	written, err := copyChunked(tmp, body, d.ChunkSize, d.Logger)
	if err != nil {
		return 0, fmt.Errorf("failed to copy downloaded content to %s: %w", localPath, err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, localPath); err != nil {
		os.Remove(tmpName)
		committed = true
		return 0, fmt.Errorf("failed to move download into place at %s: %w", localPath, err)
	}
	committed = true
	return written, nil
}

// copyChunked moves src to dst through a single chunkSize buffer. io.Copy is
// avoided because *os.File's ReadFrom would bypass the buffer.
func copyChunked(dst io.Writer, src io.Reader, chunkSize int, logger *slog.Logger) (int64, error) {
	buf := make([]byte, chunkSize)
	var total int64
	chunks := 0
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
			chunks++
			logger.Debug("chunk written", "chunk", chunks, "bytes", total)
		}
		if rerr == io.EOF {
			return total, nil
		}
		if rerr != nil {
			return total, rerr
		}
	}
}
