// scraper/index_downloader.go
package scraper

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadIndex returns the CSV URLs listed in an index file. Plain indexes hold
// one URL per line (UTF-8, optional BOM); trailing whitespace is stripped and
// blank lines are skipped. HTML indexes are reduced to their .csv links.
func ReadIndex(indexPath string) ([]string, error) {
	body, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimPrefix(body, utf8BOM)

	if looksLikeHTML(body) {
		return extractCSVLinks(body)
	}

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r\n")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", indexPath, err)
	}
	return lines, nil
}

// DownloadBulkFromIndex downloads every URL listed in indexPath into dir, one
// after the other and in file order. A missing index is logged and treated as
// nothing to do; callers that need the files must check the result.
func DownloadBulkFromIndex(ctx context.Context, d FileDownloader, indexPath, dir string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(indexPath)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		logger.Error("trying to open index file that does not exist", "path", indexPath)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat index %s: %w", indexPath, err)
	}

	urls, err := ReadIndex(indexPath)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(urls))
	for _, u := range urls {
		p, err := d.DownloadFileChunked(ctx, u, dir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	logger.Debug("files downloaded", "index", indexPath, "count", len(paths), "urls", urls)
	return paths, nil
}
