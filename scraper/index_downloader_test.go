package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDownloader struct {
	urls   []string
	failOn string
}

func (r *recordingDownloader) DownloadFileChunked(_ context.Context, url, dir string) (string, error) {
	r.urls = append(r.urls, url)
	if url == r.failOn {
		return "", errors.New("boom")
	}
	return filepath.Join(dir, ValidFilename(url, 0, "+")), nil
}

func writeIndex(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDownloadBulkFromIndex_OnePerLineInOrder(t *testing.T) {
	index := writeIndex(t, "\xEF\xBB\xBFhttps://h/a.csv\r\nhttps://h/b.csv  \n\nhttps://h/c.csv")
	rec := &recordingDownloader{}

	paths, err := DownloadBulkFromIndex(context.Background(), rec, index, "out", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://h/a.csv", "https://h/b.csv", "https://h/c.csv"}, rec.urls)
	assert.Equal(t, []string{
		filepath.Join("out", "a.csv"),
		filepath.Join("out", "b.csv"),
		filepath.Join("out", "c.csv"),
	}, paths)
}

func TestDownloadBulkFromIndex_MissingIndexIsNoop(t *testing.T) {
	rec := &recordingDownloader{}
	paths, err := DownloadBulkFromIndex(context.Background(), rec, filepath.Join(t.TempDir(), "nope.txt"), "out", nil)
	require.NoError(t, err)
	assert.Nil(t, paths)
	assert.Empty(t, rec.urls)
}

func TestDownloadBulkFromIndex_StopsOnFirstFailure(t *testing.T) {
	index := writeIndex(t, "https://h/a.csv\nhttps://h/b.csv\nhttps://h/c.csv\n")
	rec := &recordingDownloader{failOn: "https://h/b.csv"}

	paths, err := DownloadBulkFromIndex(context.Background(), rec, index, "out", nil)
	require.Error(t, err)
	assert.Len(t, paths, 1)
	assert.Equal(t, []string{"https://h/a.csv", "https://h/b.csv"}, rec.urls)
}

func TestReadIndex_HTML(t *testing.T) {
	html := `<!DOCTYPE html><html><head><base href="https://files.example/dl/"></head><body>
<a href="AT_8_1_2013_timeseries.csv">2013</a>
<a href="readme.txt">readme</a>
<a href="https://other.example/AT_8_1_2014_timeseries.CSV">2014</a>
<a href="AT_8_1_2013_timeseries.csv">dup</a>
</body></html>`
	urls, err := ReadIndex(writeIndex(t, html))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://files.example/dl/AT_8_1_2013_timeseries.csv",
		"https://other.example/AT_8_1_2014_timeseries.CSV",
	}, urls)
}

func TestDownloadBulkFromIndex_WithRealDownloader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Concentration,DatetimeBegin\n1,2020-01-01\n"))
	}))
	defer srv.Close()

	index := writeIndex(t, srv.URL+"/x/one.csv\n"+srv.URL+"/x/two.csv\n")
	dir := t.TempDir()

	paths, err := DownloadBulkFromIndex(context.Background(), &Downloader{}, index, dir, nil)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	for _, p := range paths {
		assert.FileExists(t, p)
	}
}
