// scraper/filename.go
package scraper

import (
	"net/url"
	"path/filepath"
	"strings"
)

// DefaultCutOff is how many leading query values make up a flat filename.
const DefaultCutOff = 3

type queryParam struct {
	Key   string
	Value string
}

// parseQueryOrdered splits a URL's query into key/value pairs, keeping their
// order. Blank values are dropped and undecodable pairs are skipped.
func parseQueryOrdered(rawURL string) []queryParam {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	var params []queryParam
	for _, part := range strings.Split(u.RawQuery, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			continue
		}
		val, err := url.QueryUnescape(v)
		if err != nil || val == "" {
			continue
		}
		params = append(params, queryParam{Key: key, Value: val})
	}
	return params
}

func leadingValues(rawURL string, n int) []string {
	params := parseQueryOrdered(rawURL)
	if n > len(params) {
		n = len(params)
	}
	values := make([]string, 0, n)
	for _, p := range params[:n] {
		values = append(values, p.Value)
	}
	return values
}

// FilenameFromQueryURL joins the values of the first cutOff query parameters
// with "_", e.g. "CH_Basel_8".
//
// Parameter names are not inspected. If the portal reorders its parameters
// the derived names change with it; use QueryValue when the name matters.
func FilenameFromQueryURL(rawURL string, cutOff int) string {
	if cutOff <= 0 {
		cutOff = DefaultCutOff
	}
	return strings.Join(leadingValues(rawURL, cutOff), "_")
}

// PathFromQueryURL nests the first three query values as directories,
// e.g. "CH/Basel/8". Same positional caveat as FilenameFromQueryURL.
func PathFromQueryURL(rawURL string) string {
	return filepath.Join(leadingValues(rawURL, DefaultCutOff)...)
}

// QueryValue looks a parameter up by name.
func QueryValue(rawURL, name string) (string, bool) {
	for _, p := range parseQueryOrdered(rawURL) {
		if p.Key == name {
			return p.Value, true
		}
	}
	return "", false
}

// ValidFilename names the file a response body is stored in: "?" becomes
// substitute, everything up to the last "/" is dropped and the result is cut
// to maxLength runes when maxLength > 0. Other characters are left alone.
func ValidFilename(rawURL string, maxLength int, substitute string) string {
	name := strings.ReplaceAll(rawURL, "?", substitute)
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if maxLength > 0 {
		if r := []rune(name); len(r) > maxLength {
			name = string(r[:maxLength])
		}
	}
	return name
}
