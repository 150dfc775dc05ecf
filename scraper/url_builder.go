// scraper/url_builder.go
package scraper

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gewnthar/airquality/models"
)

// BuildRequestURL encodes one extract request. Parameter order is part of
// the contract: FilenameFromQueryURL and PathFromQueryURL read values by
// position, so url.Values (which sorts keys) is not used here.
func BuildRequestURL(baseURL string, req models.RequestDescriptor) string {
	params := [][2]string{
		{"CountryCode", req.CountryCode},
		{"CityName", req.CityName},
		{"Pollutant", strconv.Itoa(req.Pollutant)},
		{"Year_from", strconv.Itoa(req.YearFrom)},
		{"Year_to", strconv.Itoa(req.YearTo)},
		{"Station", ""},
		{"Samplingpoint", ""},
		{"Source", "All"},
		{"Output", "TEXT"},
		{"UpdateDate", ""},
		{"TimeCoverage", "Year"},
	}

	var b strings.Builder
	b.WriteString(baseURL)
	b.WriteByte('?')
	for i, kv := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv[1]))
	}
	return b.String()
}

// BuildDiscomapURLs returns one request URL per pollutant, in order.
func BuildDiscomapURLs(baseURL, countryCode, cityName string, pollutants []int) []string {
	urls := make([]string, 0, len(pollutants))
	for _, p := range pollutants {
		urls = append(urls, BuildRequestURL(baseURL, models.NewRequest(countryCode, cityName, p)))
	}
	return urls
}
