package scraper

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gewnthar/airquality/models"
)

const testBase = "https://fme.discomap.eea.europa.eu/fmedatastreaming/AirQualityDownload/AQData_Extract.fmw"

func TestFilenameFromQueryURL(t *testing.T) {
	u := BuildRequestURL(testBase, models.NewRequest("CH", "Basel", 8))

	assert.Equal(t, "CH_Basel_8", FilenameFromQueryURL(u, 3))
	assert.Equal(t, "CH_Basel_8", FilenameFromQueryURL(u, 0))
	assert.Equal(t, "CH", FilenameFromQueryURL(u, 1))
	// Blank values (Station, Samplingpoint, ...) are skipped when counting.
	assert.Equal(t, "CH_Basel_8_2013_2022_All", FilenameFromQueryURL(u, 6))
	assert.Equal(t, "", FilenameFromQueryURL("https://example.test/no-query", 3))
}

func TestPathFromQueryURL(t *testing.T) {
	u := BuildRequestURL(testBase, models.NewRequest("CH", "Basel", 38))
	assert.Equal(t, filepath.Join("CH", "Basel", "38"), PathFromQueryURL(u))
}

func TestDerivedNamesAreDeterministic(t *testing.T) {
	a := BuildRequestURL(testBase, models.NewRequest("AT", "Wien", 9))
	b := BuildRequestURL(testBase, models.NewRequest("AT", "Wien", 9))

	assert.Equal(t, FilenameFromQueryURL(a, 3), FilenameFromQueryURL(b, 3))
	assert.Equal(t, PathFromQueryURL(a), PathFromQueryURL(b))
	assert.Equal(t, ValidFilename(a, 0, "+"), ValidFilename(b, 0, "+"))
}

func TestQueryValue(t *testing.T) {
	u := BuildRequestURL(testBase, models.NewRequest("AT", "Wien", 9))

	v, ok := QueryValue(u, "Pollutant")
	assert.True(t, ok)
	assert.Equal(t, "9", v)

	_, ok = QueryValue(u, "Station")
	assert.False(t, ok, "blank values are dropped")
}

func TestValidFilename(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		max    int
		sub    string
		expect string
	}{
		{"csv url", "https://ereporting.blob.core.windows.net/downloadservice/CH_8_1234_2013_timeseries.csv", 0, "+", "CH_8_1234_2013_timeseries.csv"},
		{"query substituted", "https://host/AQData_Extract.fmw?CountryCode=CH&CityName=Basel", 0, "+", "AQData_Extract.fmw+CountryCode=CH&CityName=Basel"},
		{"custom substitute", "https://host/a.fmw?x=1", 0, "_", "a.fmw_x=1"},
		{"truncated", "https://host/abcdefgh.csv", 4, "+", "abcd"},
		{"max beyond length", "https://host/ab.csv", 50, "+", "ab.csv"},
		{"no slash", "plain?name", 0, "+", "plain+name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ValidFilename(tt.url, tt.max, tt.sub))
		})
	}
}
