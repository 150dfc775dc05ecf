package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/airquality/config"
	"github.com/gewnthar/airquality/models"
)

func TestBuildDiscomapURLs(t *testing.T) {
	urls := BuildDiscomapURLs(config.DefaultBaseURL, "AT", "Wien", models.DefaultPollutants)
	require.Len(t, urls, 3)

	want := "https://fme.discomap.eea.europa.eu/fmedatastreaming/AirQualityDownload/AQData_Extract.fmw?" +
		"CountryCode=AT&CityName=Wien&Pollutant=8&Year_from=2013&Year_to=2022" +
		"&Station=&Samplingpoint=&Source=All&Output=TEXT&UpdateDate=&TimeCoverage=Year"
	assert.Equal(t, want, urls[0])
	assert.Contains(t, urls[1], "Pollutant=38&")
	assert.Contains(t, urls[2], "Pollutant=9&")
}

func TestBuildRequestURL_EscapesValues(t *testing.T) {
	u := BuildRequestURL("http://example.test/x.fmw", models.NewRequest("CH", "St. Gallen", 8))
	assert.Contains(t, u, "CityName=St.+Gallen&")

	v, ok := QueryValue(u, "CityName")
	require.True(t, ok)
	assert.Equal(t, "St. Gallen", v)
}

func TestBuildDiscomapURLs_Empty(t *testing.T) {
	assert.Empty(t, BuildDiscomapURLs(config.DefaultBaseURL, "AT", "Wien", nil))
}
