// models/request.go
package models

// Fixed year range of the Discomap extract.
const (
	YearFrom = 2013
	YearTo   = 2022
)

// RequestDescriptor selects one Discomap extract. It is only used to build
// the request URL.
type RequestDescriptor struct {
	CountryCode string
	CityName    string
	Pollutant   int
	YearFrom    int
	YearTo      int
}

// NewRequest fills in the fixed year range.
func NewRequest(countryCode, cityName string, pollutant int) RequestDescriptor {
	return RequestDescriptor{
		CountryCode: countryCode,
		CityName:    cityName,
		Pollutant:   pollutant,
		YearFrom:    YearFrom,
		YearTo:      YearTo,
	}
}

// DefaultPollutants are NO2 (8), NO (38) and NOx as NO2 (9).
var DefaultPollutants = []int{8, 38, 9}
