// Package ioartifact writes and reads the static output set of a build:
// one detail file per country plus two index files.
//
//	<dir>/countries/<CODE>.json
//	<dir>/index.json
//	<dir>/all-countries.json
//
// Every code listed in an index has a detail file.
package ioartifact

import (
	"path/filepath"

	"github.com/gnames/factbook/pkg/country"
)

const (
	CountriesDir  = "countries"
	IndexFile     = "index.json"
	AllCountries  = "all-countries.json"
	tmpSuffix     = ".tmp"
	detailFileExt = ".json"
)

// DetailPath returns the path of a detail file.
func DetailPath(dir string, code country.Code) string {
	return filepath.Join(dir, CountriesDir, code.String()+detailFileExt)
}
