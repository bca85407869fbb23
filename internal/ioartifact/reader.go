package ioartifact

import (
	"path/filepath"

	"github.com/gnames/factbook/pkg/country"
	"github.com/gnames/gnfmt"
	"github.com/spf13/afero"
)

// Reader loads an existing output set.
type Reader struct {
	fs  afero.Fs
	dir string
	enc gnfmt.Encoder
}

// NewReader creates a Reader for the output directory.
func NewReader(fs afero.Fs, dir string) *Reader {
	return &Reader{
		fs:  fs,
		dir: dir,
		enc: gnfmt.GNjson{},
	}
}

// Index returns codes from index.json in build order.
func (r *Reader) Index() ([]country.Code, error) {
	var res []country.Code
	err := r.readJSON(filepath.Join(r.dir, IndexFile), &res)
	return res, err
}

// Country reads the detail record of a code.
func (r *Reader) Country(code country.Code) (*country.Country, error) {
	path := DetailPath(r.dir, code)
	ok, err := afero.Exists(r.fs, path)
	if err != nil {
		return nil, ReadError(path, err)
	}
	if !ok {
		return nil, MissingError(code, r.dir)
	}

	var res country.Country
	if err = r.readJSON(path, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// All reads every record listed in index.json, in build order.
func (r *Reader) All() ([]*country.Country, error) {
	codes, err := r.Index()
	if err != nil {
		return nil, err
	}

	res := make([]*country.Country, 0, len(codes))
	for _, code := range codes {
		c, err := r.Country(code)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, nil
}

// Entries returns the content of all-countries.json.
func (r *Reader) Entries() ([]country.IndexEntry, error) {
	var res []country.IndexEntry
	err := r.readJSON(filepath.Join(r.dir, AllCountries), &res)
	return res, err
}

func (r *Reader) readJSON(path string, v any) error {
	bs, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return ReadError(path, err)
	}
	if err = r.enc.Decode(bs, v); err != nil {
		return ReadError(path, err)
	}
	return nil
}
