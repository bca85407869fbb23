package ioartifact

import (
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gnames/factbook/pkg/country"
	"github.com/gnames/gnfmt"
	"github.com/spf13/afero"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Writer replaces the output set with records of a new build.
type Writer struct {
	fs  afero.Fs
	dir string
	enc gnfmt.Encoder
}

// NewWriter creates a Writer for the output directory.
func NewWriter(fs afero.Fs, dir string) *Writer {
	return &Writer{
		fs:  fs,
		dir: dir,
		enc: gnfmt.GNjson{Pretty: true},
	}
}

// Write regenerates the whole output set from records given in build
// order. Every file is written to a temporary file and renamed. Detail
// files go first, then indices, and only then detail files of countries
// that are not in the new set are removed, so an index never lists a
// code without its record, even if the write fails halfway.
func (w *Writer) Write(cs []*country.Country) error {
	cdir := filepath.Join(w.dir, CountriesDir)
	if err := w.fs.MkdirAll(cdir, 0755); err != nil {
		return WriteError(cdir, err)
	}

	keep := make(map[string]struct{}, len(cs))
	for _, c := range cs {
		path := DetailPath(w.dir, c.Code)
		if err := w.writeJSON(path, c); err != nil {
			return err
		}
		keep[filepath.Base(path)] = struct{}{}
	}

	codes := make([]country.Code, len(cs))
	for i, c := range cs {
		codes[i] = c.Code
	}
	if err := w.writeJSON(filepath.Join(w.dir, IndexFile), codes); err != nil {
		return err
	}

	entries := SortedEntries(cs)
	if err := w.writeJSON(filepath.Join(w.dir, AllCountries), entries); err != nil {
		return err
	}

	if err := w.removeStale(cdir, keep); err != nil {
		return err
	}

	slog.Info("Wrote artifacts", "dir", w.dir, "countries", len(cs))
	return nil
}

func (w *Writer) writeJSON(path string, v any) error {
	bs, err := w.enc.Encode(v)
	if err != nil {
		return WriteError(path, err)
	}

	tmp := path + tmpSuffix
	if err = afero.WriteFile(w.fs, tmp, bs, 0644); err != nil {
		return WriteError(tmp, err)
	}
	if err = w.fs.Rename(tmp, path); err != nil {
		_ = w.fs.Remove(tmp)
		return WriteError(path, err)
	}
	return nil
}

func (w *Writer) removeStale(cdir string, keep map[string]struct{}) error {
	infos, err := afero.ReadDir(w.fs, cdir)
	if err != nil {
		return WriteError(cdir, err)
	}

	var count int
	for _, v := range infos {
		name := v.Name()
		if v.IsDir() {
			continue
		}
		if _, ok := keep[name]; ok {
			continue
		}
		if !strings.HasSuffix(name, detailFileExt) &&
			!strings.HasSuffix(name, tmpSuffix) {
			continue
		}
		path := filepath.Join(cdir, name)
		if err = w.fs.Remove(path); err != nil {
			return WriteError(path, err)
		}
		count++
	}
	if count > 0 {
		slog.Info("Removed stale records", "count", count)
	}
	return nil
}

// SortedEntries returns index entries sorted by common name with
// English collation, so accented names sort next to their base letters.
func SortedEntries(cs []*country.Country) []country.IndexEntry {
	res := make([]country.IndexEntry, len(cs))
	for i, c := range cs {
		res[i] = c.IndexEntry()
	}

	col := collate.New(language.English)
	slices.SortStableFunc(res, func(a, b country.IndexEntry) int {
		if c := col.CompareString(a.NameCommon, b.NameCommon); c != 0 {
			return c
		}
		return strings.Compare(a.Code.String(), b.Code.String())
	})
	return res
}
