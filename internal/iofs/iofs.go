// Package iofs creates directories and default files that factbook needs
// in the user's home directory and reads the universe overrides.
package iofs

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/gnames/factbook/pkg/config"
	"github.com/gnames/factbook/pkg/country"
	"github.com/gnames/factbook/pkg/pipeline"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var ConfigYAML string

//go:embed universe.yaml
var UniverseYAML string

func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.LogDir(homeDir),
	}
	for _, v := range dirs {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

func touchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

// EnsureConfigFile writes the default config.yaml unless it exists.
func EnsureConfigFile(homeDir string) error {
	return ensureFile(config.ConfigFilePath(homeDir), ConfigYAML)
}

// EnsureUniverseFile writes the default universe.yaml unless it exists.
func EnsureUniverseFile(homeDir string) error {
	return ensureFile(config.UniverseFilePath(homeDir), UniverseYAML)
}

func ensureFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return CopyFileError(path, err)
	}

	return nil
}

// LoadUniverse reads universe.yaml from the config directory. A missing
// file means no overrides.
func LoadUniverse(homeDir string) (pipeline.Universe, error) {
	var res pipeline.Universe
	path := config.UniverseFilePath(homeDir)

	bs, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return res, nil
	}
	if err != nil {
		return res, ReadFileError(path, err)
	}

	return ParseUniverse(path, bs)
}

// ParseUniverse decodes universe overrides and normalizes their codes.
func ParseUniverse(path string, bs []byte) (pipeline.Universe, error) {
	var res pipeline.Universe
	if err := yaml.Unmarshal(bs, &res); err != nil {
		return res, ParseFileError(path, err)
	}

	var err error
	if res.Include, err = normCodes(res.Include); err != nil {
		return pipeline.Universe{}, ParseFileError(path, err)
	}
	if res.Exclude, err = normCodes(res.Exclude); err != nil {
		return pipeline.Universe{}, ParseFileError(path, err)
	}
	return res, nil
}

func normCodes(codes []country.Code) ([]country.Code, error) {
	res := make([]country.Code, 0, len(codes))
	for _, v := range codes {
		code, err := country.NewCode(string(v))
		if err != nil {
			return nil, fmt.Errorf("universe: %w", err)
		}
		res = append(res, code)
	}
	return res, nil
}
