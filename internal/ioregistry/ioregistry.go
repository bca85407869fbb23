// Package ioregistry fetches identity and geography of countries from the
// REST Countries service. Its output defines the universe of a build.
package ioregistry

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/gnames/factbook/internal/iohttp"
	"github.com/gnames/factbook/pkg/config"
	"github.com/gnames/factbook/pkg/country"
	"github.com/gnames/factbook/pkg/pipeline"
	"github.com/gnames/gnfmt"
	"golang.org/x/sync/errgroup"
)

// The service allows at most 10 fields per request, so the data is
// requested in two groups that are joined by cca3.
var (
	identityFields = []string{
		"cca3", "name", "capital", "region", "subregion", "area",
		"landlocked", "timezones", "flags", "unMember",
	}
	extraFields = []string{
		"cca3", "currencies", "languages", "population", "demonyms",
		"tld", "idd",
	}
)

type registry struct {
	client   *iohttp.Client
	enc      gnfmt.Encoder
	url      string
	universe pipeline.Universe
	unOnly   bool
}

// New creates a RegistrySource.
func New(
	cfg *config.Config,
	client *iohttp.Client,
	universe pipeline.Universe,
) pipeline.RegistrySource {
	return &registry{
		client:   client.For(pipeline.SourceRegistry),
		enc:      gnfmt.GNjson{},
		url:      cfg.Endpoints.Registry,
		universe: universe,
		unOnly:   cfg.UNMembersOnly(),
	}
}

// Attribution implements pipeline.Attributor.
func (r *registry) Attribution() country.Attribution {
	return country.Attribution{
		Label: "REST Countries",
		URL:   "https://restcountries.com",
	}
}

// FetchRegistry implements pipeline.RegistrySource. Failure of the
// identity group is a total failure, failure of the supplementary group
// returns records without currencies, languages and other extras.
func (r *registry) FetchRegistry(
	ctx context.Context,
) (map[country.Code]country.RegistryPart, error) {
	res := make(map[country.Code]country.RegistryPart)

	var ids []identity
	var extras []extra
	var extraErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.fetch(gctx, identityFields, &ids)
	})
	g.Go(func() error {
		// supplementary data must not cancel the identity request
		extraErr = r.fetch(ctx, extraFields, &extras)
		return nil
	})
	if err := g.Wait(); err != nil {
		return res, fmt.Errorf("registry identity fields: %w", err)
	}

	extraIdx := make(map[country.Code]extra, len(extras))
	for _, v := range extras {
		code, err := country.NewCode(v.CCA3)
		if err != nil {
			continue
		}
		extraIdx[code] = v
	}

	var skipped int
	for _, v := range ids {
		code, err := country.NewCode(v.CCA3)
		if err != nil {
			skipped++
			continue
		}
		if !r.universe.Allows(code, v.UNMember, r.unOnly) {
			continue
		}
		part := v.part(code)
		if e, ok := extraIdx[code]; ok {
			e.fill(&part)
		}
		res[code] = part
	}

	if skipped > 0 {
		slog.Warn("Registry records without a valid code", "count", skipped)
	}
	if len(res) == 0 {
		return res, fmt.Errorf("registry returned no countries: %w",
			pipeline.ErrSchema)
	}

	slog.Info("Fetched registry", "countries", len(res))
	if extraErr != nil {
		return res, fmt.Errorf("registry supplementary fields: %w", extraErr)
	}
	return res, nil
}

func (r *registry) fetch(
	ctx context.Context,
	fields []string,
	v any,
) error {
	url := r.url + "/all?fields=" + strings.Join(fields, ",")
	bs, err := r.client.Get(ctx, url)
	if err != nil {
		return err
	}
	if err = r.enc.Decode(bs, v); err != nil {
		return fmt.Errorf("decode %s: %w: %w", url, pipeline.ErrSchema, err)
	}
	return nil
}

type identity struct {
	CCA3 string `json:"cca3"`
	Name struct {
		Common   string `json:"common"`
		Official string `json:"official"`
	} `json:"name"`
	Capital    []string `json:"capital"`
	Region     string   `json:"region"`
	Subregion  string   `json:"subregion"`
	Area       float64  `json:"area"`
	Landlocked bool     `json:"landlocked"`
	Timezones  []string `json:"timezones"`
	Flags      struct {
		PNG string `json:"png"`
		SVG string `json:"svg"`
		Alt string `json:"alt"`
	} `json:"flags"`
	UNMember bool `json:"unMember"`
}

func (id identity) part(code country.Code) country.RegistryPart {
	res := country.RegistryPart{
		Code:         code,
		NameCommon:   id.Name.Common,
		NameOfficial: id.Name.Official,
		Capital:      "N/A",
		Region:       id.Region,
		Landlocked:   id.Landlocked,
		Timezones:    id.Timezones,
		FlagURL:      id.Flags.SVG,
		FlagAlt:      id.Flags.Alt,
		Currency:     "N/A",
		UNMember:     id.UNMember,
	}
	if len(id.Capital) > 0 && id.Capital[0] != "" {
		res.Capital = id.Capital[0]
	}
	if id.Subregion != "" {
		res.Subregion = &id.Subregion
	}
	if id.Area > 0 {
		res.AreaKm2 = &id.Area
	}
	if res.FlagURL == "" {
		res.FlagURL = id.Flags.PNG
	}
	if res.FlagAlt == "" {
		res.FlagAlt = "Flag of " + id.Name.Common
	}
	return res
}

type extra struct {
	CCA3       string `json:"cca3"`
	Currencies map[string]struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"currencies"`
	Languages  map[string]string `json:"languages"`
	Population float64           `json:"population"`
	Demonyms   map[string]struct {
		F string `json:"f"`
		M string `json:"m"`
	} `json:"demonyms"`
	TLD []string `json:"tld"`
	IDD struct {
		Root     string   `json:"root"`
		Suffixes []string `json:"suffixes"`
	} `json:"idd"`
}

func (e extra) fill(p *country.RegistryPart) {
	if cur := currency(e); cur != "" {
		p.Currency = cur
	}

	langs := make([]string, 0, len(e.Languages))
	for _, v := range e.Languages {
		langs = append(langs, v)
	}
	slices.Sort(langs)
	p.Languages = langs

	if e.Population > 0 {
		p.Population = &e.Population
	}

	if d, ok := e.Demonyms["eng"]; ok {
		dem := d.M
		if dem == "" {
			dem = d.F
		}
		if dem != "" {
			p.Demonym = &dem
		}
	}

	p.InternetTLD = e.TLD

	if e.IDD.Root != "" {
		cc := e.IDD.Root
		if len(e.IDD.Suffixes) == 1 {
			cc += e.IDD.Suffixes[0]
		}
		p.CallingCode = &cc
	}
}

// currency formats currencies as "Name (symbol)" ordered by ISO code.
func currency(e extra) string {
	codes := make([]string, 0, len(e.Currencies))
	for k := range e.Currencies {
		codes = append(codes, k)
	}
	slices.Sort(codes)

	res := make([]string, 0, len(codes))
	for _, k := range codes {
		c := e.Currencies[k]
		s := c.Name
		if c.Symbol != "" {
			s = fmt.Sprintf("%s (%s)", c.Name, c.Symbol)
		}
		res = append(res, s)
	}
	return strings.Join(res, ", ")
}
