// Package iograph fetches government and history facts of countries from
// the Wikidata SPARQL endpoint with a single query.
package iograph

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gnames/factbook/internal/iohttp"
	"github.com/gnames/factbook/pkg/config"
	"github.com/gnames/factbook/pkg/country"
	"github.com/gnames/factbook/pkg/pipeline"
	"github.com/gnames/gnfmt"
)

// MaxProducts caps the number of agricultural products per country.
const MaxProducts = 12

//go:embed query.rq
var Query string

// unresolved matches labels that the label service could not resolve
// and returned as bare entity ids.
var unresolved = regexp.MustCompile(`^Q\d+$`)

type graph struct {
	client  *iohttp.Client
	enc     gnfmt.Encoder
	url     string
	timeout time.Duration
}

// New creates a GraphSource.
func New(cfg *config.Config, client *iohttp.Client) pipeline.GraphSource {
	return &graph{
		client:  client.For(pipeline.SourceGraph),
		enc:     gnfmt.GNjson{},
		url:     cfg.Endpoints.Graph,
		timeout: time.Duration(cfg.HTTP.GraphTimeoutSec) * time.Second,
	}
}

// Attribution implements pipeline.Attributor.
func (g *graph) Attribution() country.Attribution {
	return country.Attribution{
		Label: "Wikidata",
		URL:   "https://www.wikidata.org",
	}
}

// FetchGraph implements pipeline.GraphSource. The query is all or
// nothing: any failure returns an empty map.
func (g *graph) FetchGraph(
	ctx context.Context,
) (map[country.Code]country.GraphPart, error) {
	res := make(map[country.Code]country.GraphPart)

	q := url.Values{}
	q.Set("query", Query)
	q.Set("format", "json")
	bs, err := g.client.Get(ctx, g.url+"?"+q.Encode(),
		iohttp.WithAccept("application/sparql-results+json"),
		iohttp.WithTimeout(g.timeout),
	)
	if err != nil {
		return res, fmt.Errorf("knowledge graph query: %w", err)
	}

	var resp response
	if err = g.enc.Decode(bs, &resp); err != nil {
		return res, fmt.Errorf("knowledge graph response: %w: %w",
			pipeline.ErrSchema, err)
	}

	res = Fold(resp.Results.Bindings)
	slog.Info("Fetched knowledge graph",
		"rows", len(resp.Results.Bindings), "countries", len(res))
	return res, nil
}

type response struct {
	Results struct {
		Bindings []Row `json:"bindings"`
	} `json:"results"`
}

// Row is one solution of the query.
type Row map[string]struct {
	Value string `json:"value"`
}

func (r Row) get(key string) string {
	v := strings.TrimSpace(r[key].Value)
	if unresolved.MatchString(v) {
		return ""
	}
	return v
}

type acc struct {
	gov      map[string]struct{}
	products map[string]struct{}
	hos      string
	hog      string
	leg      string
	indYear  *int
	indFrom  string
}

// Fold collapses query rows into one GraphPart per country code.
// Government forms and products are distinct and sorted; for single
// value fields the first non-empty value wins; the earliest independence
// year is kept together with the entity of that event.
func Fold(rows []Row) map[country.Code]country.GraphPart {
	accs := make(map[country.Code]*acc)
	for _, r := range rows {
		code, err := country.NewCode(r.get("iso3"))
		if err != nil {
			continue
		}
		a, ok := accs[code]
		if !ok {
			a = &acc{
				gov:      make(map[string]struct{}),
				products: make(map[string]struct{}),
			}
			accs[code] = a
		}
		a.add(r)
	}

	res := make(map[country.Code]country.GraphPart, len(accs))
	for code, a := range accs {
		res[code] = a.part()
	}
	return res
}

func (a *acc) add(r Row) {
	if v := r.get("governmentLabel"); v != "" {
		a.gov[v] = struct{}{}
	}
	if v := r.get("productLabel"); v != "" {
		a.products[v] = struct{}{}
	}
	if a.hos == "" {
		a.hos = r.get("headOfStateLabel")
	}
	if a.hog == "" {
		a.hog = r.get("headOfGovernmentLabel")
	}
	if a.leg == "" {
		a.leg = r.get("legislatureLabel")
	}

	year, ok := parseYear(r.get("independence"))
	if !ok {
		return
	}
	from := r.get("independenceFromLabel")
	switch {
	case a.indYear == nil || year < *a.indYear:
		a.indYear = &year
		a.indFrom = from
	case year == *a.indYear && a.indFrom == "":
		a.indFrom = from
	}
}

func (a *acc) part() country.GraphPart {
	res := country.GraphPart{
		GovernmentForms:      sortedKeys(a.gov),
		HeadOfState:          strPtr(a.hos),
		HeadOfGovernment:     strPtr(a.hog),
		Legislature:          strPtr(a.leg),
		IndependenceYear:     a.indYear,
		IndependenceFrom:     strPtr(a.indFrom),
		AgriculturalProducts: sortedKeys(a.products),
	}
	if len(res.AgriculturalProducts) > MaxProducts {
		res.AgriculturalProducts = res.AgriculturalProducts[:MaxProducts]
	}
	return res
}

func sortedKeys(m map[string]struct{}) []string {
	res := make([]string, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseYear gets a year from an xsd:dateTime value such as
// "1905-06-07T00:00:00Z" or "-0500-01-01T00:00:00Z".
func parseYear(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	sign := 1
	if s[0] == '-' || s[0] == '+' {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	ys, _, _ := strings.Cut(s, "-")
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, false
	}
	return sign * y, true
}
