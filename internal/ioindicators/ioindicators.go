// Package ioindicators fetches dated statistical indicators from the
// World Bank API. Every indicator is a separate request; the most recent
// non-empty observation within the year window is kept per country.
package ioindicators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/buger/jsonparser"
	"github.com/gnames/factbook/internal/iohttp"
	"github.com/gnames/factbook/pkg/config"
	"github.com/gnames/factbook/pkg/country"
	"github.com/gnames/factbook/pkg/pipeline"
	"golang.org/x/sync/errgroup"
)

// perPage is the page size of a request.
const perPage = 1000

// maxPages protects from a service that reports endless pages.
const maxPages = 50

// Codes maps indicators to World Bank indicator codes.
var Codes = map[country.Indicator]string{
	country.Population:       "SP.POP.TOTL",
	country.PopulationGrowth: "SP.POP.GROW",
	country.UrbanPopulation:  "SP.URB.TOTL.IN.ZS",
	country.LifeExpectancy:   "SP.DYN.LE00.IN",
	country.FertilityRate:    "SP.DYN.TFRT.IN",
	country.LiteracyRate:     "SE.ADT.LITR.ZS",
	country.InfantMortality:  "SP.DYN.IMRT.IN",
	country.GDP:              "NY.GDP.MKTP.CD",
	country.GDPPerCapita:     "NY.GDP.PCAP.CD",
	country.GDPGrowth:        "NY.GDP.MKTP.KD.ZG",
	country.RealGDP:          "NY.GDP.MKTP.KD",
	country.InflationCPI:     "FP.CPI.TOTL.ZG",
	country.UnemploymentRate: "SL.UEM.TOTL.ZS",
}

type indicators struct {
	client *iohttp.Client
	url    string
	jobs   int
	from   int
	to     int
}

// New creates an IndicatorSource that searches observations from
// the years window ending with the build year.
func New(
	cfg *config.Config,
	client *iohttp.Client,
	buildYear int,
) pipeline.IndicatorSource {
	window := max(cfg.Indicators.YearWindow, 1)
	return &indicators{
		client: client.For(pipeline.SourceIndicators),
		url:    cfg.Endpoints.Indicators,
		jobs:   max(cfg.JobsNumber, 1),
		from:   buildYear - window + 1,
		to:     buildYear,
	}
}

// Attribution implements pipeline.Attributor.
func (s *indicators) Attribution() country.Attribution {
	return country.Attribution{
		Label: "World Bank Open Data",
		URL:   "https://data.worldbank.org",
	}
}

type slot struct {
	data map[country.Code]country.Metric
	err  error
}

// FetchIndicators implements pipeline.IndicatorSource. Failure of one
// indicator makes the result partial. The result is empty only if
// every indicator failed.
func (s *indicators) FetchIndicators(
	ctx context.Context,
) (map[country.Code]country.IndicatorPart, error) {
	slots := make([]slot, len(country.Indicators))

	var g errgroup.Group
	g.SetLimit(s.jobs)
	for i, ind := range country.Indicators {
		g.Go(func() error {
			data, err := s.fetchIndicator(ctx, ind)
			slots[i] = slot{data: data, err: err}
			return nil
		})
	}
	_ = g.Wait()

	res := make(map[country.Code]country.IndicatorPart)
	var errs []error
	for i, ind := range country.Indicators {
		sl := slots[i]
		if sl.err != nil {
			slog.Warn("Cannot fetch indicator",
				"indicator", ind, "code", Codes[ind], "error", sl.err)
			errs = append(errs, fmt.Errorf("%s: %w", ind, sl.err))
		}
		for code, m := range sl.data {
			if _, ok := res[code]; !ok {
				res[code] = make(country.IndicatorPart)
			}
			res[code][ind] = m
		}
	}

	if len(errs) == len(country.Indicators) {
		return make(map[country.Code]country.IndicatorPart),
			errors.Join(errs...)
	}

	slog.Info("Fetched indicators",
		"countries", len(res),
		"indicators", len(country.Indicators)-len(errs),
	)
	return res, errors.Join(errs...)
}

// Failures returns the number of indicators that failed in the error
// returned by FetchIndicators.
func Failures(err error) int {
	if err == nil {
		return 0
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return len(j.Unwrap())
	}
	return 1
}

func (s *indicators) fetchIndicator(
	ctx context.Context,
	ind country.Indicator,
) (map[country.Code]country.Metric, error) {
	res := make(map[country.Code]country.Metric)
	wbCode, ok := Codes[ind]
	if !ok {
		return res, fmt.Errorf("no code for %s: %w", ind, pipeline.ErrSchema)
	}

	for page := 1; page <= maxPages; page++ {
		url := fmt.Sprintf(
			"%s/country/all/indicator/%s?format=json&date=%d:%d&per_page=%d&page=%d",
			s.url, wbCode, s.from, s.to, perPage, page,
		)
		bs, err := s.client.Get(ctx, url)
		if err != nil {
			return res, err
		}
		pages, err := parsePage(bs, res)
		if err != nil {
			return res, fmt.Errorf("%s page %d: %w", wbCode, page, err)
		}
		if page >= pages {
			break
		}
	}
	return res, nil
}

// parsePage reads one response page of the form [meta, rows] and keeps
// the newest observation per country in res. It returns the total number
// of pages.
func parsePage(
	data []byte,
	res map[country.Code]country.Metric,
) (int, error) {
	if msg, _, _, err := jsonparser.Get(data, "[0]", "message"); err == nil {
		return 0, fmt.Errorf("%w: service message %s", pipeline.ErrSchema, msg)
	}

	pages, err := jsonparser.GetInt(data, "[0]", "pages")
	if err != nil {
		return 0, fmt.Errorf("%w: no page metadata: %w", pipeline.ErrSchema, err)
	}

	_, dt, _, err := jsonparser.Get(data, "[1]")
	if errors.Is(err, jsonparser.KeyPathNotFoundError) || dt == jsonparser.Null {
		return int(pages), nil
	}
	if err != nil || dt != jsonparser.Array {
		return 0, fmt.Errorf("%w: rows are not an array", pipeline.ErrSchema)
	}

	_, err = jsonparser.ArrayEach(data,
		func(row []byte, _ jsonparser.ValueType, _ int, _ error) {
			code, m, ok := parseRow(row)
			if !ok {
				return
			}
			if m.Newer(res[code]) {
				res[code] = m
			}
		}, "[1]")
	if err != nil {
		return 0, fmt.Errorf("%w: %w", pipeline.ErrSchema, err)
	}
	return int(pages), nil
}

func parseRow(row []byte) (country.Code, country.Metric, bool) {
	var m country.Metric

	iso3, err := jsonparser.GetString(row, "countryiso3code")
	if err != nil || iso3 == "" {
		return "", m, false
	}
	code, err := country.NewCode(iso3)
	if err != nil {
		return "", m, false
	}

	val, dt, _, err := jsonparser.Get(row, "value")
	if err != nil || dt != jsonparser.Number {
		return "", m, false
	}
	v, err := jsonparser.ParseFloat(val)
	if err != nil {
		return "", m, false
	}

	date, err := jsonparser.GetString(row, "date")
	if err != nil {
		return "", m, false
	}
	year, err := strconv.Atoi(date)
	if err != nil {
		return "", m, false
	}

	return code, country.NewMetric(v, year), true
}
