package recon

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/bytedance/sonic"
	"github.com/vulnverified/iseeyou/internal/engine"
)

const (
	ipAPIBaseURL = "http://ip-api.com/json/%s"
	otxBaseURL   = "https://otx.alienvault.com/api/v1/indicators/%s/%s/geo"
	geoMaxBody   = 256 * 1024
)

type ipAPIResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	RegionName  string  `json:"regionName"`
	City        string  `json:"city"`
	Zip         string  `json:"zip"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone"`
	ISP         string  `json:"isp"`
	Org         string  `json:"org"`
	AS          string  `json:"as"`
}

// IPAPI is the primary geolocation tier (ip-api.com, keyless).
type IPAPI struct {
	meta
	opts    Options
	baseURL string
}

// NewIPAPI returns the "ip-api" adapter.
func NewIPAPI(opts Options, timeout time.Duration) *IPAPI {
	return &IPAPI{meta: meta{"ip-api", timeout}, opts: opts, baseURL: ipAPIBaseURL}
}

func (a *IPAPI) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	resp, err := fetch(ctx, a.opts, request{source: a.name, url: fmt.Sprintf(a.baseURL, q.Value), maxBody: geoMaxBody})
	if err != nil {
		return nil, err
	}
	return parseIPAPIResponse(resp.body)
}

func (a *IPAPI) Meaningful(p map[string]any) bool {
	return engine.NonPlaceholder("country", "country_code", "city")(p)
}

func parseIPAPIResponse(body []byte) (map[string]any, error) {
	var r ipAPIResponse
	if err := sonic.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("ip-api JSON parse: %w", err)
	}
	if r.Status != "success" {
		return nil, fmt.Errorf("ip-api: %s", r.Message)
	}
	return map[string]any{
		"country":      r.Country,
		"country_code": r.CountryCode,
		"region":       r.RegionName,
		"city":         r.City,
		"zip":          r.Zip,
		"lat":          r.Lat,
		"lon":          r.Lon,
		"timezone":     r.Timezone,
		"isp":          r.ISP,
		"org":          r.Org,
		"as":           r.AS,
	}, nil
}

type otxGeoResponse struct {
	CountryName string  `json:"country_name"`
	CountryCode string  `json:"country_code"`
	Region      string  `json:"region"`
	City        string  `json:"city"`
	PostalCode  string  `json:"postal_code"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ASN         string  `json:"asn"`
}

// OTXGeo is the fallback geolocation tier (AlienVault OTX indicator geo).
type OTXGeo struct {
	meta
	opts    Options
	baseURL string
}

// NewOTXGeo returns the "otx" adapter.
func NewOTXGeo(opts Options, timeout time.Duration) *OTXGeo {
	return &OTXGeo{meta: meta{"otx", timeout}, opts: opts, baseURL: otxBaseURL}
}

func (a *OTXGeo) Attempt(ctx context.Context, q engine.Query) (map[string]any, error) {
	section := "IPv4"
	if addr, err := netip.ParseAddr(q.Value); err == nil && addr.Is6() {
		section = "IPv6"
	}
	resp, err := fetch(ctx, a.opts, request{
		source:  a.name,
		url:     fmt.Sprintf(a.baseURL, section, q.Value),
		headers: map[string]string{"Accept": "application/json"},
		maxBody: geoMaxBody,
	})
	if err != nil {
		return nil, err
	}
	return parseOTXGeoResponse(resp.body)
}

func (a *OTXGeo) Meaningful(p map[string]any) bool {
	return engine.NonPlaceholder("country", "country_code", "city")(p)
}

func parseOTXGeoResponse(body []byte) (map[string]any, error) {
	var r otxGeoResponse
	if err := sonic.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("otx JSON parse: %w", err)
	}
	return map[string]any{
		"country":      r.CountryName,
		"country_code": r.CountryCode,
		"region":       r.Region,
		"city":         r.City,
		"zip":          r.PostalCode,
		"lat":          r.Latitude,
		"lon":          r.Longitude,
		"as":           r.ASN,
	}, nil
}
