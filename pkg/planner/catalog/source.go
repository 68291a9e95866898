package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/patrickmn/go-cache"
	"gopkg.in/yaml.v3"
)

//go:embed seed_data.yaml
var seedData []byte

// Source produces the dataset the client searches.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
}

// StaticSource serves a dataset built in memory.
type StaticSource struct {
	Dataset *Dataset
}

func (s StaticSource) Load(ctx context.Context) (*Dataset, error) {
	if s.Dataset == nil {
		return &Dataset{}, nil
	}
	return s.Dataset, nil
}

// EmbeddedSource serves the demo catalog compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Load(ctx context.Context) (*Dataset, error) {
	return ParseYAML(seedData)
}

// FileSource reads a YAML dataset from disk on every load.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (*Dataset, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a dataset document.
func ParseYAML(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode catalog yaml: %w", err)
	}
	return &ds, nil
}

// Endpoints holds one JSON URL per catalog kind. Empty URLs are skipped.
type Endpoints struct {
	OutboundFlights string
	ReturnFlights   string
	Hotels          string
	Activities      string
	DestinationInfo string
}

// HTTPSource fetches each kind from its own endpoint. Every endpoint returns
// a JSON object keyed the same way as the YAML dataset.
type HTTPSource struct {
	Endpoints Endpoints
	Client    *http.Client
}

func NewHTTPSource(endpoints Endpoints, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		Endpoints: endpoints,
		Client:    &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Load(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{}
	fetches := []struct {
		kind string
		url  string
		out  interface{}
	}{
		{"outbound flights", s.Endpoints.OutboundFlights, &ds.OutboundFlights},
		{"return flights", s.Endpoints.ReturnFlights, &ds.ReturnFlights},
		{"hotels", s.Endpoints.Hotels, &ds.Hotels},
		{"activities", s.Endpoints.Activities, &ds.Activities},
		{"destination info", s.Endpoints.DestinationInfo, &ds.DestinationInfo},
	}

	for _, f := range fetches {
		if f.url == "" {
			continue
		}
		if err := s.fetch(ctx, f.url, f.out); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", f.kind, err)
		}
	}
	return ds, nil
}

func (s *HTTPSource) fetch(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

const datasetCacheKey = "dataset"

// CachedSource keeps the last successful load of another source for ttl.
type CachedSource struct {
	next  Source
	cache *cache.Cache
}

func NewCachedSource(next Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (s *CachedSource) Load(ctx context.Context) (*Dataset, error) {
	if x, found := s.cache.Get(datasetCacheKey); found {
		return x.(*Dataset), nil
	}
	ds, err := s.next.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(datasetCacheKey, ds, cache.DefaultExpiration)
	return ds, nil
}

// Invalidate drops the cached dataset.
func (s *CachedSource) Invalidate() {
	s.cache.Delete(datasetCacheKey)
}
