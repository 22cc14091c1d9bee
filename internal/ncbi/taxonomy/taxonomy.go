// Package taxonomy resolves NCBI taxonomy identifiers for genus/species
// pairs through the Entrez eutils esearch endpoint.
//
// Lookups are memoized for the lifetime of the Client: one remote query per
// organism per run, also when organisms are resolved in parallel.
package taxonomy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/FlyBase/blast-db-configuration/pkg/errors"
)

// DefaultBaseURL is the public Entrez eutils endpoint.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// toolName identifies this client to NCBI per their usage policy.
const toolName = "blast-db-configuration"

// Client performs memoized taxonomy id lookups.
type Client struct {
	baseURL    string
	email      string
	httpClient *http.Client
	logger     *slog.Logger

	mu     sync.RWMutex
	ids    map[string]lookupResult
	flight singleflight.Group
}

// lookupResult caches both present and absent outcomes; errors are never
// cached so a transient eutils failure can recover on the next organism.
type lookupResult struct {
	id    int
	found bool
}

// NewClient creates a taxonomy client. baseURL may be empty for the public
// endpoint; email is forwarded to NCBI as the contact parameter.
func NewClient(baseURL, email string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		email:      email,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		ids:        make(map[string]lookupResult),
	}
}

type esearchEnvelope struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count  string   `json:"count"`
	IDList []string `json:"idlist"`
}

// TaxonomyID returns the NCBI taxonomy id for a genus and species. found is
// false when the name has no record, which is a valid outcome. More than
// one record for a scientific name is an ambiguity error.
func (c *Client) TaxonomyID(ctx context.Context, genus, species string) (id int, found bool, err error) {
	key := genus + " " + species

	c.mu.RLock()
	cached, ok := c.ids[key]
	c.mu.RUnlock()
	if ok {
		return cached.id, cached.found, nil
	}

	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		cached, ok := c.ids[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		result, err := c.search(ctx, key)
		if err != nil {
			return lookupResult{}, err
		}

		c.mu.Lock()
		c.ids[key] = result
		c.mu.Unlock()
		return result, nil
	})
	if err != nil {
		return 0, false, err
	}

	result := v.(lookupResult)
	return result.id, result.found, nil
}

func (c *Client) search(ctx context.Context, scientificName string) (lookupResult, error) {
	c.logger.Debug("searching taxonomy", "name", scientificName)

	params := url.Values{}
	params.Set("db", "taxonomy")
	params.Set("term", scientificName+"[SCIN]")
	params.Set("retmode", "json")
	params.Set("tool", toolName)
	if c.email != "" {
		params.Set("email", c.email)
	}

	endpoint := c.baseURL + "/esearch.fcgi?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return lookupResult{}, errors.Wrap(errors.ErrCodeTaxonomyLookup, "build esearch request", err)
	}
	req.Header.Set("User-Agent", toolName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return lookupResult{}, errors.Wrap(errors.ErrCodeTaxonomyLookup, "esearch request failed", err).
			WithContext("name", scientificName)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return lookupResult{}, errors.Newf(errors.ErrCodeTaxonomyLookup, "esearch returned status %d", resp.StatusCode).
			WithContext("name", scientificName)
	}

	var envelope esearchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return lookupResult{}, errors.Wrap(errors.ErrCodeTaxonomyLookup, "decode esearch response", err).
			WithContext("name", scientificName)
	}

	count, err := strconv.Atoi(envelope.Result.Count)
	if err != nil {
		return lookupResult{}, errors.Wrap(errors.ErrCodeTaxonomyLookup, "esearch count not numeric", err).
			WithContext("name", scientificName)
	}

	switch {
	case count == 0:
		return lookupResult{}, nil
	case count > 1:
		return lookupResult{}, errors.Newf(errors.ErrCodeTaxonomyAmbiguous,
			"%d taxonomy records found for %s", count, scientificName)
	}

	if len(envelope.Result.IDList) == 0 {
		return lookupResult{}, errors.New(errors.ErrCodeTaxonomyLookup, "esearch count is 1 but idlist is empty").
			WithContext("name", scientificName)
	}
	id, err := strconv.Atoi(envelope.Result.IDList[0])
	if err != nil {
		return lookupResult{}, errors.Wrap(errors.ErrCodeTaxonomyLookup, "taxonomy id not numeric", err).
			WithContext("name", scientificName)
	}
	return lookupResult{id: id, found: true}, nil
}

// String implements fmt.Stringer for diagnostics.
func (c *Client) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("taxonomy.Client{cached: %d}", len(c.ids))
}
