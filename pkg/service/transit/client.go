package transit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lwalder/veille/pkg/utils/safe"
)

// ErrNotConfigured is returned when the upstream API key is absent
var ErrNotConfigured = goerr.New("transit API key is not configured")

// Passage is one upcoming departure. The wire field names match what the
// frontend widget consumes.
type Passage struct {
	Destination string `json:"destination"`
	Wait        string `json:"attente"`
}

// Client queries a SIRI stop-monitoring API for the next departures of one
// fixed stop and direction. Station, line and destination filter are baked
// into each deployed instance.
type Client struct {
	endpoint     string
	apiKey       string
	stopID       string
	lineRef      string
	destinations map[string]bool
	httpClient   *http.Client
	now          func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the upstream HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithClock replaces the wall clock, for tests
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a transit client
func New(endpoint, apiKey, stopID, lineRef string, destinations []string, opts ...Option) *Client {
	c := &Client{
		endpoint:     endpoint,
		apiKey:       apiKey,
		stopID:       stopID,
		lineRef:      lineRef,
		destinations: make(map[string]bool, len(destinations)),
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		now:          time.Now,
	}
	for _, d := range destinations {
		c.destinations[d] = true
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SIRI stop-monitoring response, reduced to the fields used here
type stopMonitoringResponse struct {
	Siri struct {
		ServiceDelivery struct {
			StopMonitoringDelivery []struct {
				MonitoredStopVisit []monitoredStopVisit `json:"MonitoredStopVisit"`
			} `json:"StopMonitoringDelivery"`
		} `json:"ServiceDelivery"`
	} `json:"Siri"`
}

type monitoredStopVisit struct {
	MonitoredVehicleJourney struct {
		DestinationName []struct {
			Value string `json:"value"`
		} `json:"DestinationName"`
		MonitoredCall struct {
			ExpectedArrivalTime string `json:"ExpectedArrivalTime"`
		} `json:"MonitoredCall"`
	} `json:"MonitoredVehicleJourney"`
}

// NextDepartures returns at most the 4 nearest future departures toward
// the configured destinations, sorted by arrival time.
func (c *Client) NextDepartures(ctx context.Context) ([]Passage, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid transit endpoint", goerr.V("endpoint", c.endpoint))
	}
	params := u.Query()
	params.Set("MonitoringRef", c.stopID)
	params.Set("LineRef", c.lineRef)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build stop-monitoring request")
	}
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "stop-monitoring request failed")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, goerr.New("transit API error",
			goerr.V("status", resp.StatusCode), goerr.V("body", string(body)))
	}

	var raw stopMonitoringResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, goerr.Wrap(err, "failed to decode stop-monitoring response")
	}

	return c.filterVisits(&raw), nil
}

type timedPassage struct {
	Passage
	eta time.Time
}

func (c *Client) filterVisits(raw *stopMonitoringResponse) []Passage {
	now := c.now()

	var upcoming []timedPassage
	for _, delivery := range raw.Siri.ServiceDelivery.StopMonitoringDelivery {
		for _, visit := range delivery.MonitoredStopVisit {
			journey := visit.MonitoredVehicleJourney
			if len(journey.DestinationName) == 0 {
				continue
			}
			destination := journey.DestinationName[0].Value
			if !c.destinations[destination] {
				continue
			}

			eta, err := time.Parse(time.RFC3339, journey.MonitoredCall.ExpectedArrivalTime)
			if err != nil || !eta.After(now) {
				continue
			}

			minutes := int(eta.Sub(now).Minutes())
			upcoming = append(upcoming, timedPassage{
				Passage: Passage{
					Destination: destination,
					Wait:        strconv.Itoa(minutes),
				},
				eta: eta,
			})
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].eta.Before(upcoming[j].eta)
	})

	if len(upcoming) > 4 {
		upcoming = upcoming[:4]
	}

	passages := make([]Passage, len(upcoming))
	for i, p := range upcoming {
		passages[i] = p.Passage
	}
	return passages
}
