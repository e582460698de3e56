package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/lwalder/veille/pkg/service/transit"
)

// Transit holds the stop-monitoring proxy settings. The proxy is disabled
// unless an API key is provided.
type Transit struct {
	endpoint     string
	apiKey       string
	stopID       string
	lineRef      string
	destinations []string
}

func (x *Transit) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "transit-endpoint",
			Usage:       "SIRI stop-monitoring endpoint",
			Category:    "Transit",
			Value:       "https://prim.iledefrance-mobilites.fr/marketplace/stop-monitoring",
			Sources:     cli.EnvVars("VEILLE_TRANSIT_ENDPOINT"),
			Destination: &x.endpoint,
		},
		&cli.StringFlag{
			Name:        "transit-api-key",
			Usage:       "API key for the stop-monitoring endpoint",
			Category:    "Transit",
			Sources:     cli.EnvVars("IDFM_API_KEY"),
			Destination: &x.apiKey,
		},
		&cli.StringFlag{
			Name:        "transit-stop",
			Usage:       "Monitored stop reference",
			Category:    "Transit",
			Value:       "STIF:StopPoint:Q:41087:",
			Sources:     cli.EnvVars("VEILLE_TRANSIT_STOP"),
			Destination: &x.stopID,
		},
		&cli.StringFlag{
			Name:        "transit-line",
			Usage:       "Monitored line reference",
			Category:    "Transit",
			Value:       "STIF:Line::C01743:",
			Sources:     cli.EnvVars("VEILLE_TRANSIT_LINE"),
			Destination: &x.lineRef,
		},
		&cli.StringSliceFlag{
			Name:        "transit-destination",
			Usage:       "Destination names to keep (repeatable)",
			Category:    "Transit",
			Value:       []string{"Aéroport Charles de Gaulle 2 (Terminal 2 - Gare TGV)", "Mitry - Claye"},
			Sources:     cli.EnvVars("VEILLE_TRANSIT_DESTINATIONS"),
			Destination: &x.destinations,
		},
	}
}

func (x Transit) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("stop", x.stopID),
		slog.String("line", x.lineRef),
		slog.Int("api-key.len", len(x.apiKey)),
	)
}

// IsConfigured reports whether the proxy has an upstream key
func (x *Transit) IsConfigured() bool {
	return x.apiKey != ""
}

// Configure builds the transit client
func (x *Transit) Configure() *transit.Client {
	return transit.New(x.endpoint, x.apiKey, x.stopID, x.lineRef, x.destinations)
}
