package weather

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	defaultAlertsBaseURL = "https://api.weather.gov"
	alertsReadMoreURL    = "https://alerts.weather.gov/cap/wwaatmget.php?x=%s&y=1"
	noActiveAlerts       = "`No active alerts for this zone`"
)

type alertsResponse struct {
	Title    string `json:"title"`
	Features []struct {
		Properties struct {
			Headline string `json:"headline"`
			Severity string `json:"severity"`
		} `json:"properties"`
	} `json:"features"`
}

// AlertsAggregator renders the active NWS alerts for a forecast zone (e.g. TXZ192).
type AlertsAggregator struct {
	http    *httpGetter
	baseURL string
}

func NewAlertsAggregator(client *http.Client, userAgent string) *AlertsAggregator {
	return &AlertsAggregator{http: newHTTPGetter(client, userAgent), baseURL: defaultAlertsBaseURL}
}

// WithBaseURL points the aggregator at another API host.
func (a *AlertsAggregator) WithBaseURL(baseURL string) *AlertsAggregator {
	a.baseURL = strings.TrimRight(baseURL, "/")
	return a
}

func (a *AlertsAggregator) Fetch(ctx context.Context, zone string) (string, error) {
	zone = strings.ToUpper(strings.TrimSpace(zone))
	if zone == "" {
		return "", fmt.Errorf("empty alert zone")
	}

	var data alertsResponse
	if err := a.http.getJSON(ctx, a.baseURL+"/alerts/active/zone/"+zone, nil, &data); err != nil {
		return "", fmt.Errorf("alerts for zone %s: %w", zone, err)
	}
	return formatAlerts(zone, &data), nil
}

func formatAlerts(zone string, data *alertsResponse) string {
	if len(data.Features) == 0 {
		return noActiveAlerts
	}

	// Oldest alert first.
	var sb strings.Builder
	for i := len(data.Features) - 1; i >= 0; i-- {
		p := data.Features[i].Properties
		sb.WriteString(fmt.Sprintf("- %s (%s)\n", p.Headline, p.Severity))
	}
	return fmt.Sprintf("```%s\n\n%s\nRead more here: "+alertsReadMoreURL+"```", data.Title, sb.String(), zone)
}
