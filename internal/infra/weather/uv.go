package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultWeatherstackBaseURL = "http://api.weatherstack.com"
	defaultOpenUVBaseURL       = "https://api.openuv.io"
)

type weatherstackResponse struct {
	Location *struct {
		Name   string `json:"name"`
		Region string `json:"region"`
		Lat    string `json:"lat"`
		Lon    string `json:"lon"`
	} `json:"location"`
	Error *struct {
		Info string `json:"info"`
	} `json:"error"`
}

type uvForecastResponse struct {
	Result []struct {
		UV     float64   `json:"uv"`
		UVTime time.Time `json:"uv_time"`
	} `json:"result"`
}

type location struct {
	city, state string
	lat, lon    float64
}

// UVForecastAggregator resolves a zip code to a location through weatherstack and
// renders the OpenUV hourly forecast for it.
type UVForecastAggregator struct {
	http                *httpGetter
	weatherstackKey     string
	openUVKey           string
	weatherstackBaseURL string
	openUVBaseURL       string
	loc                 *time.Location
}

func NewUVForecastAggregator(client *http.Client, userAgent, weatherstackKey, openUVKey string, loc *time.Location) *UVForecastAggregator {
	if loc == nil {
		loc = time.Local
	}
	return &UVForecastAggregator{
		http:                newHTTPGetter(client, userAgent),
		weatherstackKey:     weatherstackKey,
		openUVKey:           openUVKey,
		weatherstackBaseURL: defaultWeatherstackBaseURL,
		openUVBaseURL:       defaultOpenUVBaseURL,
		loc:                 loc,
	}
}

// WithBaseURLs points the aggregator at other API hosts. Empty values keep the current ones.
func (a *UVForecastAggregator) WithBaseURLs(weatherstack, openUV string) *UVForecastAggregator {
	if weatherstack != "" {
		a.weatherstackBaseURL = strings.TrimRight(weatherstack, "/")
	}
	if openUV != "" {
		a.openUVBaseURL = strings.TrimRight(openUV, "/")
	}
	return a
}

func (a *UVForecastAggregator) Fetch(ctx context.Context, zipCode string) (string, error) {
	zipCode = strings.TrimSpace(zipCode)
	if _, err := strconv.Atoi(zipCode); err != nil || len(zipCode) != 5 {
		return "", fmt.Errorf("invalid zip code %q", zipCode)
	}

	loc, err := a.lookupLocation(ctx, zipCode)
	if err != nil {
		return "", err
	}

	var forecast uvForecastResponse
	forecastURL := fmt.Sprintf("%s/api/v1/forecast?lat=%s&lng=%s", a.openUVBaseURL,
		strconv.FormatFloat(loc.lat, 'f', -1, 64), strconv.FormatFloat(loc.lon, 'f', -1, 64))
	if err := a.http.getJSON(ctx, forecastURL, map[string]string{"x-access-token": a.openUVKey}, &forecast); err != nil {
		return "", fmt.Errorf("uv forecast for %s: %w", zipCode, err)
	}
	if len(forecast.Result) == 0 {
		return "", fmt.Errorf("uv forecast for %s: no forecast periods", zipCode)
	}
	return a.formatForecast(loc, &forecast), nil
}

func (a *UVForecastAggregator) lookupLocation(ctx context.Context, zipCode string) (*location, error) {
	q := url.Values{}
	q.Set("access_key", a.weatherstackKey)
	q.Set("query", zipCode)
	q.Set("units", "f")

	var data weatherstackResponse
	if err := a.http.getJSON(ctx, a.weatherstackBaseURL+"/current?"+q.Encode(), nil, &data); err != nil {
		return nil, fmt.Errorf("location for %s: %w", zipCode, err)
	}
	if data.Error != nil {
		return nil, fmt.Errorf("location for %s: %s", zipCode, data.Error.Info)
	}
	if data.Location == nil {
		return nil, fmt.Errorf("the zip code %s does not match a location", zipCode)
	}

	lat, err := strconv.ParseFloat(data.Location.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("location for %s: bad latitude %q", zipCode, data.Location.Lat)
	}
	lon, err := strconv.ParseFloat(data.Location.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("location for %s: bad longitude %q", zipCode, data.Location.Lon)
	}
	return &location{city: data.Location.Name, state: data.Location.Region, lat: lat, lon: lon}, nil
}

func (a *UVForecastAggregator) formatForecast(loc *location, data *uvForecastResponse) string {
	var sb strings.Builder
	for _, p := range data.Result {
		sb.WriteString(fmt.Sprintf("%s: %.2f\n", p.UVTime.In(a.loc).Format("03:04 PM"), p.UV))
	}
	day := data.Result[0].UVTime.In(a.loc).Format("January 02, 2006")
	return fmt.Sprintf("```\nUV Forecast => %s, %s (lat: %.2f, lon: %.2f)\n\nForecast for %s\n\n%s\n```",
		loc.city, loc.state, loc.lat, loc.lon, day, sb.String())
}
