// Package feeds wraps the external read-only data sources the assistant
// quotes in replies and summaries. Every fetcher degrades to a fixed Spanish
// fallback line rather than erroring the whole message.
package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const weatherFallback = "No pude obtener el clima en este momento."

// WeatherClient reads current conditions from wttr.in (JSON format j1).
type WeatherClient struct {
	http    *http.Client
	baseURL string
}

type WeatherOption func(*WeatherClient)

// WithWeatherBaseURL points the client at a test server.
func WithWeatherBaseURL(u string) WeatherOption {
	return func(c *WeatherClient) { c.baseURL = u }
}

func NewWeatherClient(opts ...WeatherOption) *WeatherClient {
	c := &WeatherClient{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://wttr.in",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type wttrResponse struct {
	CurrentCondition []struct {
		TempC      string `json:"temp_C"`
		FeelsLikeC string `json:"FeelsLikeC"`
		Humidity   string `json:"humidity"`
		LangES     []struct {
			Value string `json:"value"`
		} `json:"lang_es"`
		WeatherDesc []struct {
			Value string `json:"value"`
		} `json:"weatherDesc"`
	} `json:"current_condition"`
	Weather []struct {
		MaxTempC string `json:"maxtempC"`
		MinTempC string `json:"mintempC"`
	} `json:"weather"`
}

// Current returns the formatted weather block for city, or the fallback line
// with the underlying error when the feed is unreachable or malformed.
func (c *WeatherClient) Current(ctx context.Context, city string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(city)+"?format=j1", nil)
	if err != nil {
		return weatherFallback, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return weatherFallback, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return weatherFallback, fmt.Errorf("wttr.in status %d", resp.StatusCode)
	}

	var data wttrResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return weatherFallback, err
	}
	if len(data.CurrentCondition) == 0 || len(data.Weather) == 0 {
		return weatherFallback, fmt.Errorf("wttr.in response missing conditions")
	}

	current := data.CurrentCondition[0]
	desc := ""
	if len(current.LangES) > 0 {
		desc = current.LangES[0].Value
	} else if len(current.WeatherDesc) > 0 {
		desc = current.WeatherDesc[0].Value
	}

	return fmt.Sprintf(`🌤 *Clima en %s:*
🌡 Temperatura: %s°C (sensación %s°C)
📊 Máx: %s°C / Mín: %s°C
💧 Humedad: %s%%
📝 %s`,
		city, current.TempC, current.FeelsLikeC,
		data.Weather[0].MaxTempC, data.Weather[0].MinTempC,
		current.Humidity, desc), nil
}
