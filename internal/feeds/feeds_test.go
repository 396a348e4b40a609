package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherFormatsConditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Cordoba,Argentina", r.URL.Path)
		assert.Equal(t, "j1", r.URL.Query().Get("format"))
		w.Write([]byte(`{
			"current_condition": [{
				"temp_C": "22", "FeelsLikeC": "24", "humidity": "55",
				"lang_es": [{"value": "Parcialmente nublado"}],
				"weatherDesc": [{"value": "Partly cloudy"}]
			}],
			"weather": [{"maxtempC": "27", "mintempC": "14"}]
		}`))
	}))
	defer srv.Close()

	c := NewWeatherClient(WithWeatherBaseURL(srv.URL))
	out, err := c.Current(context.Background(), "Cordoba,Argentina")
	require.NoError(t, err)

	assert.Contains(t, out, "🌤 *Clima en Cordoba,Argentina:*")
	assert.Contains(t, out, "22°C (sensación 24°C)")
	assert.Contains(t, out, "Máx: 27°C / Mín: 14°C")
	assert.Contains(t, out, "Humedad: 55%")
	assert.Contains(t, out, "Parcialmente nublado")
}

func TestWeatherFallsBackToEnglishDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"current_condition": [{
				"temp_C": "22", "FeelsLikeC": "24", "humidity": "55",
				"weatherDesc": [{"value": "Partly cloudy"}]
			}],
			"weather": [{"maxtempC": "27", "mintempC": "14"}]
		}`))
	}))
	defer srv.Close()

	c := NewWeatherClient(WithWeatherBaseURL(srv.URL))
	out, err := c.Current(context.Background(), "Rosario")
	require.NoError(t, err)
	assert.Contains(t, out, "Partly cloudy")
}

func TestWeatherUnreachableReturnsFallbackLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewWeatherClient(WithWeatherBaseURL(srv.URL))
	out, err := c.Current(context.Background(), "Cordoba,Argentina")
	require.Error(t, err)
	assert.Equal(t, "No pude obtener el clima en este momento.", out)
}

func TestDollarFormatsKnownQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/dolares", r.URL.Path)
		w.Write([]byte(`[
			{"nombre": "Oficial", "compra": 980.5, "venta": 1020.5},
			{"nombre": "Blue", "compra": 1200, "venta": 1250},
			{"nombre": "Bolsa", "compra": 1150, "venta": 1180},
			{"nombre": "Cripto", "compra": 1300, "venta": 1350}
		]`))
	}))
	defer srv.Close()

	c := NewDollarClient(WithDollarBaseURL(srv.URL))
	out, err := c.Quotes(context.Background())
	require.NoError(t, err)

	assert.Contains(t, out, "💵 *Cotización del Dólar:*")
	assert.Contains(t, out, "• Oficial: $980 / $1020")
	assert.Contains(t, out, "• Blue: $1200 / $1250")
	assert.Contains(t, out, "• MEP: $1150 / $1180")
	assert.NotContains(t, out, "Cripto")
}

func TestDollarUnreachableReturnsFallbackLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewDollarClient(WithDollarBaseURL(srv.URL))
	out, err := c.Quotes(context.Background())
	require.Error(t, err)
	assert.Equal(t, "💵 No pude obtener la cotización del dólar.", out)
}

func TestMotivationalQuoteDrawsFromRotation(t *testing.T) {
	q := MotivationalQuote()
	assert.True(t, strings.HasPrefix(q, "💫 _"))
	assert.True(t, strings.HasSuffix(q, "_"))

	found := false
	for _, known := range motivationalQuotes {
		if strings.Contains(q, known) {
			found = true
			break
		}
	}
	assert.True(t, found)
}
