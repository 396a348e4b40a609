package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const dollarFallback = "💵 No pude obtener la cotización del dólar."

// DollarClient reads Argentine exchange quotes from dolarapi.com.
type DollarClient struct {
	http    *http.Client
	baseURL string
}

type DollarOption func(*DollarClient)

func WithDollarBaseURL(u string) DollarOption {
	return func(c *DollarClient) { c.baseURL = u }
}

func NewDollarClient(opts ...DollarOption) *DollarClient {
	c := &DollarClient{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://dolarapi.com",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type dollarQuote struct {
	Nombre string  `json:"nombre"`
	Compra float64 `json:"compra"`
	Venta  float64 `json:"venta"`
}

// Quotes returns the formatted quote block. Only the Oficial, Blue and
// MEP/Bolsa rows are surfaced; the API returns more.
func (c *DollarClient) Quotes(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/dolares", nil)
	if err != nil {
		return dollarFallback, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return dollarFallback, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return dollarFallback, fmt.Errorf("dolarapi status %d", resp.StatusCode)
	}

	var quotes []dollarQuote
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return dollarFallback, err
	}

	var b strings.Builder
	b.WriteString("💵 *Cotización del Dólar:*\n")
	for _, q := range quotes {
		switch q.Nombre {
		case "Oficial":
			fmt.Fprintf(&b, "  • Oficial: $%.0f / $%.0f\n", q.Compra, q.Venta)
		case "Blue":
			fmt.Fprintf(&b, "  • Blue: $%.0f / $%.0f\n", q.Compra, q.Venta)
		case "MEP", "Bolsa":
			fmt.Fprintf(&b, "  • MEP: $%.0f / $%.0f\n", q.Compra, q.Venta)
		}
	}
	return b.String(), nil
}
