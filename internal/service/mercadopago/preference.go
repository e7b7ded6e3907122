// Package mercadopago is a minimal client for the MercadoPago
// checkout-preference API. Only preference creation is used: the flow posts
// an item list plus payer profile and redirects the customer to the returned
// init_point.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Item struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	PictureURL  string  `json:"picture_url,omitempty"`
	CategoryID  string  `json:"category_id,omitempty"`
	Quantity    int     `json:"quantity"`
	CurrencyID  string  `json:"currency_id"`
	UnitPrice   float64 `json:"unit_price"`
}

type Phone struct {
	AreaCode string `json:"area_code,omitempty"`
	Number   string `json:"number,omitempty"`
}

type Identification struct {
	Type   string `json:"type,omitempty"`
	Number string `json:"number,omitempty"`
}

type Address struct {
	ZipCode      string `json:"zip_code,omitempty"`
	StreetName   string `json:"street_name,omitempty"`
	StreetNumber int    `json:"street_number,omitempty"`
}

type Payer struct {
	Name           string         `json:"name,omitempty"`
	Surname        string         `json:"surname,omitempty"`
	Email          string         `json:"email,omitempty"`
	Phone          Phone          `json:"phone,omitempty"`
	Identification Identification `json:"identification,omitempty"`
	Address        Address        `json:"address,omitempty"`
}

type BackURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

type PreferenceRequest struct {
	Items               []Item   `json:"items"`
	Payer               *Payer   `json:"payer,omitempty"`
	BackURLs            BackURLs `json:"back_urls"`
	ExternalReference   string   `json:"external_reference"`
	AutoReturn          string   `json:"auto_return,omitempty"`
	NotificationURL     string   `json:"notification_url,omitempty"`
	StatementDescriptor string   `json:"statement_descriptor,omitempty"`
	AdditionalInfo      string   `json:"additional_info,omitempty"`
}

type Preference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

type Client struct {
	baseURL     string
	accessToken string
	http        *http.Client
}

func NewClient(baseURL, accessToken string) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		http:        &http.Client{Timeout: 15 * time.Second},
	}
}

// CreatePreference posts the preference and returns the provider preference
// id and the hosted checkout URL.
func (c *Client) CreatePreference(ctx context.Context, pref *PreferenceRequest) (*Preference, error) {
	body, err := json.Marshal(pref)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/checkout/preferences", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mercadopago request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mercadopago returned status %d", resp.StatusCode)
	}

	var p Preference
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode preference response: %w", err)
	}
	if p.InitPoint == "" {
		return nil, fmt.Errorf("preference response missing init_point")
	}
	return &p, nil
}
