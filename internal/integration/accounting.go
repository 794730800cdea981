package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

const providerAccounting = "accounting"

// AccountingClient pushes invoices and contacts to a Xero-style
// accounting API. Access tokens are refreshed from the configured refresh
// token as they expire.
type AccountingClient struct {
	baseURL  string
	tenantID string
	client   *http.Client
}

// NewAccountingClient creates an accounting client from cfg.
func NewAccountingClient(ctx context.Context, cfg domain.IntegrationConfig) (*AccountingClient, error) {
	if cfg.AccountingURL == "" {
		return nil, fmt.Errorf("accounting url is required")
	}
	if cfg.TokenURL == "" || cfg.ClientID == "" || cfg.RefreshToken == "" {
		return nil, fmt.Errorf("accounting oauth2 credentials are required")
	}

	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	// Token refreshes use the client stored in ctx.
	base := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport), Timeout: cfg.Timeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	source := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	return &AccountingClient{
		baseURL:  strings.TrimRight(cfg.AccountingURL, "/"),
		tenantID: cfg.AccountingTenantID,
		client: &http.Client{
			Transport: &oauth2.Transport{
				Source: source,
				Base:   otelhttp.NewTransport(http.DefaultTransport),
			},
			Timeout: cfg.Timeout,
		},
	}, nil
}

type xeroContact struct {
	ContactID     string `json:"ContactID,omitempty"`
	ContactNumber string `json:"ContactNumber,omitempty"`
	Name          string `json:"Name,omitempty"`
	EmailAddress  string `json:"EmailAddress,omitempty"`
	AccountNumber string `json:"AccountNumber,omitempty"`
}

type xeroLineItem struct {
	Description string  `json:"Description"`
	Quantity    float64 `json:"Quantity"`
	UnitAmount  float64 `json:"UnitAmount"`
	ItemCode    string  `json:"ItemCode"`
}

type xeroInvoice struct {
	InvoiceID       string         `json:"InvoiceID,omitempty"`
	Type            string         `json:"Type"`
	Contact         xeroContact    `json:"Contact"`
	Date            string         `json:"Date"`
	Reference       string         `json:"Reference"`
	LineAmountTypes string         `json:"LineAmountTypes"`
	Status          string         `json:"Status"`
	LineItems       []xeroLineItem `json:"LineItems"`
}

// SyncInvoice creates an accounts-receivable invoice for a shift and
// returns the provider's invoice ID.
func (c *AccountingClient) SyncInvoice(ctx context.Context, inv domain.InvoicePayload) (string, error) {
	body := map[string][]xeroInvoice{
		"Invoices": {{
			Type:            "ACCREC",
			Contact:         xeroContact{ContactNumber: inv.ParticipantID},
			Date:            inv.ServiceDate.Format("2006-01-02"),
			Reference:       inv.ShiftID,
			LineAmountTypes: "NoTax",
			Status:          "DRAFT",
			LineItems: []xeroLineItem{{
				Description: inv.Description,
				Quantity:    inv.Quantity,
				UnitAmount:  inv.UnitAmount,
				ItemCode:    inv.ServiceItemCode,
			}},
		}},
	}

	var out struct {
		Invoices []xeroInvoice `json:"Invoices"`
	}
	if err := c.post(ctx, "/Invoices", body, &out); err != nil {
		return "", err
	}
	if len(out.Invoices) == 0 || out.Invoices[0].InvoiceID == "" {
		return "", fmt.Errorf("invoice id missing from response")
	}
	return out.Invoices[0].InvoiceID, nil
}

// SyncContact creates or updates the participant contact and returns the
// provider's contact ID.
func (c *AccountingClient) SyncContact(ctx context.Context, contact domain.ContactPayload) (string, error) {
	body := map[string][]xeroContact{
		"Contacts": {{
			ContactNumber: contact.ParticipantID,
			Name:          contact.Name,
			EmailAddress:  contact.Email,
			AccountNumber: contact.NDISNumber,
		}},
	}

	var out struct {
		Contacts []xeroContact `json:"Contacts"`
	}
	if err := c.post(ctx, "/Contacts", body, &out); err != nil {
		return "", err
	}
	if len(out.Contacts) == 0 || out.Contacts[0].ContactID == "" {
		return "", fmt.Errorf("contact id missing from response")
	}
	return out.Contacts[0].ContactID, nil
}

func (c *AccountingClient) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.tenantID != "" {
		req.Header.Set("Xero-tenant-id", c.tenantID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
