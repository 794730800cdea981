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
)

const providerESign = "esign"

// ESignClient creates signing envelopes for service agreements.
type ESignClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewESignClient creates an e-signature client from cfg.
func NewESignClient(cfg domain.IntegrationConfig) (*ESignClient, error) {
	if cfg.ESignURL == "" {
		return nil, fmt.Errorf("e-signature url is required")
	}
	return &ESignClient{
		baseURL: strings.TrimRight(cfg.ESignURL, "/"),
		token:   cfg.ESignToken,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
	}, nil
}

type envelopeRequest struct {
	Subject   string           `json:"subject"`
	Reference string           `json:"reference"`
	Signers   []envelopeSigner `json:"signers"`
}

type envelopeSigner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateEnvelope sends an agreement out for signature and returns the
// provider's envelope ID.
func (c *ESignClient) CreateEnvelope(ctx context.Context, env domain.EnvelopePayload) (string, error) {
	if env.SignerEmail == "" {
		return "", fmt.Errorf("signer email is required")
	}
	subject := env.Subject
	if subject == "" {
		subject = "Service agreement for signature"
	}

	raw, err := json.Marshal(envelopeRequest{
		Subject:   subject,
		Reference: env.AgreementID,
		Signers:   []envelopeSigner{{Name: env.SignerName, Email: env.SignerEmail}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/envelopes", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("create envelope: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out struct {
		EnvelopeID string `json:"envelopeId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.EnvelopeID == "" {
		return "", fmt.Errorf("envelope id missing from response")
	}
	return out.EnvelopeID, nil
}
