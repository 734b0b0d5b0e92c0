// Package verify requests attestation from the external provenance
// verification oracle and folds the result back into the store.
//
// The ledger behind the oracle is opaque to this core: only the boolean
// outcome and the proof reference are recorded.
package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"agritrace.io/provenance/internal/config"
	apperrors "agritrace.io/provenance/internal/pkg/errors"
)

// Attestation is the oracle's answer for one product.
type Attestation struct {
	Verified bool   `json:"verified"`
	ProofRef string `json:"proof_ref"`
}

// Oracle is the external attestation service.
type Oracle interface {
	Attest(ctx context.Context, productID string) (*Attestation, error)
}

// HTTPOracle talks to the oracle over HTTP.
type HTTPOracle struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHTTPOracle creates an oracle client from configuration.
func NewHTTPOracle(cfg config.OracleConfig) *HTTPOracle {
	return &HTTPOracle{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// Attest implements Oracle.
func (o *HTTPOracle) Attest(ctx context.Context, productID string) (*Attestation, error) {
	body, err := json.Marshal(map[string]string{"product_id": productID})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeOracleUnavailable, "encode attestation request", 502)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/attestations", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeOracleUnavailable, "build attestation request", 502)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeOracleUnavailable,
			"verification oracle unreachable", 502).WithRetryable()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(
			fmt.Errorf("oracle returned %d", resp.StatusCode),
			apperrors.CodeOracleUnavailable, "verification oracle error", 502).WithRetryable()
	}

	var att Attestation
	if err := json.NewDecoder(resp.Body).Decode(&att); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeOracleUnavailable, "decode attestation response", 502)
	}
	return &att, nil
}
