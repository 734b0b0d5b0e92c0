package verify

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	apperrors "agritrace.io/provenance/internal/pkg/errors"
	"agritrace.io/provenance/internal/pkg/logger"
	"agritrace.io/provenance/internal/store"
)

// Result is the outcome of one verification request.
type Result struct {
	Verified bool   `json:"verified"`
	ProofRef string `json:"proof_ref,omitempty"`
}

// Gateway drives the per-product verification state machine:
// Unverified -> Verifying -> Verified(proofRef) | Unverified.
//
// Requests for the same product are single-flight: concurrent calls
// coalesce onto one oracle request and one persisted proof reference,
// never two racing. Each completed call is independent; nothing is cached
// across calls.
type Gateway struct {
	oracle Oracle
	store  store.Store
	group  singleflight.Group
}

// NewGateway creates a verification gateway.
func NewGateway(oracle Oracle, st store.Store) *Gateway {
	return &Gateway{oracle: oracle, store: st}
}

// RequestVerification asks the oracle to attest the product and persists
// the outcome. A transport failure persists nothing; an explicit negative
// result (or a positive one missing its proof reference) records the
// product as unverified. A false proof reference is never stored.
func (g *Gateway) RequestVerification(ctx context.Context, productID string) (*Result, error) {
	v, err, shared := g.group.Do(productID, func() (interface{}, error) {
		return g.verify(ctx, productID)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("Verification request coalesced",
			zap.String("product_id", productID))
	}
	return v.(*Result), nil
}

func (g *Gateway) verify(ctx context.Context, productID string) (*Result, error) {
	att, err := g.oracle.Attest(ctx, productID)
	if err != nil {
		logger.Warn("Verification oracle call failed",
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return nil, err
	}

	if !att.Verified || att.ProofRef == "" {
		// Explicit negative, or a positive answer with no evidence: the
		// product returns to unverified either way.
		if err := g.store.SetVerification(ctx, productID, false, ""); err != nil {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.ErrVerificationFailed,
			apperrors.CodeVerificationFailed, "product could not be verified", 422)
	}

	if err := g.store.SetVerification(ctx, productID, true, att.ProofRef); err != nil {
		return nil, err
	}

	logger.Info("Product verified",
		zap.String("product_id", productID),
		zap.String("proof_ref", att.ProofRef),
	)
	return &Result{Verified: true, ProofRef: att.ProofRef}, nil
}

// CurrentVerification reads the last persisted verification state.
func (g *Gateway) CurrentVerification(ctx context.Context, productID string) (*Result, error) {
	st, err := g.store.FetchProvenance(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &Result{Verified: st.Verified, ProofRef: st.ProofRef}, nil
}
