package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agritrace.io/provenance/internal/domain"
	apperrors "agritrace.io/provenance/internal/pkg/errors"
	"agritrace.io/provenance/internal/pkg/logger"
	"agritrace.io/provenance/internal/store"
	"agritrace.io/provenance/internal/verify"
)

func TestMain(m *testing.M) {
	_ = logger.Init("error", "json")
	os.Exit(m.Run())
}

// recordingNotifier counts refresh triggers per product.
type recordingNotifier struct {
	mu       sync.Mutex
	products []string
}

func (n *recordingNotifier) PublishRefresh(_ context.Context, productID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.products = append(n.products, productID)
	return nil
}

func (n *recordingNotifier) Close() error { return nil }

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.products)
}

// stubResolver resolves every waypoint except those whose address is in
// the miss set.
type stubResolver struct {
	miss map[string]bool
}

func (r *stubResolver) ResolveAll(_ context.Context, waypoints []domain.JourneyWaypoint) []domain.JourneyWaypoint {
	out := make([]domain.JourneyWaypoint, len(waypoints))
	copy(out, waypoints)
	for i := range out {
		if out[i].Coordinates != nil || r.miss[out[i].Address] {
			continue
		}
		out[i].Coordinates = &domain.Coordinates{Lat: float64(i), Lng: float64(i)}
	}
	return out
}

// stubOracle returns a canned attestation or error.
type stubOracle struct {
	att *verify.Attestation
	err error
}

func (o *stubOracle) Attest(context.Context, string) (*verify.Attestation, error) {
	return o.att, o.err
}

func seedProduct(st *store.MockStore, id, stage string) {
	st.Seed(&domain.ProvenanceState{
		Product:      domain.ProductRef{ID: id, Name: "Arabica Lot 7", Origin: "Nyeri, Kenya"},
		CurrentStage: stage,
	})
}

func TestUpdateStage_BlankStageRejected(t *testing.T) {
	mock := store.NewMockStore()
	seedProduct(mock, "prod-1", domain.StagePlanting)
	notifier := &recordingNotifier{}
	uc := NewUpdateStageUseCase(mock, notifier)

	_, err := uc.Execute(context.Background(), "prod-1", UpdateStageInput{Stage: "   "})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, 0, notifier.count())

	state, err := mock.FetchProvenance(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Empty(t, state.Events)
}

func TestUpdateStage_CatalogStageAdvances(t *testing.T) {
	mock := store.NewMockStore()
	seedProduct(mock, "prod-1", domain.StageHarvesting)
	notifier := &recordingNotifier{}
	uc := NewUpdateStageUseCase(mock, notifier)

	out, err := uc.Execute(context.Background(), "prod-1", UpdateStageInput{
		Stage:       "Shipped",
		Description: "Container loaded at Mombasa",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Event)
	assert.Equal(t, domain.StageShipped, out.State.CurrentStage)
	require.Len(t, out.State.Events, 1)
	assert.Equal(t, "Container loaded at Mombasa", out.State.Events[0].Description)
	assert.Equal(t, 1, notifier.count())
}

func TestUpdateStage_FreeTextStageKeepsPointer(t *testing.T) {
	mock := store.NewMockStore()
	seedProduct(mock, "prod-1", domain.StageHarvesting)
	uc := NewUpdateStageUseCase(mock, &recordingNotifier{})

	out, err := uc.Execute(context.Background(), "prod-1", UpdateStageInput{Stage: "fermenting"})
	require.NoError(t, err)
	assert.Equal(t, domain.StageHarvesting, out.State.CurrentStage)
	require.Len(t, out.State.Events, 1)
	assert.Equal(t, "fermenting", out.State.Events[0].Stage)
}

func TestUpdateStage_UnknownProduct(t *testing.T) {
	mock := store.NewMockStore()
	notifier := &recordingNotifier{}
	uc := NewUpdateStageUseCase(mock, notifier)

	_, err := uc.Execute(context.Background(), "ghost", UpdateStageInput{Stage: "planting"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 0, notifier.count())
}

func TestSaveJourney_EmptyBatchNeverReachesStore(t *testing.T) {
	mock := store.NewMockStore()
	seedProduct(mock, "prod-1", domain.StagePlanting)
	notifier := &recordingNotifier{}
	uc := NewSaveJourneyUseCase(mock, &stubResolver{}, notifier)

	_, err := uc.Execute(context.Background(), "prod-1", SaveJourneyInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, 0, mock.SaveJourneyCalls)
	assert.Equal(t, 0, notifier.count())
}

func TestSaveJourney_ResolvesAndPersists(t *testing.T) {
	mock := store.NewMockStore()
	seedProduct(mock, "prod-1", domain.StagePlanting)
	notifier := &recordingNotifier{}
	resolver := &stubResolver{miss: map[string]bool{"###invalid###": true}}
	uc := NewSaveJourneyUseCase(mock, resolver, notifier)

	out, err := uc.Execute(context.Background(), "prod-1", SaveJourneyInput{
		Waypoints: []domain.JourneyWaypoint{
			{Name: "Kiama Farm", Type: domain.WaypointFarm, Address: "Nyeri, Kenya", Date: time.Now()},
			{Name: "Mystery Shed", Type: domain.WaypointProcessing, Address: "###invalid###", Date: time.Now()},
			{Name: "City Market", Type: domain.WaypointRetail, Address: "Nairobi, Kenya", Date: time.Now()},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Outcomes, 3)

	assert.True(t, out.Outcomes[0].Resolved)
	assert.False(t, out.Outcomes[1].Resolved)
	assert.Nil(t, out.Outcomes[1].Coordinates)
	assert.True(t, out.Outcomes[2].Resolved)

	require.Len(t, out.State.Journey, 3)
	assert.NotNil(t, out.State.Journey[0].Coordinates)
	assert.Nil(t, out.State.Journey[1].Coordinates)
	assert.Equal(t, "Mystery Shed", out.State.Journey[1].Name)
	assert.Equal(t, 1, notifier.count())
}

func TestSaveJourney_StoreFailureSkipsRefresh(t *testing.T) {
	mock := store.NewMockStore()
	seedProduct(mock, "prod-1", domain.StagePlanting)
	mock.ForceError(apperrors.Unavailable(apperrors.CodeStoreUnavailable, "store down"))
	notifier := &recordingNotifier{}
	uc := NewSaveJourneyUseCase(mock, &stubResolver{}, notifier)

	_, err := uc.Execute(context.Background(), "prod-1", SaveJourneyInput{
		Waypoints: []domain.JourneyWaypoint{
			{Name: "Kiama Farm", Address: "Nyeri, Kenya"},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	assert.Equal(t, 0, notifier.count())
}

func TestSaveJourney_ConcurrentSavesSerialized(t *testing.T) {
	mock := store.NewMockStore()
	seedProduct(mock, "prod-1", domain.StagePlanting)
	uc := NewSaveJourneyUseCase(mock, &stubResolver{}, &recordingNotifier{})

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), "prod-1", SaveJourneyInput{
				Waypoints: []domain.JourneyWaypoint{
					{Name: fmt.Sprintf("Stop %d", i), Address: "Nyeri, Kenya"},
				},
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Last writer wins, but the journey is always a complete batch.
	state, err := mock.FetchProvenance(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Len(t, state.Journey, 1)
	assert.Equal(t, n, mock.SaveJourneyCalls)
}

func TestRequestVerification_Positive(t *testing.T) {
	mock := store.NewMockStore()
	seedProduct(mock, "prod-1", domain.StageDelivered)
	notifier := &recordingNotifier{}
	gw := verify.NewGateway(&stubOracle{att: &verify.Attestation{Verified: true, ProofRef: "0xabc"}}, mock)
	uc := NewRequestVerificationUseCase(gw, mock, notifier)

	out, err := uc.Execute(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.True(t, out.Result.Verified)
	assert.Equal(t, "0xabc", out.Result.ProofRef)
	assert.True(t, out.State.Verified)
	assert.Equal(t, "0xabc", out.State.ProofRef)
	assert.Equal(t, 1, notifier.count())
}

func TestRequestVerification_NegativeStillRefreshes(t *testing.T) {
	mock := store.NewMockStore()
	seedProduct(mock, "prod-1", domain.StageDelivered)
	notifier := &recordingNotifier{}
	gw := verify.NewGateway(&stubOracle{att: &verify.Attestation{Verified: false}}, mock)
	uc := NewRequestVerificationUseCase(gw, mock, notifier)

	_, err := uc.Execute(context.Background(), "prod-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrVerificationFailed)
	assert.Equal(t, 1, notifier.count())

	state, fetchErr := mock.FetchProvenance(context.Background(), "prod-1")
	require.NoError(t, fetchErr)
	assert.False(t, state.Verified)
}

func TestRequestVerification_OracleDownTriggersNothing(t *testing.T) {
	mock := store.NewMockStore()
	seedProduct(mock, "prod-1", domain.StageDelivered)
	notifier := &recordingNotifier{}
	gw := verify.NewGateway(&stubOracle{err: errors.New("connection refused")}, mock)
	uc := NewRequestVerificationUseCase(gw, mock, notifier)

	_, err := uc.Execute(context.Background(), "prod-1")
	require.Error(t, err)
	assert.Equal(t, 0, notifier.count())
}

func TestGetProvenance_DerivesViews(t *testing.T) {
	mock := store.NewMockStore()
	seedProduct(mock, "prod-1", domain.StageShipped)
	uc := NewGetProvenanceUseCase(mock)

	out, err := uc.Execute(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageShipped, out.State.CurrentStage)
	assert.False(t, out.Progress.Empty())
	assert.Equal(t, 88, out.Progress.Percent)
	assert.Empty(t, out.Timeline.Stops)
}

func TestGetProvenance_UnknownStageDegrades(t *testing.T) {
	mock := store.NewMockStore()
	seedProduct(mock, "prod-1", "fermenting")
	uc := NewGetProvenanceUseCase(mock)

	out, err := uc.Execute(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.True(t, out.Progress.Empty())
	assert.Equal(t, "fermenting", out.State.CurrentStage)
}

func TestGetProvenance_Report(t *testing.T) {
	mock := store.NewMockStore()
	seedProduct(mock, "prod-1", domain.StageHarvesting)
	uc := NewGetProvenanceUseCase(mock)

	report, err := uc.CompileReport(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "prod-1", report.Product.ID)
	assert.Equal(t, 25, report.Progress.Percent)
}

func TestGetProvenance_UnknownProduct(t *testing.T) {
	uc := NewGetProvenanceUseCase(store.NewMockStore())
	_, err := uc.Execute(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
