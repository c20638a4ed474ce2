package wizard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/quote"
)

func newServiceFixture(t *testing.T) (*quote.Store, *ServiceFlow) {
	t.Helper()
	store := quote.NewStore(nil, quote.Snapshot{}, true)
	return store, NewServiceFlow(store, sequentialIDs())
}

func strPtr(s string) *string { return &s }

func servicePatch(fn func(p *models.QuoteServicePatch)) *models.QuoteServicePatch {
	p := &models.QuoteServicePatch{}
	fn(p)
	return p
}

func TestServiceFlow_ITSupport(t *testing.T) {
	ctx := context.Background()
	store, flow := newServiceFixture(t)

	require.NoError(t, flow.Fire(ctx, Event{Type: EventStart}))
	require.NoError(t, flow.Fire(ctx, Event{Type: EventSelectServiceType, ServiceType: models.ServiceITSupport}))
	assert.Equal(t, "asset", flow.StepName())
	assert.Equal(t, 5, flow.TotalSteps())
	assert.False(t, flow.CanProceed())

	err := flow.Fire(ctx, Event{Type: EventNext})
	require.ErrorIs(t, err, ErrStepIncomplete)
	assert.ErrorIs(t, err, quote.ErrAssetRequired)

	require.NoError(t, flow.Fire(ctx, Event{Type: EventNext, ServicePatch: servicePatch(func(p *models.QuoteServicePatch) {
		p.AssetID = strPtr("asset-1")
	})}))
	assert.Equal(t, "issue-types", flow.StepName())

	err = flow.Fire(ctx, Event{Type: EventNext})
	assert.ErrorIs(t, err, quote.ErrIssueTypesRequired)

	require.NoError(t, flow.Fire(ctx, Event{Type: EventNext, ServicePatch: servicePatch(func(p *models.QuoteServicePatch) {
		p.IssueTypes = &[]string{"hardware"}
	})}))
	err = flow.Fire(ctx, Event{Type: EventNext})
	assert.ErrorIs(t, err, quote.ErrIssueDescriptionRequired)

	require.NoError(t, flow.Fire(ctx, Event{Type: EventNext, ServicePatch: servicePatch(func(p *models.QuoteServicePatch) {
		p.IssueDescription = strPtr("keyboard stopped working")
	})}))
	st := store.State()
	assert.Equal(t, int(SupportStepReview), st.CurrentStep)
	require.NotNil(t, st.ServiceDraft.ImpactLevel)
	assert.Equal(t, models.ImpactMedium, *st.ServiceDraft.ImpactLevel)
	assert.True(t, flow.CanProceed())

	require.NoError(t, flow.Fire(ctx, Event{Type: EventSave}))
	services := store.Services()
	require.Len(t, services, 1)
	assert.Equal(t, "asset-1", *services[0].AssetID)
	assert.Nil(t, services[0].AssetIDs)
	assert.Equal(t, 1, store.State().CurrentStep)
}

func TestServiceFlow_BuybackRequiresFunctionalityPerAsset(t *testing.T) {
	ctx := context.Background()
	store, flow := newServiceFixture(t)

	require.NoError(t, flow.Fire(ctx, Event{Type: EventSelectServiceType, ServiceType: models.ServiceBuyback}))
	assert.Equal(t, "assets", flow.StepName())
	assert.Equal(t, 3, flow.TotalSteps())

	err := flow.Fire(ctx, Event{Type: EventNext})
	assert.ErrorIs(t, err, quote.ErrAssetsRequired)

	require.NoError(t, flow.Fire(ctx, Event{Type: EventNext, ServicePatch: servicePatch(func(p *models.QuoteServicePatch) {
		p.AssetIDs = &[]string{"a1", "a2"}
	})}))
	assert.Equal(t, "details", flow.StepName())

	require.NoError(t, flow.Fire(ctx, Event{Type: EventUpdate, ServicePatch: servicePatch(func(p *models.QuoteServicePatch) {
		p.BuybackDetails = map[string]models.BuybackDetail{"a1": {GeneralFunctionality: "works"}}
	})}))
	assert.False(t, flow.CanProceed())
	err = flow.Fire(ctx, Event{Type: EventSave})
	assert.ErrorIs(t, err, quote.ErrBuybackFunctionality)

	require.NoError(t, flow.Fire(ctx, Event{Type: EventUpdate, ServicePatch: servicePatch(func(p *models.QuoteServicePatch) {
		p.BuybackDetails = map[string]models.BuybackDetail{"a2": {GeneralFunctionality: "dead pixel"}}
	})}))
	assert.True(t, flow.CanProceed())
	require.NoError(t, flow.Fire(ctx, Event{Type: EventSave}))
	require.Len(t, store.Services(), 1)
	assert.Len(t, store.Services()[0].BuybackDetails, 2)
}

func TestServiceFlow_OptionalDetails(t *testing.T) {
	ctx := context.Background()
	store, flow := newServiceFixture(t)

	require.NoError(t, flow.Fire(ctx, Event{Type: EventSelectServiceType, ServiceType: models.ServiceCleaning}))
	require.NoError(t, flow.Fire(ctx, Event{Type: EventNext, ServicePatch: servicePatch(func(p *models.QuoteServicePatch) {
		p.AssetIDs = &[]string{"a1"}
	})}))
	assert.True(t, flow.CanProceed())
	require.NoError(t, flow.Fire(ctx, Event{Type: EventSave}))
	assert.Len(t, store.Services(), 1)
}

func TestServiceFlow_OtherNeedsDescription(t *testing.T) {
	ctx := context.Background()
	store, flow := newServiceFixture(t)

	require.NoError(t, flow.Fire(ctx, Event{Type: EventSelectServiceType, ServiceType: models.ServiceOther}))
	assert.Equal(t, "description", flow.StepName())
	assert.Equal(t, 2, flow.TotalSteps())

	err := flow.Fire(ctx, Event{Type: EventSave})
	assert.ErrorIs(t, err, quote.ErrDescriptionRequired)

	require.NoError(t, flow.Fire(ctx, Event{Type: EventSave, ServicePatch: servicePatch(func(p *models.QuoteServicePatch) {
		p.Description = strPtr("relocate the server rack")
	})}))
	assert.Len(t, store.Services(), 1)
}

func TestServiceFlow_SwitchingTypeClearsAssetShape(t *testing.T) {
	ctx := context.Background()
	store, flow := newServiceFixture(t)

	require.NoError(t, flow.Fire(ctx, Event{Type: EventUpdate, ServicePatch: servicePatch(func(p *models.QuoteServicePatch) {
		p.AssetID = strPtr("a1")
	})}))
	require.NoError(t, flow.Fire(ctx, Event{Type: EventSelectServiceType, ServiceType: models.ServiceStorage}))

	d := store.State().ServiceDraft
	assert.Nil(t, d.AssetID)
	assert.Equal(t, models.ServiceStorage, store.State().CurrentServiceType)

	require.NoError(t, flow.Fire(ctx, Event{Type: EventBack}))
	st := store.State()
	assert.Equal(t, 1, st.CurrentStep)
	assert.Empty(t, st.ServiceDraft.ServiceType)
}

func TestServiceFlow_BackAtEditFloorCancelsEdit(t *testing.T) {
	ctx := context.Background()
	store, flow := newServiceFixture(t)
	require.NoError(t, store.AddService(ctx, models.QuoteService{
		ID:          "svc-1",
		ServiceType: models.ServiceDataWipe,
		AssetIDs:    []string{"a1"},
	}))

	cancelled := false
	store.SetOnCancel(func() { cancelled = true })

	require.NoError(t, flow.Fire(ctx, Event{Type: EventStartEdit, ID: "svc-1"}))
	assert.Equal(t, int(ServiceStepAssets), store.State().CurrentStep)
	assert.Equal(t, "svc-1", store.State().EditingServiceID)

	require.NoError(t, flow.Fire(ctx, Event{Type: EventBack}))
	assert.True(t, cancelled)
	assert.Empty(t, store.State().EditingServiceID)
	assert.Len(t, store.Services(), 1)
}

func TestServiceFlow_Rejections(t *testing.T) {
	ctx := context.Background()
	store, flow := newServiceFixture(t)

	err := flow.Fire(ctx, Event{Type: EventSelectServiceType, ServiceType: "painting"})
	assert.ErrorIs(t, err, ErrStepIncomplete)
	assert.ErrorIs(t, err, quote.ErrUnknownServiceType)

	err = flow.Fire(ctx, Event{Type: EventNext})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 1, store.State().CurrentStep)
}

func TestServiceFlow_ReachingDetailsPrunesDeselectedAssets(t *testing.T) {
	ctx := context.Background()
	store, flow := newServiceFixture(t)

	require.NoError(t, flow.Fire(ctx, Event{Type: EventSelectServiceType, ServiceType: models.ServiceBuyback}))
	require.NoError(t, flow.Fire(ctx, Event{Type: EventNext, ServicePatch: servicePatch(func(p *models.QuoteServicePatch) {
		p.AssetIDs = &[]string{"a1", "a2"}
	})}))
	require.NoError(t, flow.Fire(ctx, Event{Type: EventUpdate, ServicePatch: servicePatch(func(p *models.QuoteServicePatch) {
		p.BuybackDetails = map[string]models.BuybackDetail{
			"a1": {GeneralFunctionality: "works"},
			"a2": {GeneralFunctionality: "cracked screen"},
		}
	})}))

	require.NoError(t, flow.Fire(ctx, Event{Type: EventBack}))
	assert.Equal(t, "assets", flow.StepName())
	require.NoError(t, flow.Fire(ctx, Event{Type: EventNext, ServicePatch: servicePatch(func(p *models.QuoteServicePatch) {
		p.AssetIDs = &[]string{"a2"}
	})}))

	d := store.State().ServiceDraft
	require.NotNil(t, d)
	assert.Equal(t, []string{"a2"}, d.AssetIDs)
	require.Len(t, d.BuybackDetails, 1)
	assert.Equal(t, "cracked screen", d.BuybackDetails["a2"].GeneralFunctionality)
}

func TestServiceFlow_ExclusiveWithProductFlow(t *testing.T) {
	ctx := context.Background()
	store := quote.NewStore(nil, quote.Snapshot{}, true)
	products := NewProductFlow(store, sequentialIDs())
	services := NewServiceFlow(store, sequentialIDs())

	require.NoError(t, products.Fire(ctx, Event{Type: EventStart}))
	require.NoError(t, products.Fire(ctx, Event{Type: EventSelectCategory, Category: models.CategoryComputer}))
	require.NoError(t, products.Fire(ctx, Event{Type: EventSelectOS, OperatingSystem: models.OSWindows}))
	require.NoError(t, products.Fire(ctx, Event{Type: EventNext, ProductPatch: intPatch(2)}))
	before := store.State()
	require.Equal(t, int(ProductStepDetails), before.CurrentStep)

	for _, ev := range []Event{
		{Type: EventStart},
		{Type: EventSelectServiceType, ServiceType: models.ServiceBuyback},
		{Type: EventBack},
		{Type: EventCancel},
	} {
		err := services.Fire(ctx, ev)
		assert.ErrorIs(t, err, ErrInvalidTransition, string(ev.Type))
	}
	assert.Equal(t, before, store.State())
	assert.Equal(t, "quote-details", products.StepName())

	country := "Argentina"
	require.NoError(t, products.Fire(ctx, Event{Type: EventSave, ProductPatch: &models.QuoteProductPatch{Country: &country}}))
	require.Len(t, store.Products(), 1)

	require.NoError(t, services.Fire(ctx, Event{Type: EventSelectServiceType, ServiceType: models.ServiceBuyback}))
	assert.True(t, store.State().IsAddingService)

	err := products.Fire(ctx, Event{Type: EventBack})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	st := store.State()
	assert.Equal(t, int(ServiceStepAssets), st.CurrentStep)
	assert.Equal(t, models.ServiceBuyback, st.CurrentServiceType)
}
