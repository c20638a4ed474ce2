package wizard

import (
	"context"
	"fmt"

	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/quote"
)

// Service steps shared by every service type.
const (
	ServiceStepType Step = iota + 1
	ServiceStepAssets
)

// IT support steps past asset selection.
const (
	SupportStepIssueTypes Step = iota + 3
	SupportStepIssueDetails
	SupportStepReview
)

// Later steps of the asset-bulk and free-text shapes.
const (
	BulkStepDetails      Step = 3
	OtherStepDescription Step = 2
)

// serviceEditFloor is the lowest step an edit may go back to.
const serviceEditFloor = ServiceStepAssets

// ServiceStore is the part of quote.Store the service wizard drives.
type ServiceStore interface {
	State() quote.State
	GetService(id string) (models.QuoteService, bool)
	AddService(ctx context.Context, s models.QuoteService) error
	ReplaceService(ctx context.Context, s models.QuoteService) error
	SetCurrentStep(step int)
	SetCurrentServiceType(t models.ServiceType)
	SetEditingServiceID(id string)
	SetIsAddingService(v bool)
	SetServiceDraft(d *models.QuoteService)
	Back()
	Cancel()
}

// serviceMachines maps each service type to its step table.
var serviceMachines = func() map[models.ServiceType]*Machine[models.QuoteService] {
	support := newSupportMachine()
	bulk := newBulkMachine()
	other := newOtherMachine()

	m := map[models.ServiceType]*Machine[models.QuoteService]{
		models.ServiceITSupport: support,
		models.ServiceOther:     other,
	}
	for _, t := range models.AssetBulkServiceTypes {
		m[t] = bulk
	}
	return m
}()

func newSupportMachine() *Machine[models.QuoteService] {
	m := NewMachine(models.QuoteService.Clone, map[Step]string{
		ServiceStepType:         "service-type",
		ServiceStepAssets:       "asset",
		SupportStepIssueTypes:   "issue-types",
		SupportStepIssueDetails: "issue-details",
		SupportStepReview:       "review",
	})
	m.On(ServiceStepType, EventSelectServiceType, selectServiceType(ServiceStepAssets))
	m.On(ServiceStepAssets, EventNext, Transition[models.QuoteService]{
		Apply: applyServicePatch,
		Guard: quote.CheckSingleAsset,
		To:    goTo[models.QuoteService](SupportStepIssueTypes),
	})
	m.On(SupportStepIssueTypes, EventNext, Transition[models.QuoteService]{
		Apply: applyServicePatch,
		Guard: quote.CheckIssueTypes,
		To:    goTo[models.QuoteService](SupportStepIssueDetails),
	})
	m.On(SupportStepIssueDetails, EventNext, Transition[models.QuoteService]{
		Apply: func(d *models.QuoteService, ev Event) error {
			_ = applyServicePatch(d, ev)
			if d.ImpactLevel == nil {
				impact := models.ImpactMedium
				d.ImpactLevel = &impact
			}
			return nil
		},
		Guard: quote.CheckIssueDetails,
		To:    goTo[models.QuoteService](SupportStepReview),
	})
	m.On(SupportStepReview, EventSave, Transition[models.QuoteService]{
		Apply: applyServicePatch,
		Guard: quote.ValidateService,
		To:    goTo[models.QuoteService](StepDone),
	})

	for _, s := range []Step{SupportStepReview, SupportStepIssueDetails, SupportStepIssueTypes} {
		m.Back(s, Reverse[models.QuoteService]{To: goTo[models.QuoteService](s - 1)})
	}
	m.Back(ServiceStepAssets, backToTypeSelection)
	return m
}

func newBulkMachine() *Machine[models.QuoteService] {
	m := NewMachine(models.QuoteService.Clone, map[Step]string{
		ServiceStepType:   "service-type",
		ServiceStepAssets: "assets",
		BulkStepDetails:   "details",
	})
	m.On(ServiceStepType, EventSelectServiceType, selectServiceType(ServiceStepAssets))
	m.On(ServiceStepAssets, EventNext, Transition[models.QuoteService]{
		Apply: func(d *models.QuoteService, ev Event) error {
			_ = applyServicePatch(d, ev)
			pruneAssetDetails(d)
			return nil
		},
		Guard: quote.CheckAssetSelection,
		To:    goTo[models.QuoteService](BulkStepDetails),
	})
	m.On(BulkStepDetails, EventSave, Transition[models.QuoteService]{
		Apply: applyServicePatch,
		Guard: quote.ValidateService,
		To:    goTo[models.QuoteService](StepDone),
	})
	m.Back(BulkStepDetails, Reverse[models.QuoteService]{To: goTo[models.QuoteService](ServiceStepAssets)})
	m.Back(ServiceStepAssets, backToTypeSelection)
	return m
}

func newOtherMachine() *Machine[models.QuoteService] {
	m := NewMachine(models.QuoteService.Clone, map[Step]string{
		ServiceStepType:      "service-type",
		OtherStepDescription: "description",
	})
	m.On(ServiceStepType, EventSelectServiceType, selectServiceType(OtherStepDescription))
	m.On(OtherStepDescription, EventSave, Transition[models.QuoteService]{
		Apply: applyServicePatch,
		Guard: quote.ValidateService,
		To:    goTo[models.QuoteService](StepDone),
	})
	m.Back(OtherStepDescription, backToTypeSelection)
	return m
}

// selectServiceType sets the type and drops the fields of the other asset shape.
func selectServiceType(next Step) Transition[models.QuoteService] {
	return Transition[models.QuoteService]{
		Apply: func(d *models.QuoteService, ev Event) error {
			if !ev.ServiceType.Valid() {
				return fmt.Errorf("%w: %q", quote.ErrUnknownServiceType, ev.ServiceType)
			}
			if d.ServiceType != ev.ServiceType {
				clearTypeFields(d)
			}
			d.ServiceType = ev.ServiceType
			return nil
		},
		To: goTo[models.QuoteService](next),
	}
}

var backToTypeSelection = Reverse[models.QuoteService]{
	To: goTo[models.QuoteService](ServiceStepType),
	Clear: func(d *models.QuoteService) {
		d.ServiceType = ""
		clearTypeFields(d)
	},
}

func clearTypeFields(d *models.QuoteService) {
	d.AssetID = nil
	d.AssetIDs = nil
	d.IssueTypes = nil
	d.IssueDescription = nil
	d.ImpactLevel = nil
	d.BuybackDetails = nil
	d.DataWipeDetails = nil
	d.Logistics = nil
	d.Description = nil
}

// pruneAssetDetails drops per-asset details of assets no longer selected.
func pruneAssetDetails(d *models.QuoteService) {
	selected := make(map[string]bool, len(d.AssetIDs))
	for _, id := range d.AssetIDs {
		selected[id] = true
	}
	for id := range d.BuybackDetails {
		if !selected[id] {
			delete(d.BuybackDetails, id)
		}
	}
	for id := range d.DataWipeDetails {
		if !selected[id] {
			delete(d.DataWipeDetails, id)
		}
	}
}

func applyServicePatch(d *models.QuoteService, ev Event) error {
	if ev.ServicePatch != nil {
		ev.ServicePatch.Apply(d)
	}
	return nil
}

// ServiceFlow runs the add-service wizard against one user's store.
type ServiceFlow struct {
	store ServiceStore
	newID func() string
}

// NewServiceFlow binds the wizard to store. newID mints draft ids.
func NewServiceFlow(store ServiceStore, newID func() string) *ServiceFlow {
	return &ServiceFlow{store: store, newID: newID}
}

// Fire applies ev with the same failure contract as ProductFlow.Fire.
func (f *ServiceFlow) Fire(ctx context.Context, ev Event) error {
	st := f.store.State()
	if st.IsAddingProduct {
		return fmt.Errorf("%w: %s while a product is being drafted", ErrInvalidTransition, ev.Type)
	}

	switch ev.Type {
	case EventStart:
		f.reset()
		d := f.newDraft()
		f.store.SetServiceDraft(&d)
		f.store.SetIsAddingService(true)
		return nil

	case EventStartEdit:
		s, ok := f.store.GetService(ev.ID)
		if !ok {
			return fmt.Errorf("%w: service %s", ErrDraftNotFound, ev.ID)
		}
		f.store.SetServiceDraft(&s)
		f.store.SetEditingServiceID(s.ID)
		f.store.SetCurrentServiceType(s.ServiceType)
		f.store.SetCurrentStep(int(serviceEditFloor))
		f.store.SetIsAddingService(true)
		return nil

	case EventUpdate:
		d := f.draft(st)
		if ev.ServicePatch != nil {
			ev.ServicePatch.Apply(&d)
		}
		f.store.SetServiceDraft(&d)
		return nil

	case EventCancel:
		f.reset()
		f.store.Cancel()
		return nil

	case EventBack:
		f.back(st)
		return nil
	}

	d := f.draft(st)
	kind := d.ServiceType
	if ev.Type == EventSelectServiceType {
		kind = ev.ServiceType
	}
	m, ok := serviceMachines[kind]
	if !ok {
		if ev.Type == EventSelectServiceType {
			return fmt.Errorf("%w: %w: %q", ErrStepIncomplete, quote.ErrUnknownServiceType, kind)
		}
		return fmt.Errorf("%w: %s before a service type is selected", ErrInvalidTransition, ev.Type)
	}

	to, d, err := m.Fire(Step(st.CurrentStep), d, ev)
	if err != nil {
		return err
	}
	if to == StepDone {
		return f.commit(ctx, st, d)
	}
	f.store.SetServiceDraft(&d)
	f.store.SetCurrentServiceType(d.ServiceType)
	f.store.SetCurrentStep(int(to))
	f.store.SetIsAddingService(true)
	return nil
}

// CanProceed reports whether the current step's forward action is enabled.
func (f *ServiceFlow) CanProceed() bool {
	st := f.store.State()
	step := Step(st.CurrentStep)
	if step == ServiceStepType {
		return true
	}
	d := f.draft(st)
	m, ok := serviceMachines[d.ServiceType]
	return ok && m.CanFire(step, d)
}

// StepName names the current step for the draft's service type.
func (f *ServiceFlow) StepName() string {
	st := f.store.State()
	m, ok := serviceMachines[f.draft(st).ServiceType]
	if !ok {
		m = serviceMachines[models.ServiceOther]
	}
	return m.Name(Step(st.CurrentStep))
}

// TotalSteps is the step count of the draft's service type, or 1 before a
// type is chosen.
func (f *ServiceFlow) TotalSteps() int {
	m, ok := serviceMachines[f.draft(f.store.State()).ServiceType]
	if !ok {
		return 1
	}
	return m.Steps()
}

func (f *ServiceFlow) back(st quote.State) {
	step := Step(st.CurrentStep)
	if step == ServiceStepType {
		f.reset()
		f.store.Back()
		return
	}
	if st.EditingServiceID != "" && step <= serviceEditFloor {
		f.reset()
		f.store.Cancel()
		return
	}
	d := f.draft(st)
	m, ok := serviceMachines[d.ServiceType]
	if !ok {
		return
	}
	to, d, ok := m.Reverse(step, d)
	if !ok {
		return
	}
	f.store.SetServiceDraft(&d)
	f.store.SetCurrentServiceType(d.ServiceType)
	f.store.SetCurrentStep(int(to))
}

func (f *ServiceFlow) commit(ctx context.Context, st quote.State, d models.QuoteService) error {
	var err error
	if st.EditingServiceID != "" {
		d.ID = st.EditingServiceID
		err = f.store.ReplaceService(ctx, d)
	} else {
		err = f.store.AddService(ctx, d)
	}
	f.reset()
	if err != nil {
		return fmt.Errorf("persist service: %w", err)
	}
	return nil
}

func (f *ServiceFlow) reset() {
	f.store.SetCurrentStep(int(ServiceStepType))
	f.store.SetCurrentServiceType("")
	f.store.SetEditingServiceID("")
	f.store.SetIsAddingService(false)
	f.store.SetServiceDraft(nil)
}

func (f *ServiceFlow) draft(st quote.State) models.QuoteService {
	if st.ServiceDraft != nil {
		return *st.ServiceDraft
	}
	return f.newDraft()
}

func (f *ServiceFlow) newDraft() models.QuoteService {
	return models.QuoteService{ID: f.newID()}
}
