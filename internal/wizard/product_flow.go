package wizard

import (
	"context"
	"fmt"

	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/quote"
)

// Add-product steps.
const (
	ProductStepCategory Step = iota + 1
	ProductStepOS
	ProductStepSpecs
	ProductStepDetails
)

// ProductStore is the part of quote.Store the product wizard drives.
type ProductStore interface {
	State() quote.State
	GetProduct(id string) (models.QuoteProduct, bool)
	AddProduct(ctx context.Context, p models.QuoteProduct) error
	ReplaceProduct(ctx context.Context, p models.QuoteProduct) error
	SetCurrentStep(step int)
	SetCurrentCategory(c models.ProductCategory)
	SetEditingProductID(id string)
	SetIsAddingProduct(v bool)
	SetProductDraft(d *models.QuoteProduct)
	Back()
	Cancel()
}

var productMachine = newProductMachine()

func newProductMachine() *Machine[models.QuoteProduct] {
	m := NewMachine(models.QuoteProduct.Clone, map[Step]string{
		ProductStepCategory: "category",
		ProductStepOS:       "operating-system",
		ProductStepSpecs:    "technical-specs",
		ProductStepDetails:  "quote-details",
	})

	m.On(ProductStepCategory, EventSelectCategory, Transition[models.QuoteProduct]{
		Apply: func(d *models.QuoteProduct, ev Event) error {
			if !ev.Category.Valid() {
				return fmt.Errorf("%w: %q", quote.ErrUnknownCategory, ev.Category)
			}
			d.Category = ev.Category
			if ev.Category == models.CategoryMonitor {
				d.OperatingSystem = nil
			}
			return nil
		},
		To: func(d *models.QuoteProduct) Step {
			if d.Category == models.CategoryMonitor {
				return ProductStepSpecs
			}
			return ProductStepOS
		},
	})
	m.On(ProductStepOS, EventSelectOS, Transition[models.QuoteProduct]{
		Apply: func(d *models.QuoteProduct, ev Event) error {
			if !models.ValidOperatingSystem(ev.OperatingSystem) {
				return fmt.Errorf("%w: %q", quote.ErrUnknownOperatingSystem, ev.OperatingSystem)
			}
			os := ev.OperatingSystem
			d.OperatingSystem = &os
			return nil
		},
		To: goTo[models.QuoteProduct](ProductStepSpecs),
	})
	m.On(ProductStepOS, EventSkipOS, Transition[models.QuoteProduct]{
		Apply: func(d *models.QuoteProduct, _ Event) error {
			d.OperatingSystem = nil
			return nil
		},
		To: goTo[models.QuoteProduct](ProductStepSpecs),
	})
	m.On(ProductStepSpecs, EventNext, Transition[models.QuoteProduct]{
		Apply: applyProductPatch,
		Guard: quote.CheckQuantity,
		To:    goTo[models.QuoteProduct](ProductStepDetails),
	})
	m.On(ProductStepDetails, EventSave, Transition[models.QuoteProduct]{
		Apply: applyProductPatch,
		Guard: quote.ValidateProduct,
		To:    goTo[models.QuoteProduct](StepDone),
	})

	m.Back(ProductStepOS, Reverse[models.QuoteProduct]{
		To: goTo[models.QuoteProduct](ProductStepCategory),
		Clear: func(d *models.QuoteProduct) {
			d.Category = ""
			d.OperatingSystem = nil
		},
	})
	m.Back(ProductStepSpecs, Reverse[models.QuoteProduct]{
		To: func(d *models.QuoteProduct) Step {
			if d.Category == "" {
				return ProductStepCategory
			}
			return ProductStepOS
		},
		Clear: func(d *models.QuoteProduct) {
			d.OperatingSystem = nil
			if d.Category == models.CategoryMonitor {
				d.Category = ""
			}
		},
	})
	m.Back(ProductStepDetails, Reverse[models.QuoteProduct]{
		To: goTo[models.QuoteProduct](ProductStepSpecs),
	})
	return m
}

func applyProductPatch(d *models.QuoteProduct, ev Event) error {
	if ev.ProductPatch != nil {
		ev.ProductPatch.Apply(d)
	}
	return nil
}

// productEditFloor is the lowest step an edit may go back to.
func productEditFloor(c models.ProductCategory) Step {
	if c == models.CategoryMonitor {
		return ProductStepSpecs
	}
	return ProductStepOS
}

// ProductFlow runs the add-product wizard against one user's store.
type ProductFlow struct {
	store ProductStore
	newID func() string
}

// NewProductFlow binds the wizard to store. newID mints draft ids.
func NewProductFlow(store ProductStore, newID func() string) *ProductFlow {
	return &ProductFlow{store: store, newID: newID}
}

// Fire applies ev. Guard and payload failures wrap ErrStepIncomplete and leave
// the store unchanged. The two wizards share one step, so every event is
// rejected with ErrInvalidTransition while a service is being drafted. A commit that fails to persist still resets the wizard
// and returns the persistence error.
func (f *ProductFlow) Fire(ctx context.Context, ev Event) error {
	st := f.store.State()
	if st.IsAddingService {
		return fmt.Errorf("%w: %s while a service is being drafted", ErrInvalidTransition, ev.Type)
	}

	switch ev.Type {
	case EventStart:
		f.reset()
		d := f.newDraft()
		f.store.SetProductDraft(&d)
		f.store.SetIsAddingProduct(true)
		return nil

	case EventStartEdit:
		p, ok := f.store.GetProduct(ev.ID)
		if !ok {
			return fmt.Errorf("%w: product %s", ErrDraftNotFound, ev.ID)
		}
		f.store.SetProductDraft(&p)
		f.store.SetEditingProductID(p.ID)
		f.store.SetCurrentCategory(p.Category)
		f.store.SetCurrentStep(int(ProductStepSpecs))
		f.store.SetIsAddingProduct(true)
		return nil

	case EventUpdate:
		d := f.draft(st)
		if ev.ProductPatch != nil {
			ev.ProductPatch.Apply(&d)
		}
		f.store.SetProductDraft(&d)
		return nil

	case EventCancel:
		f.reset()
		f.store.Cancel()
		return nil

	case EventBack:
		f.back(st)
		return nil
	}

	to, d, err := productMachine.Fire(Step(st.CurrentStep), f.draft(st), ev)
	if err != nil {
		return err
	}
	if to == StepDone {
		return f.commit(ctx, st, d)
	}
	f.store.SetProductDraft(&d)
	f.store.SetCurrentCategory(d.Category)
	f.store.SetCurrentStep(int(to))
	f.store.SetIsAddingProduct(true)
	return nil
}

// CanProceed reports whether the current step's forward action is enabled.
func (f *ProductFlow) CanProceed() bool {
	st := f.store.State()
	return productMachine.CanFire(Step(st.CurrentStep), f.draft(st))
}

// StepName names the current step.
func (f *ProductFlow) StepName() string {
	return productMachine.Name(Step(f.store.State().CurrentStep))
}

// TotalSteps is the number of product steps. Monitors skip one of them.
func (f *ProductFlow) TotalSteps() int { return productMachine.Steps() }

func (f *ProductFlow) back(st quote.State) {
	step := Step(st.CurrentStep)
	if step == ProductStepCategory {
		f.reset()
		f.store.Back()
		return
	}
	d := f.draft(st)
	if st.EditingProductID != "" && step <= productEditFloor(d.Category) {
		f.reset()
		f.store.Cancel()
		return
	}
	to, d, ok := productMachine.Reverse(step, d)
	if !ok {
		return
	}
	f.store.SetProductDraft(&d)
	f.store.SetCurrentCategory(d.Category)
	f.store.SetCurrentStep(int(to))
}

func (f *ProductFlow) commit(ctx context.Context, st quote.State, d models.QuoteProduct) error {
	var err error
	if st.EditingProductID != "" {
		d.ID = st.EditingProductID
		err = f.store.ReplaceProduct(ctx, d)
	} else {
		err = f.store.AddProduct(ctx, d)
	}
	f.reset()
	if err != nil {
		return fmt.Errorf("persist product: %w", err)
	}
	return nil
}

func (f *ProductFlow) reset() {
	f.store.SetCurrentStep(int(ProductStepCategory))
	f.store.SetCurrentCategory("")
	f.store.SetEditingProductID("")
	f.store.SetIsAddingProduct(false)
	f.store.SetProductDraft(nil)
}

func (f *ProductFlow) draft(st quote.State) models.QuoteProduct {
	if st.ProductDraft != nil {
		return *st.ProductDraft
	}
	return f.newDraft()
}

func (f *ProductFlow) newDraft() models.QuoteProduct {
	return models.QuoteProduct{ID: f.newID(), Quantity: 1}
}
