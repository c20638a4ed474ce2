// Package quote holds the per-user quote store and the conversion of drafted
// products and services into the request body sent to the sales desk.
package quote

import (
	"context"
	"sync"

	"github.com/GTDGit/fleetdesk_api/internal/models"
)

// Snapshot is the persisted subset of a Store: the committed lists only.
type Snapshot struct {
	Products []models.QuoteProduct `json:"products"`
	Services []models.QuoteService `json:"services,omitempty"`
}

// Persister writes committed lists to durable storage.
type Persister interface {
	Persist(ctx context.Context, snap Snapshot) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, snap Snapshot) error

// Persist calls f.
func (f PersisterFunc) Persist(ctx context.Context, snap Snapshot) error { return f(ctx, snap) }

// State is the transient wizard state. It is never persisted.
type State struct {
	CurrentStep        int                    `json:"currentStep"`
	CurrentCategory    models.ProductCategory `json:"currentCategory,omitempty"`
	CurrentServiceType models.ServiceType     `json:"currentServiceType,omitempty"`
	EditingProductID   string                 `json:"editingProductId,omitempty"`
	EditingServiceID   string                 `json:"editingServiceId,omitempty"`
	IsAddingProduct    bool                   `json:"isAddingProduct"`
	IsAddingService    bool                   `json:"isAddingService"`
	ProductDraft       *models.QuoteProduct   `json:"productDraft,omitempty"`
	ServiceDraft       *models.QuoteService   `json:"serviceDraft,omitempty"`
}

func initialState() State { return State{CurrentStep: 1} }

// Store owns the committed quote lists and the wizard state of one user.
// It performs no validation; callers validate before committing.
type Store struct {
	mu       sync.RWMutex
	products []models.QuoteProduct
	services []models.QuoteService
	state    State
	onBack   func()
	onCancel func()

	persister       Persister
	persistServices bool
}

// NewStore builds a Store seeded with a previously persisted snapshot.
// When persistServices is false only products are written to the persister.
func NewStore(persister Persister, initial Snapshot, persistServices bool) *Store {
	s := &Store{
		state:           initialState(),
		persister:       persister,
		persistServices: persistServices,
	}
	for _, p := range initial.Products {
		s.products = append(s.products, p.Clone())
	}
	for _, svc := range initial.Services {
		s.services = append(s.services, svc.Clone())
	}
	return s
}

// Products returns a copy of the committed products.
func (s *Store) Products() []models.QuoteProduct {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.QuoteProduct, len(s.products))
	for i, p := range s.products {
		out[i] = p.Clone()
	}
	return out
}

// Services returns a copy of the committed services.
func (s *Store) Services() []models.QuoteService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.QuoteService, len(s.services))
	for i, svc := range s.services {
		out[i] = svc.Clone()
	}
	return out
}

// AddProduct appends a completed product.
func (s *Store) AddProduct(ctx context.Context, p models.QuoteProduct) error {
	s.mu.Lock()
	s.products = append(s.products, p.Clone())
	snap := s.snapshotLocked()
	s.mu.Unlock()
	return s.persist(ctx, snap)
}

// UpdateProduct merges patch into the product with the given id. Unknown ids are ignored.
func (s *Store) UpdateProduct(ctx context.Context, id string, patch models.QuoteProductPatch) error {
	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == id {
			patch.Apply(&s.products[i])
		}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	return s.persist(ctx, snap)
}

// ReplaceProduct swaps the product with p.ID for p. Unknown ids are ignored.
func (s *Store) ReplaceProduct(ctx context.Context, p models.QuoteProduct) error {
	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p.Clone()
		}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	return s.persist(ctx, snap)
}

// RemoveProduct drops the product with the given id.
func (s *Store) RemoveProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	kept := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.products = kept
	snap := s.snapshotLocked()
	s.mu.Unlock()
	return s.persist(ctx, snap)
}

// GetProduct looks a committed product up by id.
func (s *Store) GetProduct(id string) (models.QuoteProduct, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return models.QuoteProduct{}, false
}

// AddService appends a completed service request.
func (s *Store) AddService(ctx context.Context, svc models.QuoteService) error {
	s.mu.Lock()
	s.services = append(s.services, svc.Clone())
	snap := s.snapshotLocked()
	s.mu.Unlock()
	return s.persist(ctx, snap)
}

// UpdateService merges patch into the service with the given id. Unknown ids are ignored.
func (s *Store) UpdateService(ctx context.Context, id string, patch models.QuoteServicePatch) error {
	s.mu.Lock()
	for i := range s.services {
		if s.services[i].ID == id {
			patch.Apply(&s.services[i])
		}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	return s.persist(ctx, snap)
}

// ReplaceService swaps the service with svc.ID for svc. Unknown ids are ignored.
func (s *Store) ReplaceService(ctx context.Context, svc models.QuoteService) error {
	s.mu.Lock()
	for i := range s.services {
		if s.services[i].ID == svc.ID {
			s.services[i] = svc.Clone()
		}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	return s.persist(ctx, snap)
}

// RemoveService drops the service with the given id.
func (s *Store) RemoveService(ctx context.Context, id string) error {
	s.mu.Lock()
	kept := s.services[:0]
	for _, svc := range s.services {
		if svc.ID != id {
			kept = append(kept, svc)
		}
	}
	s.services = kept
	snap := s.snapshotLocked()
	s.mu.Unlock()
	return s.persist(ctx, snap)
}

// GetService looks a committed service up by id.
func (s *Store) GetService(id string) (models.QuoteService, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, svc := range s.services {
		if svc.ID == id {
			return svc.Clone(), true
		}
	}
	return models.QuoteService{}, false
}

// Clear empties both committed lists and resets the wizard.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.products = nil
	s.services = nil
	s.state = initialState()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	return s.persist(ctx, snap)
}

// State returns a copy of the transient wizard state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.ProductDraft != nil {
		d := st.ProductDraft.Clone()
		st.ProductDraft = &d
	}
	if st.ServiceDraft != nil {
		d := st.ServiceDraft.Clone()
		st.ServiceDraft = &d
	}
	return st
}

// ResetTransient restores the wizard state to its initial value.
func (s *Store) ResetTransient() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = initialState()
}

func (s *Store) SetCurrentStep(step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentStep = step
}

func (s *Store) SetCurrentCategory(c models.ProductCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentCategory = c
}

func (s *Store) SetCurrentServiceType(t models.ServiceType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentServiceType = t
}

func (s *Store) SetEditingProductID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.EditingProductID = id
}

func (s *Store) SetEditingServiceID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.EditingServiceID = id
}

func (s *Store) SetIsAddingProduct(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsAddingProduct = v
}

func (s *Store) SetIsAddingService(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsAddingService = v
}

// SetProductDraft stores a copy of d as the in-progress product; nil discards it.
func (s *Store) SetProductDraft(d *models.QuoteProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d == nil {
		s.state.ProductDraft = nil
		return
	}
	c := d.Clone()
	s.state.ProductDraft = &c
}

// SetServiceDraft stores a copy of d as the in-progress service; nil discards it.
func (s *Store) SetServiceDraft(d *models.QuoteService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d == nil {
		s.state.ServiceDraft = nil
		return
	}
	c := d.Clone()
	s.state.ServiceDraft = &c
}

// SetOnBack registers the callback fired when the wizard is left from its first step.
func (s *Store) SetOnBack(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onBack = fn
}

// SetOnCancel registers the callback fired when an edit or draft is abandoned.
func (s *Store) SetOnCancel(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCancel = fn
}

// Back fires the OnBack callback, if any.
func (s *Store) Back() {
	s.mu.RLock()
	fn := s.onBack
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Cancel fires the OnCancel callback, if any.
func (s *Store) Cancel() {
	s.mu.RLock()
	fn := s.onCancel
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{Products: make([]models.QuoteProduct, len(s.products))}
	for i, p := range s.products {
		snap.Products[i] = p.Clone()
	}
	if s.persistServices {
		snap.Services = make([]models.QuoteService, len(s.services))
		for i, svc := range s.services {
			snap.Services[i] = svc.Clone()
		}
	}
	return snap
}

func (s *Store) persist(ctx context.Context, snap Snapshot) error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Persist(ctx, snap)
}
