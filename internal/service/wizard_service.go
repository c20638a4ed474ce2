package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/quote"
	"github.com/GTDGit/fleetdesk_api/internal/wizard"
)

// Flow names a wizard.
type Flow string

const (
	FlowProduct Flow = "product"
	FlowService Flow = "service"
)

// ErrUnknownFlow is returned for a flow other than product or service.
var ErrUnknownFlow = errors.New("unknown wizard flow")

// StoreLoader reads persisted quote stores and binds their persisters.
type StoreLoader interface {
	Load(ctx context.Context, userID string) (quote.Snapshot, error)
	Persister(userID string) quote.Persister
}

// QuoteSubmitter turns committed drafts into a stored quote request.
type QuoteSubmitter interface {
	Submit(ctx context.Context, userID string, products []models.QuoteProduct, services []models.QuoteService) (*models.QuoteRequest, error)
}

// FlowView summarizes one wizard for the dashboard.
type FlowView struct {
	Step       int    `json:"step"`
	StepName   string `json:"stepName"`
	TotalSteps int    `json:"totalSteps"`
	CanProceed bool   `json:"canProceed"`
}

// StoreView is the full quote store of one user.
type StoreView struct {
	Products []models.QuoteProduct `json:"products"`
	Services []models.QuoteService `json:"services"`
	State    quote.State           `json:"state"`
	Product  FlowView              `json:"productFlow"`
	Service  FlowView              `json:"serviceFlow"`
}

// sessionSweepInterval is how often idle sessions are dropped.
const sessionSweepInterval = 5 * time.Minute

type session struct {
	mu      sync.Mutex
	store   *quote.Store
	product *wizard.ProductFlow
	service *wizard.ServiceFlow

	// lastUsed is guarded by WizardService.mu.
	lastUsed time.Time
}

// WizardService keeps one quote store per user, seeded from Redis on first use.
// A session idle for idleTTL is dropped and reloaded from Redis on next use,
// so it never outlives the persisted store. Zero keeps sessions forever.
type WizardService struct {
	mu              sync.Mutex
	sessions        map[string]*session
	loader          StoreLoader
	quotes          QuoteSubmitter
	persistServices bool
	idleTTL         time.Duration
	newID           func() string
	now             func() time.Time
}

// NewWizardService constructs a WizardService.
func NewWizardService(loader StoreLoader, quotes QuoteSubmitter, persistServices bool, idleTTL time.Duration) *WizardService {
	return &WizardService{
		sessions:        make(map[string]*session),
		loader:          loader,
		quotes:          quotes,
		persistServices: persistServices,
		idleTTL:         idleTTL,
		newID:           uuid.NewString,
		now:             time.Now,
	}
}

// Start drops idle sessions periodically until ctx is canceled.
func (s *WizardService) Start(ctx context.Context) {
	if s.idleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.EvictIdle(); n > 0 {
				log.Debug().Int("count", n).Msg("Evicted idle wizard sessions")
			}
		}
	}
}

// EvictIdle drops every session idle for idleTTL and returns how many went.
func (s *WizardService) EvictIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for userID, sess := range s.sessions {
		if s.idle(sess, now) {
			delete(s.sessions, userID)
			n++
		}
	}
	return n
}

// Sessions returns the number of live sessions.
func (s *WizardService) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *WizardService) idle(sess *session, now time.Time) bool {
	return s.idleTTL > 0 && now.Sub(sess.lastUsed) >= s.idleTTL
}

func (s *WizardService) session(ctx context.Context, userID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if sess, ok := s.sessions[userID]; ok {
		if !s.idle(sess, now) {
			sess.lastUsed = now
			return sess, nil
		}
		delete(s.sessions, userID)
	}

	snap, err := s.loader.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	store := quote.NewStore(s.loader.Persister(userID), snap, s.persistServices)
	store.SetOnBack(func() {
		log.Debug().Str("user_id", userID).Msg("Wizard left from first step")
	})
	store.SetOnCancel(func() {
		log.Debug().Str("user_id", userID).Msg("Wizard draft abandoned")
	})

	sess := &session{
		lastUsed: now,
		store:    store,
		product:  wizard.NewProductFlow(store, s.newID),
		service:  wizard.NewServiceFlow(store, s.newID),
	}
	s.sessions[userID] = sess
	return sess, nil
}

// Store returns the caller's store.
func (s *WizardService) Store(ctx context.Context, userID string) (*StoreView, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// Fire applies ev to the named flow. A rejected event leaves the store unchanged.
func (s *WizardService) Fire(ctx context.Context, userID string, flow Flow, ev wizard.Event) (*StoreView, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch flow {
	case FlowProduct:
		err = sess.product.Fire(ctx, ev)
	case FlowService:
		err = sess.service.Fire(ctx, ev)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFlow, flow)
	}
	if err != nil {
		return nil, err
	}
	return sess.view(), nil
}

// RemoveProduct drops a committed product.
func (s *WizardService) RemoveProduct(ctx context.Context, userID, id string) (*StoreView, error) {
	return s.mutate(ctx, userID, func(store *quote.Store) error {
		return store.RemoveProduct(ctx, id)
	})
}

// RemoveService drops a committed service.
func (s *WizardService) RemoveService(ctx context.Context, userID, id string) (*StoreView, error) {
	return s.mutate(ctx, userID, func(store *quote.Store) error {
		return store.RemoveService(ctx, id)
	})
}

// Submit sends the committed lists for quoting and clears the store.
func (s *WizardService) Submit(ctx context.Context, userID string) (*models.QuoteRequest, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	q, err := s.quotes.Submit(ctx, userID, sess.store.Products(), sess.store.Services())
	if err != nil {
		return nil, err
	}
	if err := sess.store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("quote %s submitted but store not cleared: %w", q.RequestID, err)
	}
	return q, nil
}

func (s *WizardService) mutate(ctx context.Context, userID string, fn func(*quote.Store) error) (*StoreView, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := fn(sess.store); err != nil {
		return nil, err
	}
	return sess.view(), nil
}

func (sess *session) view() *StoreView {
	st := sess.store.State()
	return &StoreView{
		Products: sess.store.Products(),
		Services: sess.store.Services(),
		State:    st,
		Product: FlowView{
			Step:       st.CurrentStep,
			StepName:   sess.product.StepName(),
			TotalSteps: sess.product.TotalSteps(),
			CanProceed: sess.product.CanProceed(),
		},
		Service: FlowView{
			Step:       st.CurrentStep,
			StepName:   sess.service.StepName(),
			TotalSteps: sess.service.TotalSteps(),
			CanProceed: sess.service.CanProceed(),
		},
	}
}
