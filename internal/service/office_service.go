package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/quote"
	"github.com/GTDGit/fleetdesk_api/internal/repository"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

// OfficeService manages tenant offices.
type OfficeService struct {
	repo    *repository.OfficeRepository
	history *HistoryService
}

// NewOfficeService constructs an OfficeService.
func NewOfficeService(repo *repository.OfficeRepository, history *HistoryService) *OfficeService {
	return &OfficeService{repo: repo, history: history}
}

// OfficeRequest is the body of office create and update calls. On update,
// nil fields keep their current value.
type OfficeRequest struct {
	Name      *string `json:"name"`
	Country   *string `json:"country"`
	City      *string `json:"city"`
	Address   *string `json:"address"`
	Phone     *string `json:"phone"`
	IsDefault *bool   `json:"isDefault"`
}

// ListOffices returns every office, default first.
func (s *OfficeService) ListOffices(ctx context.Context) ([]models.Office, error) {
	return s.repo.List(ctx)
}

// GetOffice returns one office.
func (s *OfficeService) GetOffice(ctx context.Context, id int) (*models.Office, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateOffice creates an office. Country names are stored as ISO codes.
func (s *OfficeService) CreateOffice(ctx context.Context, userID string, req *OfficeRequest) (*models.Office, error) {
	o := &models.Office{}
	if err := req.apply(o); err != nil {
		return nil, err
	}
	if o.Name == "" || o.Country == "" {
		return nil, fmt.Errorf("%w: name and country are required", utils.ErrValidation)
	}

	var rec *models.ActivityRecord
	err := s.repo.Create(ctx, o, func(tx *sqlx.Tx) error {
		var err error
		rec, err = s.history.RecordTx(ctx, tx, Entry{
			Item: models.ItemOffices, Action: models.ActionCreate, UserID: userID, NewData: o,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.history.Publish(ctx, rec)
	log.Info().Int("office_id", o.ID).Str("country", o.Country).Msg("Office created")
	return o, nil
}

// UpdateOffice applies req to an office.
func (s *OfficeService) UpdateOffice(ctx context.Context, userID string, id int, req *OfficeRequest) (*models.Office, error) {
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	after := *before
	if err := req.apply(&after); err != nil {
		return nil, err
	}

	var rec *models.ActivityRecord
	err = s.repo.Update(ctx, &after, func(tx *sqlx.Tx) error {
		var err error
		rec, err = s.history.RecordTx(ctx, tx, Entry{
			Item: models.ItemOffices, Action: models.ActionUpdate, UserID: userID, OldData: before, NewData: &after,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.history.Publish(ctx, rec)
	return &after, nil
}

// DeleteOffice removes an office. The oldest remaining office becomes the
// default when the default is deleted.
func (s *OfficeService) DeleteOffice(ctx context.Context, userID string, id int) error {
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var rec *models.ActivityRecord
	err = s.repo.Delete(ctx, id, func(tx *sqlx.Tx) error {
		var err error
		rec, err = s.history.RecordTx(ctx, tx, Entry{
			Item: models.ItemOffices, Action: models.ActionDelete, UserID: userID, OldData: before,
		})
		return err
	})
	if err != nil {
		return err
	}
	s.history.Publish(ctx, rec)
	return nil
}

func (req *OfficeRequest) apply(o *models.Office) error {
	if req.Name != nil {
		o.Name = strings.TrimSpace(*req.Name)
	}
	if req.Country != nil {
		code, ok := quote.CountryISO(*req.Country)
		if !ok {
			return fmt.Errorf("%w %q", quote.ErrUnknownCountry, *req.Country)
		}
		o.Country = code
	}
	if req.City != nil {
		o.City = strings.TrimSpace(*req.City)
	}
	if req.Address != nil {
		o.Address = strings.TrimSpace(*req.Address)
	}
	if req.Phone != nil {
		o.Phone = emptyToNil(req.Phone)
	}
	if req.IsDefault != nil {
		o.IsDefault = *req.IsDefault
	}
	return nil
}
