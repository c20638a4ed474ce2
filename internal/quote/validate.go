package quote

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/GTDGit/fleetdesk_api/internal/models"
)

// Validation errors raised while checking drafts or building the backend payload.
var (
	ErrInvalidQuantity          = errors.New("quantity must be a positive integer")
	ErrWarrantyYearsRequired    = errors.New("extendedWarranty.extraYears is required when extended warranty is enabled")
	ErrCountryRequired          = errors.New("country is required")
	ErrUnknownCountry           = errors.New("unknown country")
	ErrInvalidDate              = errors.New("Invalid date format")
	ErrUnknownCategory          = errors.New("unknown product category")
	ErrUnknownOperatingSystem   = errors.New("unknown operating system")
	ErrUnknownServiceType       = errors.New("unknown service type")
	ErrAssetRequired            = errors.New("assetId is required")
	ErrAssetsRequired           = errors.New("at least one asset must be selected")
	ErrAssetFieldConflict       = errors.New("exactly one of assetId and assetIds must be set")
	ErrIssueTypesRequired       = errors.New("at least one issue type must be selected")
	ErrIssueDescriptionRequired = errors.New("issue description is required")
	ErrInvalidImpactLevel       = errors.New("impact level must be low, medium or high")
	ErrBuybackFunctionality     = errors.New("general functionality is required for every buyback asset")
	ErrDestinationRequired      = errors.New("destination country is required")
	ErrDescriptionRequired      = errors.New("description is required")
	ErrEmptyQuote               = errors.New("quote must contain at least one product or service")
)

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizeDate strips a trailing time component ("T..." or " ...") and
// requires the remainder to be a real YYYY-MM-DD calendar date.
func NormalizeDate(raw string) (string, error) {
	date := strings.TrimSpace(raw)
	if i := strings.IndexAny(date, "T "); i >= 0 {
		date = date[:i]
	}
	if !isoDate.MatchString(date) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return date, nil
}

// CheckQuantity is the technical-specs step predicate.
func CheckQuantity(p *models.QuoteProduct) error {
	if p.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

// CheckWarranty requires ExtraYears when the warranty extension is enabled.
func CheckWarranty(p *models.QuoteProduct) error {
	w := p.ExtendedWarranty
	if w != nil && w.Enabled && (w.ExtraYears == nil || *w.ExtraYears < 1) {
		return ErrWarrantyYearsRequired
	}
	return nil
}

// CheckDelivery is the quote-details step predicate.
func CheckDelivery(p *models.QuoteProduct) error {
	if strings.TrimSpace(p.Country) == "" {
		return ErrCountryRequired
	}
	if err := CheckWarranty(p); err != nil {
		return err
	}
	if p.RequiredDeliveryDate != nil && *p.RequiredDeliveryDate != "" {
		if _, err := NormalizeDate(*p.RequiredDeliveryDate); err != nil {
			return err
		}
	}
	return nil
}

// ValidateProduct checks everything required before a product is committed.
func ValidateProduct(p *models.QuoteProduct) error {
	if !p.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, p.Category)
	}
	if p.OperatingSystem != nil && !models.ValidOperatingSystem(*p.OperatingSystem) {
		return fmt.Errorf("%w: %q", ErrUnknownOperatingSystem, *p.OperatingSystem)
	}
	if err := CheckQuantity(p); err != nil {
		return err
	}
	return CheckDelivery(p)
}

// CheckSingleAsset is the asset step predicate of single-asset services.
func CheckSingleAsset(s *models.QuoteService) error {
	if s.AssetID == nil || strings.TrimSpace(*s.AssetID) == "" {
		return ErrAssetRequired
	}
	return nil
}

// CheckAssetSelection is the assets step predicate of asset-bulk services.
func CheckAssetSelection(s *models.QuoteService) error {
	if len(s.AssetIDs) == 0 {
		return ErrAssetsRequired
	}
	return nil
}

// CheckIssueTypes requires at least one selected IT support issue.
func CheckIssueTypes(s *models.QuoteService) error {
	if len(s.IssueTypes) == 0 {
		return ErrIssueTypesRequired
	}
	return nil
}

// CheckIssueDetails requires a description and, when set, a known impact level.
func CheckIssueDetails(s *models.QuoteService) error {
	if s.IssueDescription == nil || strings.TrimSpace(*s.IssueDescription) == "" {
		return ErrIssueDescriptionRequired
	}
	if s.ImpactLevel != nil {
		switch *s.ImpactLevel {
		case models.ImpactLow, models.ImpactMedium, models.ImpactHigh:
		default:
			return ErrInvalidImpactLevel
		}
	}
	return nil
}

// CheckBuybackDetails requires GeneralFunctionality for every selected asset.
func CheckBuybackDetails(s *models.QuoteService) error {
	for _, id := range s.AssetIDs {
		d, ok := s.BuybackDetails[id]
		if !ok || strings.TrimSpace(d.GeneralFunctionality) == "" {
			return fmt.Errorf("%w (asset %s)", ErrBuybackFunctionality, id)
		}
	}
	return nil
}

// CheckLogistics requires a destination country.
func CheckLogistics(s *models.QuoteService) error {
	if s.Logistics == nil || strings.TrimSpace(s.Logistics.DestinationCountry) == "" {
		return ErrDestinationRequired
	}
	return nil
}

// CheckDescription is the free-text predicate of the "other" service type.
func CheckDescription(s *models.QuoteService) error {
	if s.Description == nil || strings.TrimSpace(*s.Description) == "" {
		return ErrDescriptionRequired
	}
	return nil
}

// detailChecks are the details-step predicates of asset-bulk services.
// Types without an entry have fully optional details.
var detailChecks = map[models.ServiceType]func(*models.QuoteService) error{
	models.ServiceBuyback:   CheckBuybackDetails,
	models.ServiceLogistics: CheckLogistics,
}

// CheckBulkDetails runs the details predicate for s.ServiceType, if any.
func CheckBulkDetails(s *models.QuoteService) error {
	if check, ok := detailChecks[s.ServiceType]; ok {
		return check(s)
	}
	return nil
}

// ValidateService checks everything required before a service is committed.
func ValidateService(s *models.QuoteService) error {
	switch {
	case !s.ServiceType.Valid():
		return fmt.Errorf("%w: %q", ErrUnknownServiceType, s.ServiceType)
	case s.ServiceType.UsesSingleAsset():
		if len(s.AssetIDs) > 0 {
			return ErrAssetFieldConflict
		}
		if err := CheckSingleAsset(s); err != nil {
			return err
		}
		if err := CheckIssueTypes(s); err != nil {
			return err
		}
		return CheckIssueDetails(s)
	case s.ServiceType.IsAssetBulk():
		if s.AssetID != nil {
			return ErrAssetFieldConflict
		}
		if err := CheckAssetSelection(s); err != nil {
			return err
		}
		return CheckBulkDetails(s)
	default:
		return CheckDescription(s)
	}
}
