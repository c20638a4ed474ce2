package quote

import (
	"fmt"
	"strings"

	"github.com/GTDGit/fleetdesk_api/internal/models"
)

// BackendProduct is a product line in the sales-desk request format.
type BackendProduct struct {
	Category              string   `json:"category"`
	OperatingSystem       string   `json:"operatingSystem,omitempty"`
	Quantity              int      `json:"quantity"`
	Brand                 []string `json:"brand"`
	Model                 []string `json:"model"`
	Processor             []string `json:"processor,omitempty"`
	RAM                   string   `json:"ram,omitempty"`
	Storage               string   `json:"storage,omitempty"`
	ScreenSize            string   `json:"screenSize,omitempty"`
	ExtendedWarranty      bool     `json:"extendedWarranty"`
	ExtendedWarrantyYears int      `json:"extendedWarrantyYears,omitempty"`
	DeviceEnrollment      bool     `json:"deviceEnrollment"`
	OtherSpecifications   string   `json:"otherSpecifications,omitempty"`
	Country               string   `json:"country"`
	City                  string   `json:"city,omitempty"`
	DeliveryDate          string   `json:"deliveryDate,omitempty"`
	Comments              string   `json:"comments,omitempty"`
}

// BackendBuyback is the condition report of one buyback asset.
type BackendBuyback struct {
	AssetID              string `json:"assetId"`
	GeneralFunctionality string `json:"generalFunctionality"`
	BatteryCycles        *int   `json:"batteryCycles,omitempty"`
	AestheticDetails     string `json:"aestheticDetails,omitempty"`
	AdditionalComments   string `json:"additionalComments,omitempty"`
}

// BackendDataWipe is the wipe preference of one asset.
type BackendDataWipe struct {
	AssetID     string `json:"assetId"`
	WipeMethod  string `json:"wipeMethod,omitempty"`
	DesiredDate string `json:"desiredDate,omitempty"`
}

// BackendLogistics is the destination of a logistics request.
type BackendLogistics struct {
	DestinationCountry string `json:"destinationCountry"`
	DestinationCity    string `json:"destinationCity,omitempty"`
	PickupDate         string `json:"pickupDate,omitempty"`
}

// BackendService is a service request in the sales-desk request format.
type BackendService struct {
	ServiceType       string            `json:"serviceType"`
	AssetID           string            `json:"assetId,omitempty"`
	AssetIDs          []string          `json:"assetIds,omitempty"`
	IssueTypes        []string          `json:"issueTypes,omitempty"`
	IssueDescription  string            `json:"issueDescription,omitempty"`
	ImpactLevel       string            `json:"impactLevel,omitempty"`
	Buyback           []BackendBuyback  `json:"buybackDetails,omitempty"`
	DataWipe          []BackendDataWipe `json:"dataWipeDetails,omitempty"`
	Logistics         *BackendLogistics `json:"logistics,omitempty"`
	Description       string            `json:"description,omitempty"`
	RequiredDate      string            `json:"requiredDate,omitempty"`
	AdditionalDetails string            `json:"additionalDetails,omitempty"`
}

// QuoteRequestPayload is the body of a quote submission.
type QuoteRequestPayload struct {
	Products []BackendProduct `json:"products"`
	Services []BackendService `json:"services,omitempty"`
}

// TransformProductToBackendFormat validates p and converts it to the
// sales-desk format: country names become ISO codes and dates lose any time
// component.
func TransformProductToBackendFormat(p models.QuoteProduct) (BackendProduct, error) {
	if err := CheckQuantity(&p); err != nil {
		return BackendProduct{}, err
	}
	if err := CheckWarranty(&p); err != nil {
		return BackendProduct{}, err
	}
	if !p.Category.Valid() {
		return BackendProduct{}, fmt.Errorf("%w: %q", ErrUnknownCategory, p.Category)
	}
	country, err := isoCountry(p.Country)
	if err != nil {
		return BackendProduct{}, err
	}

	out := BackendProduct{
		Category:            string(p.Category),
		OperatingSystem:     deref(p.OperatingSystem),
		Quantity:            p.Quantity,
		Brand:               nonNil(p.Brands),
		Model:               nonNil(p.Models),
		Processor:           p.Processors,
		RAM:                 deref(p.RAM),
		Storage:             deref(p.Storage),
		ScreenSize:          deref(p.ScreenSize),
		DeviceEnrollment:    p.DeviceEnrollment != nil && *p.DeviceEnrollment,
		OtherSpecifications: deref(p.OtherSpecifications),
		Country:             country,
		City:                deref(p.City),
		Comments:            deref(p.AdditionalComments),
	}
	if w := p.ExtendedWarranty; w != nil && w.Enabled {
		out.ExtendedWarranty = true
		out.ExtendedWarrantyYears = *w.ExtraYears
	}
	if out.DeliveryDate, err = optionalDate(p.RequiredDeliveryDate); err != nil {
		return BackendProduct{}, err
	}
	return out, nil
}

// TransformServiceToBackendFormat validates s and converts it to the sales-desk format.
func TransformServiceToBackendFormat(s models.QuoteService) (BackendService, error) {
	if err := ValidateService(&s); err != nil {
		return BackendService{}, err
	}

	out := BackendService{
		ServiceType:       string(s.ServiceType),
		AssetID:           deref(s.AssetID),
		AssetIDs:          s.AssetIDs,
		IssueTypes:        s.IssueTypes,
		IssueDescription:  deref(s.IssueDescription),
		ImpactLevel:       deref(s.ImpactLevel),
		Description:       deref(s.Description),
		AdditionalDetails: deref(s.AdditionalDetails),
	}
	if s.ServiceType.UsesSingleAsset() && out.ImpactLevel == "" {
		out.ImpactLevel = models.ImpactMedium
	}

	// Detail maps are keyed by asset id; only selected assets are sent, in selection order.
	if s.ServiceType == models.ServiceBuyback {
		for _, id := range s.AssetIDs {
			d := s.BuybackDetails[id]
			out.Buyback = append(out.Buyback, BackendBuyback{
				AssetID:              id,
				GeneralFunctionality: strings.TrimSpace(d.GeneralFunctionality),
				BatteryCycles:        d.BatteryCycles,
				AestheticDetails:     deref(d.AestheticDetails),
				AdditionalComments:   deref(d.AdditionalComments),
			})
		}
	}
	if s.ServiceType == models.ServiceDataWipe {
		for _, id := range s.AssetIDs {
			d, ok := s.DataWipeDetails[id]
			if !ok {
				continue
			}
			date, err := optionalDate(d.DesiredDate)
			if err != nil {
				return BackendService{}, err
			}
			out.DataWipe = append(out.DataWipe, BackendDataWipe{AssetID: id, WipeMethod: deref(d.WipeMethod), DesiredDate: date})
		}
	}
	if s.ServiceType == models.ServiceLogistics {
		country, err := isoCountry(s.Logistics.DestinationCountry)
		if err != nil {
			return BackendService{}, err
		}
		pickup, err := optionalDate(s.Logistics.DesiredPickupDate)
		if err != nil {
			return BackendService{}, err
		}
		out.Logistics = &BackendLogistics{
			DestinationCountry: country,
			DestinationCity:    deref(s.Logistics.DestinationCity),
			PickupDate:         pickup,
		}
	}

	var err error
	if out.RequiredDate, err = optionalDate(s.RequiredDate); err != nil {
		return BackendService{}, err
	}
	return out, nil
}

// BuildQuoteRequestPayload transforms every committed draft. The first failing
// draft aborts the build and is named in the error.
func BuildQuoteRequestPayload(products []models.QuoteProduct, services []models.QuoteService) (QuoteRequestPayload, error) {
	if len(products) == 0 && len(services) == 0 {
		return QuoteRequestPayload{}, ErrEmptyQuote
	}

	payload := QuoteRequestPayload{Products: make([]BackendProduct, 0, len(products))}
	for i, p := range products {
		bp, err := TransformProductToBackendFormat(p)
		if err != nil {
			return QuoteRequestPayload{}, fmt.Errorf("product %d (%s): %w", i+1, p.Category, err)
		}
		payload.Products = append(payload.Products, bp)
	}
	for i, s := range services {
		bs, err := TransformServiceToBackendFormat(s)
		if err != nil {
			return QuoteRequestPayload{}, fmt.Errorf("service %d (%s): %w", i+1, s.ServiceType, err)
		}
		payload.Services = append(payload.Services, bs)
	}
	return payload, nil
}

func isoCountry(country string) (string, error) {
	if strings.TrimSpace(country) == "" {
		return "", ErrCountryRequired
	}
	code, ok := CountryISO(country)
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownCountry, country)
	}
	return code, nil
}

func optionalDate(raw *string) (string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return "", nil
	}
	return NormalizeDate(*raw)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
