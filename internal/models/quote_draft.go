package models

import "maps"

// ProductCategory enumerates the product categories offered in the quote wizard.
type ProductCategory string

const (
	CategoryComputer      ProductCategory = "computer"
	CategoryMonitor       ProductCategory = "monitor"
	CategoryAudio         ProductCategory = "audio"
	CategoryPeripherals   ProductCategory = "peripherals"
	CategoryMerchandising ProductCategory = "merchandising"
	CategoryPhone         ProductCategory = "phone"
	CategoryTablet        ProductCategory = "tablet"
	CategoryFurniture     ProductCategory = "furniture"
	CategoryOther         ProductCategory = "other"
)

var productCategories = map[ProductCategory]bool{
	CategoryComputer: true, CategoryMonitor: true, CategoryAudio: true,
	CategoryPeripherals: true, CategoryMerchandising: true, CategoryPhone: true,
	CategoryTablet: true, CategoryFurniture: true, CategoryOther: true,
}

// Valid reports whether c is a known category.
func (c ProductCategory) Valid() bool { return productCategories[c] }

// Operating systems selectable on the OS step.
const (
	OSMacOS   = "macos"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// ValidOperatingSystem reports whether os is one of the selectable systems.
func ValidOperatingSystem(os string) bool {
	return os == OSMacOS || os == OSWindows || os == OSLinux
}

// ExtendedWarranty is the optional warranty extension of a product line.
type ExtendedWarranty struct {
	Enabled    bool `json:"enabled"`
	ExtraYears *int `json:"extraYears,omitempty"`
}

// QuoteProduct is a product line item drafted in the quote wizard.
type QuoteProduct struct {
	ID                   string            `json:"id"`
	Category             ProductCategory   `json:"category"`
	OperatingSystem      *string           `json:"operatingSystem,omitempty"`
	Quantity             int               `json:"quantity"`
	Brands               []string          `json:"brands"`
	Models               []string          `json:"models"`
	Processors           []string          `json:"processors,omitempty"`
	RAM                  *string           `json:"ram,omitempty"`
	Storage              *string           `json:"storage,omitempty"`
	ScreenSize           *string           `json:"screenSize,omitempty"`
	ExtendedWarranty     *ExtendedWarranty `json:"extendedWarranty,omitempty"`
	DeviceEnrollment     *bool             `json:"deviceEnrollment,omitempty"`
	OtherSpecifications  *string           `json:"otherSpecifications,omitempty"`
	Country              string            `json:"country"`
	City                 *string           `json:"city,omitempty"`
	RequiredDeliveryDate *string           `json:"requiredDeliveryDate,omitempty"`
	AdditionalComments   *string           `json:"additionalComments,omitempty"`
}

// Clone returns a deep copy of p.
func (p QuoteProduct) Clone() QuoteProduct {
	out := p
	out.OperatingSystem = clonePtr(p.OperatingSystem)
	out.Brands = cloneSlice(p.Brands)
	out.Models = cloneSlice(p.Models)
	out.Processors = cloneSlice(p.Processors)
	out.RAM = clonePtr(p.RAM)
	out.Storage = clonePtr(p.Storage)
	out.ScreenSize = clonePtr(p.ScreenSize)
	if p.ExtendedWarranty != nil {
		w := *p.ExtendedWarranty
		w.ExtraYears = clonePtr(p.ExtendedWarranty.ExtraYears)
		out.ExtendedWarranty = &w
	}
	out.DeviceEnrollment = clonePtr(p.DeviceEnrollment)
	out.OtherSpecifications = clonePtr(p.OtherSpecifications)
	out.City = clonePtr(p.City)
	out.RequiredDeliveryDate = clonePtr(p.RequiredDeliveryDate)
	out.AdditionalComments = clonePtr(p.AdditionalComments)
	return out
}

// QuoteProductPatch is a partial update of a QuoteProduct. Nil fields are left untouched.
type QuoteProductPatch struct {
	Category             *ProductCategory  `json:"category,omitempty"`
	OperatingSystem      *string           `json:"operatingSystem,omitempty"`
	Quantity             *int              `json:"quantity,omitempty"`
	Brands               *[]string         `json:"brands,omitempty"`
	Models               *[]string         `json:"models,omitempty"`
	Processors           *[]string         `json:"processors,omitempty"`
	RAM                  *string           `json:"ram,omitempty"`
	Storage              *string           `json:"storage,omitempty"`
	ScreenSize           *string           `json:"screenSize,omitempty"`
	ExtendedWarranty     *ExtendedWarranty `json:"extendedWarranty,omitempty"`
	DeviceEnrollment     *bool             `json:"deviceEnrollment,omitempty"`
	OtherSpecifications  *string           `json:"otherSpecifications,omitempty"`
	Country              *string           `json:"country,omitempty"`
	City                 *string           `json:"city,omitempty"`
	RequiredDeliveryDate *string           `json:"requiredDeliveryDate,omitempty"`
	AdditionalComments   *string           `json:"additionalComments,omitempty"`
}

// Apply merges the non-nil fields of patch into p.
func (patch QuoteProductPatch) Apply(p *QuoteProduct) {
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.OperatingSystem != nil {
		p.OperatingSystem = clonePtr(patch.OperatingSystem)
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	if patch.Brands != nil {
		p.Brands = cloneSlice(*patch.Brands)
	}
	if patch.Models != nil {
		p.Models = cloneSlice(*patch.Models)
	}
	if patch.Processors != nil {
		p.Processors = cloneSlice(*patch.Processors)
	}
	if patch.RAM != nil {
		p.RAM = clonePtr(patch.RAM)
	}
	if patch.Storage != nil {
		p.Storage = clonePtr(patch.Storage)
	}
	if patch.ScreenSize != nil {
		p.ScreenSize = clonePtr(patch.ScreenSize)
	}
	if patch.ExtendedWarranty != nil {
		w := *patch.ExtendedWarranty
		w.ExtraYears = clonePtr(patch.ExtendedWarranty.ExtraYears)
		p.ExtendedWarranty = &w
	}
	if patch.DeviceEnrollment != nil {
		p.DeviceEnrollment = clonePtr(patch.DeviceEnrollment)
	}
	if patch.OtherSpecifications != nil {
		p.OtherSpecifications = clonePtr(patch.OtherSpecifications)
	}
	if patch.Country != nil {
		p.Country = *patch.Country
	}
	if patch.City != nil {
		p.City = clonePtr(patch.City)
	}
	if patch.RequiredDeliveryDate != nil {
		p.RequiredDeliveryDate = clonePtr(patch.RequiredDeliveryDate)
	}
	if patch.AdditionalComments != nil {
		p.AdditionalComments = clonePtr(patch.AdditionalComments)
	}
}

// ServiceType enumerates the service requests the wizard can draft.
type ServiceType string

const (
	ServiceITSupport            ServiceType = "it-support"
	ServiceEnrollment           ServiceType = "enrollment"
	ServiceBuyback              ServiceType = "buyback"
	ServiceDataWipe             ServiceType = "data-wipe"
	ServiceCleaning             ServiceType = "cleaning"
	ServiceDonations            ServiceType = "donations"
	ServiceStorage              ServiceType = "storage"
	ServiceDestructionRecycling ServiceType = "destruction-recycling"
	ServiceLogistics            ServiceType = "logistics"
	ServiceOther                ServiceType = "other"
)

// AssetBulkServiceTypes share the type / multi-asset / details flow.
var AssetBulkServiceTypes = []ServiceType{
	ServiceEnrollment, ServiceBuyback, ServiceDataWipe, ServiceCleaning,
	ServiceDonations, ServiceStorage, ServiceDestructionRecycling, ServiceLogistics,
}

// Valid reports whether t is a known service type.
func (t ServiceType) Valid() bool {
	return t == ServiceITSupport || t == ServiceOther || t.IsAssetBulk()
}

// IsAssetBulk reports whether t selects several assets at once.
func (t ServiceType) IsAssetBulk() bool {
	for _, bulk := range AssetBulkServiceTypes {
		if t == bulk {
			return true
		}
	}
	return false
}

// UsesSingleAsset reports whether t targets exactly one asset via AssetID.
func (t ServiceType) UsesSingleAsset() bool { return t == ServiceITSupport }

// Impact levels of an IT support issue.
const (
	ImpactLow    = "low"
	ImpactMedium = "medium"
	ImpactHigh   = "high"
)

// BuybackDetail describes the condition of one asset offered for buyback.
type BuybackDetail struct {
	GeneralFunctionality string  `json:"generalFunctionality"`
	BatteryCycles        *int    `json:"batteryCycles,omitempty"`
	AestheticDetails     *string `json:"aestheticDetails,omitempty"`
	AdditionalComments   *string `json:"additionalComments,omitempty"`
}

// DataWipeDetail holds per-asset wipe preferences.
type DataWipeDetail struct {
	WipeMethod  *string `json:"wipeMethod,omitempty"`
	DesiredDate *string `json:"desiredDate,omitempty"`
}

// LogisticsDetail is the destination of a logistics request.
type LogisticsDetail struct {
	DestinationCountry string  `json:"destinationCountry"`
	DestinationCity    *string `json:"destinationCity,omitempty"`
	DesiredPickupDate  *string `json:"desiredPickupDate,omitempty"`
}

// QuoteService is a service request drafted in the quote wizard. Which fields
// are populated depends on ServiceType: AssetID for single-asset types,
// AssetIDs for asset-bulk types.
type QuoteService struct {
	ID                string                    `json:"id"`
	ServiceType       ServiceType               `json:"serviceType"`
	AssetID           *string                   `json:"assetId,omitempty"`
	AssetIDs          []string                  `json:"assetIds,omitempty"`
	IssueTypes        []string                  `json:"issueTypes,omitempty"`
	IssueDescription  *string                   `json:"issueDescription,omitempty"`
	ImpactLevel       *string                   `json:"impactLevel,omitempty"`
	BuybackDetails    map[string]BuybackDetail  `json:"buybackDetails,omitempty"`
	DataWipeDetails   map[string]DataWipeDetail `json:"dataWipeDetails,omitempty"`
	Logistics         *LogisticsDetail          `json:"logistics,omitempty"`
	Description       *string                   `json:"description,omitempty"`
	RequiredDate      *string                   `json:"requiredDate,omitempty"`
	AdditionalDetails *string                   `json:"additionalDetails,omitempty"`
}

// Clone returns a deep copy of s.
func (s QuoteService) Clone() QuoteService {
	out := s
	out.AssetID = clonePtr(s.AssetID)
	out.AssetIDs = cloneSlice(s.AssetIDs)
	out.IssueTypes = cloneSlice(s.IssueTypes)
	out.IssueDescription = clonePtr(s.IssueDescription)
	out.ImpactLevel = clonePtr(s.ImpactLevel)
	if s.BuybackDetails != nil {
		out.BuybackDetails = make(map[string]BuybackDetail, len(s.BuybackDetails))
		for id, d := range s.BuybackDetails {
			d.BatteryCycles = clonePtr(d.BatteryCycles)
			d.AestheticDetails = clonePtr(d.AestheticDetails)
			d.AdditionalComments = clonePtr(d.AdditionalComments)
			out.BuybackDetails[id] = d
		}
	}
	if s.DataWipeDetails != nil {
		out.DataWipeDetails = make(map[string]DataWipeDetail, len(s.DataWipeDetails))
		for id, d := range s.DataWipeDetails {
			d.WipeMethod = clonePtr(d.WipeMethod)
			d.DesiredDate = clonePtr(d.DesiredDate)
			out.DataWipeDetails[id] = d
		}
	}
	if s.Logistics != nil {
		l := *s.Logistics
		l.DestinationCity = clonePtr(s.Logistics.DestinationCity)
		l.DesiredPickupDate = clonePtr(s.Logistics.DesiredPickupDate)
		out.Logistics = &l
	}
	out.Description = clonePtr(s.Description)
	out.RequiredDate = clonePtr(s.RequiredDate)
	out.AdditionalDetails = clonePtr(s.AdditionalDetails)
	return out
}

// QuoteServicePatch is a partial update of a QuoteService. Nil fields are left untouched.
type QuoteServicePatch struct {
	AssetID           *string                   `json:"assetId,omitempty"`
	AssetIDs          *[]string                 `json:"assetIds,omitempty"`
	IssueTypes        *[]string                 `json:"issueTypes,omitempty"`
	IssueDescription  *string                   `json:"issueDescription,omitempty"`
	ImpactLevel       *string                   `json:"impactLevel,omitempty"`
	BuybackDetails    map[string]BuybackDetail  `json:"buybackDetails,omitempty"`
	DataWipeDetails   map[string]DataWipeDetail `json:"dataWipeDetails,omitempty"`
	Logistics         *LogisticsDetail          `json:"logistics,omitempty"`
	Description       *string                   `json:"description,omitempty"`
	RequiredDate      *string                   `json:"requiredDate,omitempty"`
	AdditionalDetails *string                   `json:"additionalDetails,omitempty"`
}

// Apply merges the non-nil fields of patch into s. Per-asset detail maps are
// merged key by key.
func (patch QuoteServicePatch) Apply(s *QuoteService) {
	if patch.AssetID != nil {
		s.AssetID = clonePtr(patch.AssetID)
	}
	if patch.AssetIDs != nil {
		s.AssetIDs = cloneSlice(*patch.AssetIDs)
	}
	if patch.IssueTypes != nil {
		s.IssueTypes = cloneSlice(*patch.IssueTypes)
	}
	if patch.IssueDescription != nil {
		s.IssueDescription = clonePtr(patch.IssueDescription)
	}
	if patch.ImpactLevel != nil {
		s.ImpactLevel = clonePtr(patch.ImpactLevel)
	}
	if patch.BuybackDetails != nil {
		if s.BuybackDetails == nil {
			s.BuybackDetails = make(map[string]BuybackDetail, len(patch.BuybackDetails))
		}
		maps.Copy(s.BuybackDetails, patch.BuybackDetails)
	}
	if patch.DataWipeDetails != nil {
		if s.DataWipeDetails == nil {
			s.DataWipeDetails = make(map[string]DataWipeDetail, len(patch.DataWipeDetails))
		}
		maps.Copy(s.DataWipeDetails, patch.DataWipeDetails)
	}
	if patch.Logistics != nil {
		l := *patch.Logistics
		s.Logistics = &l
	}
	if patch.Description != nil {
		s.Description = clonePtr(patch.Description)
	}
	if patch.RequiredDate != nil {
		s.RequiredDate = clonePtr(patch.RequiredDate)
	}
	if patch.AdditionalDetails != nil {
		s.AdditionalDetails = clonePtr(patch.AdditionalDetails)
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
