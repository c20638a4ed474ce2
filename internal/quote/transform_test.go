package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/fleetdesk_api/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestTransformProduct_Success(t *testing.T) {
	p := sampleProduct("p1")
	p.RequiredDeliveryDate = ptr("2025-03-14T00:00:00.000Z")
	p.DeviceEnrollment = ptr(true)

	out, err := TransformProductToBackendFormat(p)
	require.NoError(t, err)

	assert.Equal(t, "computer", out.Category)
	assert.Equal(t, "windows", out.OperatingSystem)
	assert.Equal(t, "AR", out.Country)
	assert.Equal(t, "2025-03-14", out.DeliveryDate)
	assert.True(t, out.ExtendedWarranty)
	assert.Equal(t, 2, out.ExtendedWarrantyYears)
	assert.True(t, out.DeviceEnrollment)
}

func TestTransformProduct_WarrantyRequiresYears(t *testing.T) {
	for _, years := range []*int{nil, ptr(0)} {
		p := sampleProduct("p1")
		p.ExtendedWarranty = &models.ExtendedWarranty{Enabled: true, ExtraYears: years}

		_, err := TransformProductToBackendFormat(p)
		assert.ErrorIs(t, err, ErrWarrantyYearsRequired)
	}

	p := sampleProduct("p1")
	p.ExtendedWarranty = &models.ExtendedWarranty{Enabled: false}
	_, err := TransformProductToBackendFormat(p)
	assert.NoError(t, err)
}

func TestTransformProduct_Quantity(t *testing.T) {
	for _, qty := range []int{0, -1} {
		p := sampleProduct("p1")
		p.Quantity = qty
		_, err := TransformProductToBackendFormat(p)
		require.Error(t, err)
		assert.EqualError(t, err, "quantity must be a positive integer")
	}
}

func TestTransformProduct_InvalidDates(t *testing.T) {
	for _, date := range []string{"14/03/2025", "2025-3-14", "2025-02-30", "tomorrow", "20250314"} {
		p := sampleProduct("p1")
		p.RequiredDeliveryDate = ptr(date)

		_, err := TransformProductToBackendFormat(p)
		require.Error(t, err, date)
		assert.ErrorIs(t, err, ErrInvalidDate)
		assert.Contains(t, err.Error(), "Invalid date format")
	}
}

func TestNormalizeDate_StripsTime(t *testing.T) {
	for _, in := range []string{"2025-01-02", "2025-01-02T10:00:00Z", "2025-01-02 10:00"} {
		got, err := NormalizeDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, "2025-01-02", got)
	}
}

func TestTransformProduct_Country(t *testing.T) {
	p := sampleProduct("p1")
	p.Country = ""
	_, err := TransformProductToBackendFormat(p)
	assert.ErrorIs(t, err, ErrCountryRequired)

	p.Country = "Narnia"
	_, err = TransformProductToBackendFormat(p)
	assert.ErrorIs(t, err, ErrUnknownCountry)
}

func TestTransformService_Buyback(t *testing.T) {
	s := models.QuoteService{
		ServiceType: models.ServiceBuyback,
		AssetIDs:    []string{"a1", "a2"},
		BuybackDetails: map[string]models.BuybackDetail{
			"a1": {GeneralFunctionality: "works"},
		},
	}
	_, err := TransformServiceToBackendFormat(s)
	assert.ErrorIs(t, err, ErrBuybackFunctionality)

	s.BuybackDetails["a2"] = models.BuybackDetail{GeneralFunctionality: "cracked screen", BatteryCycles: ptr(120)}
	s.BuybackDetails["unselected"] = models.BuybackDetail{GeneralFunctionality: "ignored"}
	out, err := TransformServiceToBackendFormat(s)
	require.NoError(t, err)
	require.Len(t, out.Buyback, 2)
	assert.Equal(t, "a1", out.Buyback[0].AssetID)
	assert.Equal(t, 120, *out.Buyback[1].BatteryCycles)
}

func TestTransformService_AssetFieldExclusivity(t *testing.T) {
	s := models.QuoteService{
		ServiceType:      models.ServiceITSupport,
		AssetID:          ptr("a1"),
		AssetIDs:         []string{"a2"},
		IssueTypes:       []string{"hardware"},
		IssueDescription: ptr("fan noise"),
	}
	_, err := TransformServiceToBackendFormat(s)
	assert.ErrorIs(t, err, ErrAssetFieldConflict)

	s.AssetIDs = nil
	out, err := TransformServiceToBackendFormat(s)
	require.NoError(t, err)
	assert.Equal(t, "a1", out.AssetID)
	assert.Equal(t, models.ImpactMedium, out.ImpactLevel)
}

func TestTransformService_Logistics(t *testing.T) {
	s := models.QuoteService{
		ServiceType: models.ServiceLogistics,
		AssetIDs:    []string{"a1"},
	}
	_, err := TransformServiceToBackendFormat(s)
	assert.ErrorIs(t, err, ErrDestinationRequired)

	s.Logistics = &models.LogisticsDetail{DestinationCountry: "Chile", DesiredPickupDate: ptr("2025-05-01T08:00")}
	out, err := TransformServiceToBackendFormat(s)
	require.NoError(t, err)
	assert.Equal(t, "CL", out.Logistics.DestinationCountry)
	assert.Equal(t, "2025-05-01", out.Logistics.PickupDate)
}

func TestBuildQuoteRequestPayload(t *testing.T) {
	_, err := BuildQuoteRequestPayload(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyQuote)

	bad := sampleProduct("p2")
	bad.Quantity = 0
	_, err = BuildQuoteRequestPayload([]models.QuoteProduct{sampleProduct("p1"), bad}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product 2")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	payload, err := BuildQuoteRequestPayload(
		[]models.QuoteProduct{sampleProduct("p1")},
		[]models.QuoteService{{ServiceType: models.ServiceOther, Description: ptr("move desks")}},
	)
	require.NoError(t, err)
	assert.Len(t, payload.Products, 1)
	assert.Len(t, payload.Services, 1)
}
