package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestQuoteProductClone_IsDeep(t *testing.T) {
	p := QuoteProduct{
		ID:               "p1",
		Category:         CategoryComputer,
		OperatingSystem:  strPtr(OSWindows),
		Quantity:         2,
		Brands:           []string{"Lenovo"},
		Models:           []string{"T14"},
		ExtendedWarranty: &ExtendedWarranty{Enabled: true, ExtraYears: intPtr(2)},
		Country:          "AR",
	}

	c := p.Clone()
	assert.Equal(t, p, c)

	c.Brands[0] = "Dell"
	*c.OperatingSystem = OSLinux
	*c.ExtendedWarranty.ExtraYears = 3
	assert.Equal(t, "Lenovo", p.Brands[0])
	assert.Equal(t, OSWindows, *p.OperatingSystem)
	assert.Equal(t, 2, *p.ExtendedWarranty.ExtraYears)
}

func TestQuoteProductPatch_Apply(t *testing.T) {
	p := QuoteProduct{ID: "p1", Category: CategoryComputer, Quantity: 1, Country: "AR"}
	qty := 5
	brands := []string{"Apple"}

	QuoteProductPatch{Quantity: &qty, Brands: &brands}.Apply(&p)

	assert.Equal(t, 5, p.Quantity)
	assert.Equal(t, []string{"Apple"}, p.Brands)
	assert.Equal(t, "AR", p.Country)
	assert.Equal(t, CategoryComputer, p.Category)
}

func TestQuoteServicePatch_MergesDetailMaps(t *testing.T) {
	s := QuoteService{
		ServiceType:    ServiceBuyback,
		BuybackDetails: map[string]BuybackDetail{"a1": {GeneralFunctionality: "works"}},
	}

	QuoteServicePatch{
		BuybackDetails: map[string]BuybackDetail{"a2": {GeneralFunctionality: "broken screen"}},
	}.Apply(&s)

	assert.Len(t, s.BuybackDetails, 2)
	assert.Equal(t, "works", s.BuybackDetails["a1"].GeneralFunctionality)
}

func TestServiceType_Classification(t *testing.T) {
	assert.True(t, ServiceITSupport.UsesSingleAsset())
	assert.False(t, ServiceITSupport.IsAssetBulk())
	for _, bulk := range AssetBulkServiceTypes {
		assert.True(t, bulk.IsAssetBulk(), bulk)
		assert.True(t, bulk.Valid(), bulk)
	}
	assert.True(t, ServiceOther.Valid())
	assert.False(t, ServiceType("painting").Valid())
}
