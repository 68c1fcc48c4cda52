package auspost_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tournevent/auspost/pkg/auspost"
)

func TestNewAddress_DeriveNameFromParts(t *testing.T) {
	addr := auspost.NewAddress(map[string]any{
		"first_name": "Joe",
		"last_name":  "Tester",
		"lines":      []any{"11 MyStreetname Court"},
		"suburb":     "Kallangur",
		"state":      "QLD",
		"postcode":   "4503",
	})

	assert.Equal(t, "Joe Tester", addr.Name)
	assert.Equal(t, "Joe", addr.FirstName)
	assert.Equal(t, "Tester", addr.LastName)
	assert.Equal(t, []string{"11 MyStreetname Court"}, addr.Lines)
	assert.Equal(t, "AU", addr.Country, "country should default to AU")
}

func TestNewAddress_DerivePartsFromName(t *testing.T) {
	addr := auspost.NewAddress(map[string]any{
		"name": "Mary Jane Tester",
	})

	// Split on the first space only
	assert.Equal(t, "Mary", addr.FirstName)
	assert.Equal(t, "Jane Tester", addr.LastName)
	assert.Equal(t, "Mary Jane Tester", addr.Name)
}

func TestNewAddress_SingleWordName(t *testing.T) {
	addr := auspost.NewAddress(map[string]any{
		"name": "Cher",
	})

	assert.Equal(t, "Cher", addr.FirstName)
	assert.Equal(t, "Cher", addr.LastName)
}

func TestNewAddress_RoundTrip(t *testing.T) {
	original := auspost.NewAddress(map[string]any{"name": "Joe Tester"})

	derived := auspost.NewAddress(map[string]any{
		"first_name": original.FirstName,
		"last_name":  original.LastName,
	})

	assert.Equal(t, "Joe Tester", derived.Name)
}

func TestNewAddress_NameWinsOverParts(t *testing.T) {
	addr := auspost.NewAddress(map[string]any{
		"name":       "Explicit Name",
		"first_name": "Other",
		"last_name":  "Person",
	})

	assert.Equal(t, "Explicit Name", addr.Name)
	assert.Equal(t, "Other", addr.FirstName)
	assert.Equal(t, "Person", addr.LastName)
}

func TestNewAddress_UnknownKeysKeptInRaw(t *testing.T) {
	details := map[string]any{
		"name":       "Joe Tester",
		"dpid":       "12345678",
		"apcd_check": true,
	}
	addr := auspost.NewAddress(details)

	assert.Equal(t, "Joe Tester", addr.Name)
	assert.Equal(t, "12345678", addr.Raw["dpid"])
	assert.Equal(t, true, addr.Raw["apcd_check"])
}

func TestNewAddress_CountryOverride(t *testing.T) {
	addr := auspost.NewAddress(map[string]any{
		"name":    "Joe Tester",
		"country": "NZ",
	})

	assert.Equal(t, "NZ", addr.Country)
}

func TestNewParcel_Defaults(t *testing.T) {
	parcel := auspost.NewParcel(map[string]any{
		"item_reference": "pkg1",
		"length":         5.0,
		"height":         4.0,
		"width":          45.0,
		"weight":         0.55,
		"value":          200.0,
	})

	assert.Equal(t, "pkg1", parcel.ItemReference)
	assert.Equal(t, 0.55, parcel.Weight)
	assert.Equal(t, 200.0, parcel.Value)
	assert.True(t, parcel.AllowPartialDelivery, "partial delivery should default to allowed")
	assert.False(t, parcel.AuthorityToLeave)
	assert.False(t, parcel.ContainsDangerousGoods)
}

func TestNewParcel_IntDimensions(t *testing.T) {
	// JSON decoding yields float64 but callers building maps by hand pass ints
	parcel := auspost.NewParcel(map[string]any{
		"length": 12,
		"height": 12,
		"width":  20,
		"weight": 1.55,
	})

	assert.Equal(t, 12.0, parcel.Length)
	assert.Equal(t, 20.0, parcel.Width)
}

func TestNewParcel_DisallowPartialDelivery(t *testing.T) {
	parcel := auspost.NewParcel(map[string]any{
		"allow_partial_delivery": false,
	})

	assert.False(t, parcel.AllowPartialDelivery)
}

func TestNewLabelType_Defaults(t *testing.T) {
	lt := auspost.NewLabelType()

	assert.Equal(t, auspost.LayoutA4OnePerPage, lt.LayoutType)
	assert.Equal(t, auspost.FormatPDF, lt.Format)
	assert.True(t, lt.Branded)
	assert.Zero(t, lt.LeftOffset)
	assert.Zero(t, lt.TopOffset)
}

func TestNewPostageProduct(t *testing.T) {
	product := auspost.NewPostageProduct(map[string]any{
		"type":       "CONTRACT",
		"group":      "Parcel Post",
		"product_id": "7D55",
		"contract":   "C123",
		"options":    map[string]any{"signature_on_delivery_option": true},
	})

	assert.Equal(t, "7D55", product.ProductID)
	assert.Equal(t, "Parcel Post", product.Group)
	assert.Equal(t, true, product.Options["signature_on_delivery_option"])
	assert.NotNil(t, product.Raw)
}
