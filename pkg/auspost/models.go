package auspost

import (
	"strings"
	"time"
)

// AddressType values returned by the accounts endpoint.
const (
	AddressTypeMerchantLocation = "MERCHANT_LOCATION"
)

// Address represents a sender or receiver postal address.
//
// Either Name or FirstName/LastName may be supplied; the missing side is
// derived during construction. Unrecognised keys from the API are kept in
// Raw for diagnostics.
type Address struct {
	Type         string
	FirstName    string
	LastName     string
	Name         string
	BusinessName string
	Lines        []string
	Suburb       string
	State        string
	Postcode     string
	Phone        string
	Email        string
	Country      string

	Raw map[string]any
}

// NewAddress builds an Address from a details map, assigning recognised keys
// and normalising the name fields. Unknown keys are retained in Raw. It never
// fails; missing fields default to empty strings and country defaults to AU.
func NewAddress(details map[string]any) *Address {
	a := &Address{
		Country: "AU",
		Raw:     details,
	}
	for key, value := range details {
		switch key {
		case "type":
			a.Type = asString(value)
		case "first_name":
			a.FirstName = asString(value)
		case "last_name":
			a.LastName = asString(value)
		case "name":
			a.Name = asString(value)
		case "business_name":
			a.BusinessName = asString(value)
		case "lines":
			a.Lines = asStringSlice(value)
		case "suburb":
			a.Suburb = asString(value)
		case "state":
			a.State = asString(value)
		case "postcode":
			a.Postcode = asString(value)
		case "phone":
			a.Phone = asString(value)
		case "email":
			a.Email = asString(value)
		case "country":
			if s := asString(value); s != "" {
				a.Country = s
			}
		}
	}
	a.normalize()
	return a
}

// normalize enforces the name invariant: a populated Name plus a populated
// FirstName/LastName pair. A missing Name is joined from the name parts; a
// missing FirstName is split from Name on the first space. A single-word
// Name sets both parts to the whole name.
func (a *Address) normalize() {
	if a.Name == "" {
		a.Name = strings.TrimSpace(a.FirstName + " " + a.LastName)
	}
	if a.FirstName == "" {
		first, last, found := strings.Cut(a.Name, " ")
		if found {
			a.FirstName = first
			a.LastName = last
		} else {
			a.FirstName = a.Name
			a.LastName = a.Name
		}
	}
}

// Parcel is a single physical package within a shipment. Dimensions are in
// centimetres and weight in kilograms. Value, when non-zero, requests transit
// cover (insurance) for that amount.
//
// ItemID, TrackingArticleID and TrackingConsignmentID are populated by
// Shipment.Lodge from the carrier's response.
type Parcel struct {
	ProductID              string
	ItemReference          string
	Length                 float64
	Width                  float64
	Height                 float64
	Weight                 float64
	Value                  float64
	ContainsDangerousGoods bool
	AuthorityToLeave       bool
	AllowPartialDelivery   bool
	PackagingType          string

	ItemID                string
	TrackingArticleID     string
	TrackingConsignmentID string
}

// NewParcel builds a Parcel from a details map. AllowPartialDelivery defaults
// to true unless the map says otherwise.
func NewParcel(details map[string]any) *Parcel {
	p := &Parcel{
		AllowPartialDelivery: true,
	}
	for key, value := range details {
		switch key {
		case "product_id":
			p.ProductID = asString(value)
		case "item_reference":
			p.ItemReference = asString(value)
		case "length":
			p.Length = asFloat(value)
		case "width":
			p.Width = asFloat(value)
		case "height":
			p.Height = asFloat(value)
		case "weight":
			p.Weight = asFloat(value)
		case "value":
			p.Value = asFloat(value)
		case "contains_dangerous_goods":
			p.ContainsDangerousGoods = asBool(value)
		case "authority_to_leave":
			p.AuthorityToLeave = asBool(value)
		case "allow_partial_delivery":
			p.AllowPartialDelivery = asBool(value)
		case "packaging_type":
			p.PackagingType = asString(value)
		}
	}
	return p
}

// Quote is the aggregated price for one postage product across an entire
// shipment, as produced by Client.GetQuotes. Quotes are immutable once
// returned; the option flags report whether the option is available on every
// parcel in the shipment.
type Quote struct {
	ProductID             string
	ProductType           string
	SignatureOnDelivery   bool
	AuthorityToLeave      bool
	DangerousGoodsAllowed bool
	PriceIncGST           float64
	PriceExcGST           float64
}

// Account is a read-only snapshot of the merchant account details.
type Account struct {
	AccountNumber      string
	Name               string
	ValidFrom          time.Time
	ValidTo            time.Time
	Expired            bool
	Addresses          []*Address
	MerchantLocationID string
	CreditBlocked      bool
	PostageProducts    []*PostageProduct

	Raw *AccountResponse
}

// Order is the result of closing off one or more lodged shipments into a
// manifest. ManifestPDF holds the manifest document bytes when the carrier
// returned one.
type Order struct {
	OrderID      string
	CreationDate time.Time
	ManifestPDF  []byte
}

// Label layout and format constants accepted by the labels endpoint.
const (
	LayoutA4OnePerPage   = "A4-1pp"
	LayoutA4TwoPerPage   = "A4-2pp"
	LayoutA4ThreePerPage = "A4-3pp"
	LayoutA4FourPerPage  = "A4-4pp"
	LayoutA6OnePerPage   = "A6-1PP"
	LayoutA6Thermal      = "THERMAL-LABEL-A6-1PP"

	FormatPDF = "PDF"
	FormatZPL = "ZPL"
)

// LabelType describes how labels should be rendered.
type LabelType struct {
	LayoutType string
	Format     string
	Branded    bool
	LeftOffset int
	TopOffset  int
}

/// NewLabelType returns label settings with the carrier defaults: one branded
// PDF label per A4 page, no offsets.
func NewLabelType() *LabelType {
	return &LabelType{
		LayoutType: LayoutA4OnePerPage,
		Format:     FormatPDF,
		Branded:    true,
	}
}

// PostageProduct is a read-only description of a postage product available on
// the account, as returned inside the account details.
type PostageProduct struct {
	Type                      string
	Group                     string
	ProductID                 string
	Contract                  string
	AuthorityToLeaveThreshold float64
	Options                   map[string]any
	Features                  map[string]any

	Raw map[string]any
}

// NewPostageProduct builds a PostageProduct from a details map, keeping the
// full map in Raw.
func NewPostageProduct(details map[string]any) *PostageProduct {
	p := &PostageProduct{Raw: details}
	for key, value := range details {
		switch key {
		case "type":
			p.Type = asString(value)
		case "group":
			p.Group = asString(value)
		case "product_id":
			p.ProductID = asString(value)
		case "contract":
			p.Contract = asString(value)
		case "authority_to_leave_threshold":
			p.AuthorityToLeaveThreshold = asFloat(value)
		case "options":
			if m, ok := value.(map[string]any); ok {
				p.Options = m
			}
		case "features":
			if m, ok := value.(map[string]any); ok {
				p.Features = m
			}
		}
	}
	return p
}

// ============================================================================
// Loose-typed value helpers for decoding detail maps
// ============================================================================

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func asStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}
