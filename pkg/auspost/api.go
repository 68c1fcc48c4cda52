package auspost

import (
	"context"
)

// APIClient defines the interface for Australia Post Shipping and Tracking
// API operations. This abstraction allows for mock implementations during
// testing and real implementations in production.
type APIClient interface {
	// GetAccount fetches account details (GET accounts/{accountNumber}).
	GetAccount(ctx context.Context, accountNumber string) (*AccountResponse, error)

	// GetItemPrices fetches per-item price candidates (POST prices/items).
	GetItemPrices(ctx context.Context, req *ItemPricesRequest) (*ItemPricesResponse, error)

	// GetShipmentPrices fetches whole-shipment fuel-surcharge-inclusive
	// pricing (POST prices/shipments).
	GetShipmentPrices(ctx context.Context, req *ShipmentPricesRequest) (*ShipmentPricesResponse, error)

	// CreateShipments lodges shipments with the carrier (POST shipments).
	CreateShipments(ctx context.Context, req *CreateShipmentsRequest) (*CreateShipmentsResponse, error)

	// CreateLabels requests label generation (POST labels).
	CreateLabels(ctx context.Context, req *CreateLabelsRequest) (*CreateLabelsResponse, error)

	// CreateOrder closes shipments into an order/manifest (PUT orders).
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error)

	// GetOrderSummary fetches the manifest summary document
	// (GET accounts/{accountNumber}/orders/{orderID}/summary). The body may
	// be an inline PDF rather than JSON.
	GetOrderSummary(ctx context.Context, accountNumber, orderID string) ([]byte, error)

	// DeleteShipment deletes an unmanifested shipment
	// (DELETE shipments/{shipmentID}).
	DeleteShipment(ctx context.Context, shipmentID string) (*DeleteShipmentResponse, error)
}

// ============================================================================
// Wire types (match the Australia Post Shipping and Tracking API)
// ============================================================================

// ResponseError is a single entry of an API error list.
type ResponseError struct {
	Code    string `json:"code,omitempty"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

// AccountResponse is the GET accounts/{n} payload. Addresses are kept as raw
// maps so unknown keys survive into Address.Raw.
type AccountResponse struct {
	AccountNumber      string           `json:"account_number"`
	Name               string           `json:"name"`
	ValidFrom          string           `json:"valid_from"`
	ValidTo            string           `json:"valid_to"`
	Expired            bool             `json:"expired"`
	Addresses          []map[string]any `json:"addresses"`
	MerchantLocationID string           `json:"merchant_location_id"`
	CreditBlocked      bool             `json:"credit_blocked"`
	Postage            []map[string]any `json:"postage_products,omitempty"`
	Errors             []ResponseError  `json:"errors,omitempty"`
}

// PriceLocation is the origin/destination of a pricing request. Only
// postcode and country are needed for item pricing; state is additionally
// required by the shipment (fuel surcharge) pricing endpoint.
type PriceLocation struct {
	Postcode string `json:"postcode"`
	Country  string `json:"country,omitempty"`
	State    string `json:"state,omitempty"`
	Suburb   string `json:"suburb,omitempty"`
}

// FeatureAttributes carries the attribute bag of a shipment feature.
type FeatureAttributes struct {
	CoverAmount float64 `json:"cover_amount,omitempty"`
}

// Feature is a single feature entry, e.g. TRANSIT_COVER.
type Feature struct {
	Attributes FeatureAttributes `json:"attributes"`
}

// PriceItem is one line item of a pricing request.
type PriceItem struct {
	ItemReference string             `json:"item_reference,omitempty"`
	ProductID     string             `json:"product_id,omitempty"`
	Length        float64            `json:"length"`
	Height        float64            `json:"height"`
	Width         float64            `json:"width"`
	Weight        float64            `json:"weight"`
	Features      map[string]Feature `json:"features,omitempty"`
}

// ItemPricesRequest is the POST prices/items payload.
type ItemPricesRequest struct {
	From  PriceLocation `json:"from"`
	To    PriceLocation `json:"to"`
	Items []PriceItem   `json:"items"`
}

// PriceOptions reports option availability on a candidate price. Pointers
// distinguish "absent" (treated as false) from an explicit value.
type PriceOptions struct {
	SignatureOnDelivery   *bool `json:"signature_on_delivery_option,omitempty"`
	AuthorityToLeave      *bool `json:"authority_to_leave_option,omitempty"`
	DangerousGoodsAllowed *bool `json:"dangerous_goods_allowed,omitempty"`
}

func boolOption(v *bool) bool {
	return v != nil && *v
}

// ProductPrice is one candidate priced product for a line item. BundledPrice
// is set only when the product also priced a prior item in the same request
// and a multi-item discount applies.
type ProductPrice struct {
	ProductID            string       `json:"product_id"`
	ProductType          string       `json:"product_type"`
	Options              PriceOptions `json:"options"`
	CalculatedPrice      float64      `json:"calculated_price"`
	CalculatedPriceExGST float64      `json:"calculated_price_ex_gst"`
	BundledPrice         *float64     `json:"bundled_price,omitempty"`
	BundledPriceExGST    *float64     `json:"bundled_price_ex_gst,omitempty"`
}

// ItemPriceResult is the priced result for one input item.
type ItemPriceResult struct {
	ItemReference string          `json:"item_reference,omitempty"`
	Prices        []ProductPrice  `json:"prices"`
	Errors        []ResponseError `json:"errors,omitempty"`
}

// ItemPricesResponse is the POST prices/items response.
type ItemPricesResponse struct {
	Items  []ItemPriceResult `json:"items"`
	Errors []ResponseError   `json:"errors,omitempty"`
}

// ShipmentPriceSpec is the shipment block of a POST prices/shipments request.
type ShipmentPriceSpec struct {
	From  PriceLocation `json:"from"`
	To    PriceLocation `json:"to"`
	Items []PriceItem   `json:"items"`
}

// ShipmentPricesRequest is the POST prices/shipments payload.
type ShipmentPricesRequest struct {
	Shipments ShipmentPriceSpec `json:"shipments"`
}

// ShipmentSummary carries the totals for one priced shipment.
type ShipmentSummary struct {
	TotalCost      float64 `json:"total_cost"`
	TotalCostExGST float64 `json:"total_cost_ex_gst"`
}

// PricedShipment is one shipment entry of a prices/shipments response.
type PricedShipment struct {
	ShipmentSummary ShipmentSummary `json:"shipment_summary"`
}

// ShipmentPricesResponse is the POST prices/shipments response.
type ShipmentPricesResponse struct {
	Shipments []PricedShipment `json:"shipments"`
	Errors    []ResponseError  `json:"errors,omitempty"`
}

// ShipmentAddress is the full address block of a lodgement request.
// DeliveryInstructions is only sent on the destination.
type ShipmentAddress struct {
	Name                 string   `json:"name"`
	BusinessName         string   `json:"business_name,omitempty"`
	Lines                []string `json:"lines"`
	Suburb               string   `json:"suburb"`
	State                string   `json:"state"`
	Postcode             string   `json:"postcode"`
	Country              string   `json:"country"`
	Phone                string   `json:"phone,omitempty"`
	Email                string   `json:"email,omitempty"`
	DeliveryInstructions string   `json:"delivery_instructions,omitempty"`
}

// ShipmentItem is one parcel of a lodgement request.
type ShipmentItem struct {
	ItemReference        string             `json:"item_reference,omitempty"`
	ProductID            string             `json:"product_id"`
	Length               float64            `json:"length"`
	Height               float64            `json:"height"`
	Width                float64            `json:"width"`
	Weight               float64            `json:"weight"`
	AuthorityToLeave     bool               `json:"authority_to_leave"`
	AllowPartialDelivery bool               `json:"allow_partial_delivery"`
	PackagingType        string             `json:"packaging_type,omitempty"`
	Features             map[string]Feature `json:"features,omitempty"`
}

// ShipmentSpec is the shipment block of a POST shipments request.
type ShipmentSpec struct {
	ShipmentReference    string          `json:"shipment_reference,omitempty"`
	CustomerReference1   string          `json:"customer_reference_1,omitempty"`
	CustomerReference2   string          `json:"customer_reference_2,omitempty"`
	EmailTrackingEnabled bool            `json:"email_tracking_enabled"`
	From                 ShipmentAddress `json:"from"`
	To                   ShipmentAddress `json:"to"`
	Items                []ShipmentItem  `json:"items"`
}

// CreateShipmentsRequest is the POST shipments payload.
type CreateShipmentsRequest struct {
	Shipments ShipmentSpec `json:"shipments"`
}

// TrackingDetails carries the tracking identifiers issued for a lodged item.
type TrackingDetails struct {
	ArticleID     string `json:"article_id"`
	ConsignmentID string `json:"consignment_id"`
}

// ShipmentItemRecord is one item of a lodged shipment record.
type ShipmentItemRecord struct {
	ItemID          string          `json:"item_id"`
	ItemReference   string          `json:"item_reference"`
	TrackingDetails TrackingDetails `json:"tracking_details"`
}

// ShipmentRecord is a single lodged shipment in the response.
type ShipmentRecord struct {
	ShipmentID           string               `json:"shipment_id"`
	ShipmentCreationDate string               `json:"shipment_creation_date"`
	Items                []ShipmentItemRecord `json:"items"`
}

// CreateShipmentsResponse is the POST shipments response.
type CreateShipmentsResponse struct {
	Shipments []ShipmentRecord `json:"shipments"`
	Errors    []ResponseError  `json:"errors,omitempty"`
}

// LabelGroup is a per-service-group label preference.
type LabelGroup struct {
	Group      string `json:"group"`
	Layout     string `json:"layout"`
	Branded    bool   `json:"branded"`
	LeftOffset int    `json:"left_offset"`
	TopOffset  int    `json:"top_offset"`
}

// LabelPreferences selects the output type, format and per-group layout for
// label generation.
type LabelPreferences struct {
	Type   string       `json:"type"`
	Format string       `json:"format"`
	Groups []LabelGroup `json:"groups"`
}

// ShipmentRef references a lodged shipment by id.
type ShipmentRef struct {
	ShipmentID string `json:"shipment_id"`
}

// CreateLabelsRequest is the POST labels payload.
type CreateLabelsRequest struct {
	WaitForLabelURL bool             `json:"wait_for_label_url"`
	Preferences     LabelPreferences `json:"preferences"`
	Shipments       []ShipmentRef    `json:"shipments"`
}

// LabelRecord is one generated label in the response.
type LabelRecord struct {
	RequestID string `json:"request_id,omitempty"`
	Status    string `json:"status,omitempty"`
	URL       string `json:"url"`
}

// CreateLabelsResponse is the POST labels response.
type CreateLabelsResponse struct {
	Labels []LabelRecord   `json:"labels"`
	Errors []ResponseError `json:"errors,omitempty"`
}

// CreateOrderRequest is the PUT orders payload.
type CreateOrderRequest struct {
	Shipments []ShipmentRef `json:"shipments"`
}

// OrderRecord is the order block of a PUT orders response.
type OrderRecord struct {
	OrderID           string `json:"order_id"`
	OrderCreationDate string `json:"order_creation_date"`
}

// CreateOrderResponse is the PUT orders response. When the API answers with
// an inline document instead of JSON, Raw holds the body and Order is nil.
type CreateOrderResponse struct {
	Order  *OrderRecord    `json:"order,omitempty"`
	Errors []ResponseError `json:"errors,omitempty"`
	Raw    []byte          `json:"-"`
}

// DeleteShipmentResponse is the DELETE shipments/{id} response. A successful
// delete has an empty body.
type DeleteShipmentResponse struct {
	Errors []ResponseError `json:"errors,omitempty"`
}
