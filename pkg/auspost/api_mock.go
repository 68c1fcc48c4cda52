package auspost

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing. Default
// behavior prices every item against two products (Express Post + Signature
// and Parcel Post + Signature) with deterministic amounts; individual calls
// can be overridden through the On* hooks.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnGetAccount        func(ctx context.Context, accountNumber string) (*AccountResponse, error)
	OnGetItemPrices     func(ctx context.Context, req *ItemPricesRequest) (*ItemPricesResponse, error)
	OnGetShipmentPrices func(ctx context.Context, req *ShipmentPricesRequest) (*ShipmentPricesResponse, error)
	OnCreateShipments   func(ctx context.Context, req *CreateShipmentsRequest) (*CreateShipmentsResponse, error)
	OnCreateLabels      func(ctx context.Context, req *CreateLabelsRequest) (*CreateLabelsResponse, error)
	OnCreateOrder       func(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error)
	OnGetOrderSummary   func(ctx context.Context, accountNumber, orderID string) ([]byte, error)
	OnDeleteShipment    func(ctx context.Context, shipmentID string) (*DeleteShipmentResponse, error)

	// lodged shipment ids, removed again on delete so that label requests
	// for deleted shipments fail the way the live API does
	shipments map[string]bool
}

// Default mock products, in the order the pricing endpoint lists them.
const (
	MockProductExpress     = "7E55"
	MockProductExpressName = "EXPRESS POST + SIGNATURE"
	MockProductParcel      = "7D55"
	MockProductParcelName  = "PARCEL POST + SIGNATURE"
)

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{
		shipments: make(map[string]bool),
	}
}

func (m *MockAPIClient) simulate() error {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return NewAPIError("MOCK_ERROR", "Simulated API error")
	}
	return nil
}

// GetAccount returns mock account details with a merchant location address.
func (m *MockAPIClient) GetAccount(ctx context.Context, accountNumber string) (*AccountResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetAccount != nil {
		return m.OnGetAccount(ctx, accountNumber)
	}

	return &AccountResponse{
		AccountNumber:      accountNumber,
		Name:               "Test Merchant Pty Ltd",
		ValidFrom:          "2020-07-01",
		ValidTo:            "2030-06-30",
		Expired:            false,
		MerchantLocationID: "MLID1234",
		CreditBlocked:      false,
		Addresses: []map[string]any{
			{
				"type":          AddressTypeMerchantLocation,
				"name":          "Test Merchant Pty Ltd",
				"business_name": "Test Merchant Pty Ltd",
				"lines":         []any{"11 MyStreetname Court"},
				"suburb":        "Kallangur",
				"state":         "QLD",
				"postcode":      "4503",
				"country":       "AU",
			},
			{
				"type":     "BILLING",
				"name":     "Accounts Payable",
				"lines":    []any{"PO Box 100"},
				"suburb":   "Brisbane",
				"state":    "QLD",
				"postcode": "4000",
				"country":  "AU",
			},
		},
	}, nil
}

// GetItemPrices prices every input item against the two default products.
// Both carry a bundled discount; whether it applies is the aggregator's
// decision, not the mock's.
func (m *MockAPIClient) GetItemPrices(ctx context.Context, req *ItemPricesRequest) (*ItemPricesResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetItemPrices != nil {
		return m.OnGetItemPrices(ctx, req)
	}

	optTrue := true
	items := make([]ItemPriceResult, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, ItemPriceResult{
			ItemReference: item.ItemReference,
			Prices: []ProductPrice{
				{
					ProductID:   MockProductExpress,
					ProductType: MockProductExpressName,
					Options: PriceOptions{
						SignatureOnDelivery: &optTrue,
						AuthorityToLeave:    &optTrue,
					},
					CalculatedPrice:      16.90,
					CalculatedPriceExGST: 15.36,
					BundledPrice:         floatPtr(14.60),
					BundledPriceExGST:    floatPtr(13.27),
				},
				{
					ProductID:   MockProductParcel,
					ProductType: MockProductParcelName,
					Options: PriceOptions{
						SignatureOnDelivery: &optTrue,
						AuthorityToLeave:    &optTrue,
					},
					CalculatedPrice:      10.60,
					CalculatedPriceExGST: 9.64,
					BundledPrice:         floatPtr(8.95),
					BundledPriceExGST:    floatPtr(8.14),
				},
			},
		})
	}

	return &ItemPricesResponse{Items: items}, nil
}

// GetShipmentPrices returns a fuel-surcharge-inclusive total: a fixed
// per-item rate for the requested product plus a surcharge component.
func (m *MockAPIClient) GetShipmentPrices(ctx context.Context, req *ShipmentPricesRequest) (*ShipmentPricesResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetShipmentPrices != nil {
		return m.OnGetShipmentPrices(ctx, req)
	}

	var inc, exc float64
	for _, item := range req.Shipments.Items {
		switch item.ProductID {
		case MockProductParcel:
			inc += 11.75
			exc += 10.68
		default:
			inc += 18.60
			exc += 16.91
		}
	}

	return &ShipmentPricesResponse{
		Shipments: []PricedShipment{
			{ShipmentSummary: ShipmentSummary{TotalCost: inc, TotalCostExGST: exc}},
		},
	}, nil
}

// CreateShipments lodges a mock shipment, issuing ids and tracking details
// for every item.
func (m *MockAPIClient) CreateShipments(ctx context.Context, req *CreateShipmentsRequest) (*CreateShipmentsResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateShipments != nil {
		return m.OnCreateShipments(ctx, req)
	}

	shipmentID := "S" + uuid.New().String()[:8]
	m.shipments[shipmentID] = true

	items := make([]ShipmentItemRecord, 0, len(req.Shipments.Items))
	for _, item := range req.Shipments.Items {
		items = append(items, ShipmentItemRecord{
			ItemID:        "I" + uuid.New().String()[:8],
			ItemReference: item.ItemReference,
			TrackingDetails: TrackingDetails{
				ArticleID:     "ART" + uuid.New().String()[:9],
				ConsignmentID: "CON" + uuid.New().String()[:9],
			},
		})
	}

	return &CreateShipmentsResponse{
		Shipments: []ShipmentRecord{
			{
				ShipmentID:           shipmentID,
				ShipmentCreationDate: time.Now().Format(time.RFC3339),
				Items:                items,
			},
		},
	}, nil
}

// CreateLabels returns a label URL for known shipments. Requests naming a
// deleted or unknown shipment answer with an error list, matching the live
// API.
func (m *MockAPIClient) CreateLabels(ctx context.Context, req *CreateLabelsRequest) (*CreateLabelsResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateLabels != nil {
		return m.OnCreateLabels(ctx, req)
	}

	for _, ref := range req.Shipments {
		if !m.shipments[ref.ShipmentID] {
			return &CreateLabelsResponse{
				Errors: []ResponseError{
					{
						Code:    "44009",
						Message: fmt.Sprintf("Shipment with shipment id %s does not exist.", ref.ShipmentID),
					},
				},
			}, nil
		}
	}

	return &CreateLabelsResponse{
		Labels: []LabelRecord{
			{
				RequestID: uuid.New().String(),
				Status:    "AVAILABLE",
				URL:       "https://digitalapi.auspost.com.au/labels/" + uuid.New().String() + ".pdf",
			},
		},
	}, nil
}

// CreateOrder returns a mock order record.
func (m *MockAPIClient) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateOrder != nil {
		return m.OnCreateOrder(ctx, req)
	}

	return &CreateOrderResponse{
		Order: &OrderRecord{
			OrderID:           "ORD" + uuid.New().String()[:8],
			OrderCreationDate: time.Now().Format(time.RFC3339),
		},
	}, nil
}

// GetOrderSummary returns a placeholder PDF document.
func (m *MockAPIClient) GetOrderSummary(ctx context.Context, accountNumber, orderID string) ([]byte, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetOrderSummary != nil {
		return m.OnGetOrderSummary(ctx, accountNumber, orderID)
	}

	return []byte("%PDF-1.4 mock manifest for order " + orderID), nil
}

// DeleteShipment forgets a lodged shipment so later label requests fail.
func (m *MockAPIClient) DeleteShipment(ctx context.Context, shipmentID string) (*DeleteShipmentResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnDeleteShipment != nil {
		return m.OnDeleteShipment(ctx, shipmentID)
	}

	delete(m.shipments, shipmentID)
	return &DeleteShipmentResponse{}, nil
}

func floatPtr(v float64) *float64 {
	return &v
}

// Ensure MockAPIClient implements APIClient interface
var _ APIClient = (*MockAPIClient)(nil)
