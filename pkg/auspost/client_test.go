package auspost_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/auspost/pkg/auspost"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(apiClient auspost.APIClient) *auspost.Client {
	logger := otelzap.New(zap.NewNop())
	return auspost.NewWithAPIClient(auspost.Config{
		APIKey:        "test-key",
		APIPassword:   "test-password",
		AccountNumber: "123",
	}, apiClient, logger, nil)
}

func TestClient_AccountNumberPadding(t *testing.T) {
	client := newTestClient(auspost.NewMockAPIClient())
	assert.Equal(t, "0000000123", client.AccountNumber())
}

func TestClient_AccountNumberPaddingPassThrough(t *testing.T) {
	logger := otelzap.New(zap.NewNop())
	client := auspost.NewWithAPIClient(auspost.Config{
		AccountNumber: "12345678901",
	}, auspost.NewMockAPIClient(), logger, nil)

	assert.Equal(t, "12345678901", client.AccountNumber())
}

func TestClient_UseStarTrack(t *testing.T) {
	client := newTestClient(auspost.NewMockAPIClient())
	client.UseStarTrack()

	assert.Equal(t, "123", client.AccountNumber(), "StarTrack accounts use the raw number")
}

func TestClient_GetAccountDetails(t *testing.T) {
	client := newTestClient(auspost.NewMockAPIClient())

	account, err := client.GetAccountDetails(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Test Merchant Pty Ltd", account.Name)
	assert.False(t, account.Expired)
	assert.Equal(t, 2020, account.ValidFrom.Year())
	require.Len(t, account.Addresses, 2)
	assert.Equal(t, auspost.AddressTypeMerchantLocation, account.Addresses[0].Type)
	assert.NotNil(t, account.Raw)
}

func TestClient_GetAccountDetailsErrorList(t *testing.T) {
	mockAPI := auspost.NewMockAPIClient()
	mockAPI.OnGetAccount = func(ctx context.Context, accountNumber string) (*auspost.AccountResponse, error) {
		return &auspost.AccountResponse{
			Errors: []auspost.ResponseError{
				{Code: "40001", Message: "Unauthorized"},
			},
		}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.GetAccountDetails(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthorized")
}

func TestClient_GetMerchantAddress(t *testing.T) {
	client := newTestClient(auspost.NewMockAPIClient())

	address, err := client.GetMerchantAddress(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Kallangur", address.Suburb)
	assert.Equal(t, "4503", address.Postcode)
	assert.Equal(t, "QLD", address.State)
}

func TestClient_GetMerchantAddressMissing(t *testing.T) {
	mockAPI := auspost.NewMockAPIClient()
	mockAPI.OnGetAccount = func(ctx context.Context, accountNumber string) (*auspost.AccountResponse, error) {
		return &auspost.AccountResponse{
			AccountNumber: accountNumber,
			Addresses: []map[string]any{
				{"type": "BILLING", "suburb": "Brisbane"},
			},
		}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.GetMerchantAddress(context.Background())

	assert.ErrorIs(t, err, auspost.ErrNoMerchantAddress)
}

func TestClient_GetQuotesWithStatesUsesSurchargeTotals(t *testing.T) {
	client := newTestClient(auspost.NewMockAPIClient())

	quotes, err := client.GetQuotes(context.Background(), &auspost.QuoteInput{
		From: auspost.RateLocation{Postcode: "4503", Country: "AU", State: "QLD"},
		To:   auspost.RateLocation{Postcode: "2430", Country: "AU", State: "NSW"},
		Items: []auspost.RateItem{
			{ItemReference: "pkg1", Length: 5, Height: 4, Width: 45, Weight: 0.55},
			{ItemReference: "pkg2", Length: 12, Height: 12, Width: 20, Weight: 1.55},
		},
	})

	require.NoError(t, err)
	require.Len(t, quotes, 2)
	// Surcharge-inclusive totals replace the line-item sums.
	assert.InDelta(t, 37.20, quotes[0].PriceIncGST, 1e-9)
	assert.InDelta(t, 33.82, quotes[0].PriceExcGST, 1e-9)
	assert.InDelta(t, 23.50, quotes[1].PriceIncGST, 1e-9)
	assert.InDelta(t, 21.36, quotes[1].PriceExcGST, 1e-9)
}

func TestClient_GetLabelsNoShipments(t *testing.T) {
	client := newTestClient(auspost.NewMockAPIClient())

	_, err := client.GetLabels(context.Background(), nil, nil)

	assert.ErrorIs(t, err, auspost.ErrNoShipments)
}

func TestClient_GetLabelsRequestShape(t *testing.T) {
	mockAPI := auspost.NewMockAPIClient()
	var captured *auspost.CreateLabelsRequest
	mockAPI.OnCreateLabels = func(ctx context.Context, req *auspost.CreateLabelsRequest) (*auspost.CreateLabelsResponse, error) {
		captured = req
		return &auspost.CreateLabelsResponse{
			Labels: []auspost.LabelRecord{{URL: "https://example.com/label.pdf"}},
		}, nil
	}
	client := newTestClient(mockAPI)

	labelType := auspost.NewLabelType()
	labelType.LayoutType = auspost.LayoutA6Thermal
	labelType.Format = auspost.FormatZPL

	url, err := client.GetLabels(context.Background(), []string{"S1", "S2"}, labelType)

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/label.pdf", url)
	require.NotNil(t, captured)
	assert.True(t, captured.WaitForLabelURL)
	assert.Equal(t, "PRINT", captured.Preferences.Type)
	assert.Equal(t, auspost.FormatZPL, captured.Preferences.Format)
	require.NotEmpty(t, captured.Preferences.Groups)
	for _, group := range captured.Preferences.Groups {
		assert.Equal(t, auspost.LayoutA6Thermal, group.Layout)
	}
	require.Len(t, captured.Shipments, 2)
	assert.Equal(t, "S1", captured.Shipments[0].ShipmentID)
}

func TestClient_GetLabelsEmptyLabelList(t *testing.T) {
	mockAPI := auspost.NewMockAPIClient()
	mockAPI.OnCreateLabels = func(ctx context.Context, req *auspost.CreateLabelsRequest) (*auspost.CreateLabelsResponse, error) {
		return &auspost.CreateLabelsResponse{}, nil
	}
	client := newTestClient(mockAPI)

	url, err := client.GetLabels(context.Background(), []string{"S1"}, nil)

	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestClient_CreateOrderNoShipments(t *testing.T) {
	client := newTestClient(auspost.NewMockAPIClient())

	_, err := client.CreateOrder(context.Background(), nil)

	assert.ErrorIs(t, err, auspost.ErrNoShipments)
}

func TestClient_CreateOrderAttachesManifest(t *testing.T) {
	client := newTestClient(auspost.NewMockAPIClient())

	order, err := client.CreateOrder(context.Background(), []string{"S1"})

	require.NoError(t, err)
	assert.NotEmpty(t, order.OrderID)
	assert.False(t, order.CreationDate.IsZero())
	assert.Contains(t, string(order.ManifestPDF), order.OrderID)
}

func TestClient_CreateOrderInlineDocument(t *testing.T) {
	mockAPI := auspost.NewMockAPIClient()
	mockAPI.OnCreateOrder = func(ctx context.Context, req *auspost.CreateOrderRequest) (*auspost.CreateOrderResponse, error) {
		return &auspost.CreateOrderResponse{Raw: []byte("%PDF-1.4 inline manifest")}, nil
	}
	client := newTestClient(mockAPI)

	order, err := client.CreateOrder(context.Background(), []string{"S1"})

	require.NoError(t, err)
	assert.Equal(t, "None", order.OrderID)
	assert.False(t, order.CreationDate.IsZero())
	assert.Equal(t, []byte("%PDF-1.4 inline manifest"), order.ManifestPDF)
}

func TestClient_CreateOrderErrorList(t *testing.T) {
	mockAPI := auspost.NewMockAPIClient()
	mockAPI.OnCreateOrder = func(ctx context.Context, req *auspost.CreateOrderRequest) (*auspost.CreateOrderResponse, error) {
		return &auspost.CreateOrderResponse{
			Errors: []auspost.ResponseError{
				{Code: "44013", Message: "The shipment has already been manifested"},
			},
		}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.CreateOrder(context.Background(), []string{"S1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already been manifested")
}

func TestClient_CreateOrderEmptyResponse(t *testing.T) {
	mockAPI := auspost.NewMockAPIClient()
	mockAPI.OnCreateOrder = func(ctx context.Context, req *auspost.CreateOrderRequest) (*auspost.CreateOrderResponse, error) {
		return &auspost.CreateOrderResponse{}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.CreateOrder(context.Background(), []string{"S1"})

	require.Error(t, err)
	var apiErr *auspost.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "EMPTY_RESPONSE", apiErr.Code)
}

func TestClient_DeleteShipmentThenLabelFails(t *testing.T) {
	client := newTestClient(auspost.NewMockAPIClient())

	shipment := buildShipment(client)
	shipment.ProductID = auspost.MockProductExpress
	require.NoError(t, shipment.Lodge(context.Background()))

	require.NoError(t, client.DeleteShipment(context.Background(), shipment.ShipmentID))

	_, err := client.GetLabels(context.Background(), []string{shipment.ShipmentID}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestClient_FullLifecycle(t *testing.T) {
	client := newTestClient(auspost.NewMockAPIClient())

	shipment := buildShipment(client)
	quotes, err := shipment.GetQuotes(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, quotes)

	shipment.ProductID = quotes[0].ProductID
	require.NoError(t, shipment.Lodge(context.Background()))

	url, err := shipment.GetLabel(context.Background(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	order, err := client.CreateOrder(context.Background(), []string{shipment.ShipmentID})
	require.NoError(t, err)
	assert.NotEmpty(t, order.ManifestPDF)
}
