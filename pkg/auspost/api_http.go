package auspost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the production Australia Post API host.
const DefaultBaseURL = "https://digitalapi.auspost.com.au"

const (
	productionBasePath = "/shipping/v1/"
	testBasePath       = "/test/shipping/v1/"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP.
// Authentication is HTTP Basic with the API key and password; every request
// except the account lookup also carries the Account-Number header.
type HTTPAPIClient struct {
	baseURL       string
	basePath      string
	apiKey        string
	apiPassword   string
	accountNumber string
	httpClient    *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL       string
	APIKey        string
	APIPassword   string
	AccountNumber string
	TestMode      bool // route calls through the test namespace
	Timeout       time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	basePath := productionBasePath
	if cfg.TestMode {
		basePath = testBasePath
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &HTTPAPIClient{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		basePath:      basePath,
		apiKey:        cfg.APIKey,
		apiPassword:   cfg.APIPassword,
		accountNumber: cfg.AccountNumber,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetAccount fetches account details. This is the only call that omits the
// Account-Number header, since the account is part of the path.
func (c *HTTPAPIClient) GetAccount(ctx context.Context, accountNumber string) (*AccountResponse, error) {
	body, _, err := c.doRequest(ctx, http.MethodGet, "accounts/"+accountNumber, nil, false)
	if err != nil {
		return nil, err
	}

	var result AccountResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode account response: %w", err)
	}
	return &result, nil
}

// GetItemPrices fetches per-item price candidates.
func (c *HTTPAPIClient) GetItemPrices(ctx context.Context, req *ItemPricesRequest) (*ItemPricesResponse, error) {
	body, _, err := c.doRequest(ctx, http.MethodPost, "prices/items", req, true)
	if err != nil {
		return nil, err
	}

	var result ItemPricesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode item prices response: %w", err)
	}
	return &result, nil
}

// GetShipmentPrices fetches fuel-surcharge-inclusive shipment pricing.
func (c *HTTPAPIClient) GetShipmentPrices(ctx context.Context, req *ShipmentPricesRequest) (*ShipmentPricesResponse, error) {
	body, _, err := c.doRequest(ctx, http.MethodPost, "prices/shipments", req, true)
	if err != nil {
		return nil, err
	}

	var result ShipmentPricesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode shipment prices response: %w", err)
	}
	return &result, nil
}

// CreateShipments lodges shipments with the carrier.
func (c *HTTPAPIClient) CreateShipments(ctx context.Context, req *CreateShipmentsRequest) (*CreateShipmentsResponse, error) {
	body, _, err := c.doRequest(ctx, http.MethodPost, "shipments", req, true)
	if err != nil {
		return nil, err
	}

	var result CreateShipmentsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode shipments response: %w", err)
	}
	return &result, nil
}

// CreateLabels requests label generation for lodged shipments.
func (c *HTTPAPIClient) CreateLabels(ctx context.Context, req *CreateLabelsRequest) (*CreateLabelsResponse, error) {
	body, _, err := c.doRequest(ctx, http.MethodPost, "labels", req, true)
	if err != nil {
		return nil, err
	}

	var result CreateLabelsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode labels response: %w", err)
	}
	return &result, nil
}

// CreateOrder closes shipments into an order. Some accounts receive the
// manifest document inline instead of a JSON order record; in that case the
// raw body is returned in CreateOrderResponse.Raw.
func (c *HTTPAPIClient) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	body, jsonBody, err := c.doRequest(ctx, http.MethodPut, "orders", req, true)
	if err != nil {
		return nil, err
	}

	if !jsonBody {
		return &CreateOrderResponse{Raw: body}, nil
	}

	var result CreateOrderResponse
	if err := json.Unmarshal(body, &result); err != nil {
		// Not a JSON order record after all; treat as inline document.
		return &CreateOrderResponse{Raw: body}, nil
	}
	return &result, nil
}

// GetOrderSummary fetches the manifest summary document for an order. The
// response is normally the document itself; a JSON body means the API is
// reporting errors.
func (c *HTTPAPIClient) GetOrderSummary(ctx context.Context, accountNumber, orderID string) ([]byte, error) {
	path := fmt.Sprintf("accounts/%s/orders/%s/summary", accountNumber, orderID)
	body, jsonBody, err := c.doRequest(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}

	if jsonBody {
		var result struct {
			Errors []ResponseError `json:"errors"`
		}
		if err := json.Unmarshal(body, &result); err == nil {
			if err := firstError(result.Errors); err != nil {
				return nil, err
			}
		}
	}
	return body, nil
}

// DeleteShipment deletes an unmanifested shipment.
func (c *HTTPAPIClient) DeleteShipment(ctx context.Context, shipmentID string) (*DeleteShipmentResponse, error) {
	body, jsonBody, err := c.doRequest(ctx, http.MethodDelete, "shipments/"+shipmentID, nil, true)
	if err != nil {
		return nil, err
	}

	result := &DeleteShipmentResponse{}
	if jsonBody && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return nil, fmt.Errorf("failed to decode delete response: %w", err)
		}
	}
	return result, nil
}

// doRequest performs an HTTP request with authentication headers and returns
// the response body plus whether it is JSON. Non-2xx responses are converted
// into errors.
func (c *HTTPAPIClient) doRequest(ctx context.Context, method, path string, reqBody interface{}, includeAccount bool) ([]byte, bool, error) {
	url := c.baseURL + c.basePath + path

	var bodyReader io.Reader
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return nil, false, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.apiKey, c.apiPassword)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "tournevent-auspost/1.0")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if includeAccount {
		req.Header.Set("Account-Number", c.accountNumber)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read response body: %w", err)
	}

	jsonBody := isJSONBody(resp.Header.Get("Content-Type"), body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, jsonBody, c.parseError(resp.StatusCode, body)
	}

	return body, jsonBody, nil
}

// parseError extracts error information from a non-2xx response body.
func (c *HTTPAPIClient) parseError(statusCode int, body []byte) error {
	var errResp struct {
		Errors []ResponseError `json:"errors"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && len(errResp.Errors) > 0 {
		apiErr := NewAPIError(errResp.Errors[0].Code, errResp.Errors[0].Message)
		if apiErr.Code == "" {
			apiErr.Code = fmt.Sprintf("HTTP_%d", statusCode)
		}
		return apiErr
	}

	var simpleErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &simpleErr); err == nil {
		msg := simpleErr.Error
		if msg == "" {
			msg = simpleErr.Message
		}
		if msg != "" {
			return NewAPIError(fmt.Sprintf("HTTP_%d", statusCode), msg)
		}
	}

	return NewAPIError(fmt.Sprintf("HTTP_%d", statusCode), strings.TrimSpace(string(body)))
}

// isJSONBody reports whether a response body should be treated as JSON,
// either by content type or by shape. The labels and summary endpoints can
// answer with inline binary documents.
func isJSONBody(contentType string, body []byte) bool {
	if strings.Contains(contentType, "application/json") {
		return true
	}
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
