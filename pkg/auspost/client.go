// Package auspost is a client SDK for the Australia Post Shipping and
// Tracking API: account lookup, rate quoting, shipment lodgement, label
// generation, order/manifest creation and shipment deletion.
package auspost

import (
	"context"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// accountNumberWidth is the zero-padded width the API expects for Australia
// Post account numbers. StarTrack accounts use the raw number instead.
const accountNumberWidth = 10

// Config holds Australia Post client configuration.
type Config struct {
	APIKey        string
	APIPassword   string
	AccountNumber string
	BaseURL       string
	TestMode      bool
	UseMock       bool
	Timeout       time.Duration
}

// Client is the Australia Post carrier client. It holds immutable credentials
// and delegates all HTTP work to its APIClient; calls are synchronous and
// safe to issue from a single logical flow.
type Client struct {
	config        Config
	accountNumber string // zero padded unless StarTrack mode
	rawAccount    string
	apiClient     APIClient
	logger        *otelzap.Logger
	tracer        trace.Tracer
}

// New creates a new Australia Post client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:       cfg.BaseURL,
			APIKey:        cfg.APIKey,
			APIPassword:   cfg.APIPassword,
			AccountNumber: padAccountNumber(cfg.AccountNumber),
			TestMode:      cfg.TestMode,
			Timeout:       cfg.Timeout,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new Australia Post client with a custom API
// client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{
		config:        cfg,
		accountNumber: padAccountNumber(cfg.AccountNumber),
		rawAccount:    cfg.AccountNumber,
		apiClient:     apiClient,
		logger:        logger,
		tracer:        tracer,
	}
}

// UseStarTrack switches the client into StarTrack mode, which addresses the
// account by its raw un-padded number.
func (c *Client) UseStarTrack() *Client {
	c.accountNumber = c.rawAccount
	return c
}

// AccountNumber returns the account number as sent to the API.
func (c *Client) AccountNumber() string {
	return c.accountNumber
}

// GetAccountDetails fetches the merchant account snapshot.
func (c *Client) GetAccountDetails(ctx context.Context) (*Account, error) {
	ctx, span := c.startSpan(ctx, "auspost.GetAccountDetails")
	defer span.End()

	c.logger.Ctx(ctx).Info("Getting Australia Post account details",
		zap.String("account_number", c.accountNumber),
	)

	resp, err := c.apiClient.GetAccount(ctx, c.accountNumber)
	if err != nil {
		c.logger.Ctx(ctx).Error("Australia Post account call failed", zap.Error(err))
		return nil, err
	}
	if err := firstError(resp.Errors); err != nil {
		return nil, err
	}

	account := &Account{
		AccountNumber:      resp.AccountNumber,
		Name:               resp.Name,
		ValidFrom:          parseAPITime(resp.ValidFrom),
		ValidTo:            parseAPITime(resp.ValidTo),
		Expired:            resp.Expired,
		MerchantLocationID: resp.MerchantLocationID,
		CreditBlocked:      resp.CreditBlocked,
		Raw:                resp,
	}
	for _, details := range resp.Addresses {
		account.Addresses = append(account.Addresses, NewAddress(details))
	}
	for _, details := range resp.Postage {
		account.PostageProducts = append(account.PostageProducts, NewPostageProduct(details))
	}
	return account, nil
}

// GetMerchantAddress returns the merchant location address from the account
// details, or ErrNoMerchantAddress when the account has none.
func (c *Client) GetMerchantAddress(ctx context.Context) (*Address, error) {
	account, err := c.GetAccountDetails(ctx)
	if err != nil {
		return nil, err
	}
	for _, address := range account.Addresses {
		if address.Type == AddressTypeMerchantLocation {
			return address, nil
		}
	}
	return nil, ErrNoMerchantAddress
}

// NewShipment starts a new empty shipment for quoting or lodging.
func (c *Client) NewShipment() *Shipment {
	return &Shipment{
		client:               c,
		EmailTrackingEnabled: true,
	}
}

// lodgeShipments submits a lodgement request and surfaces any API-reported
// error before the caller mutates its state.
func (c *Client) lodgeShipments(ctx context.Context, req *CreateShipmentsRequest) (*CreateShipmentsResponse, error) {
	ctx, span := c.startSpan(ctx, "auspost.LodgeShipments")
	defer span.End()

	c.logger.Ctx(ctx).Info("Lodging Australia Post shipment",
		zap.String("shipment_reference", req.Shipments.ShipmentReference),
		zap.Int("item_count", len(req.Shipments.Items)),
	)

	resp, err := c.apiClient.CreateShipments(ctx, req)
	if err != nil {
		c.logger.Ctx(ctx).Error("Australia Post shipments call failed", zap.Error(err))
		return nil, err
	}
	if err := firstError(resp.Errors); err != nil {
		return nil, err
	}
	return resp, nil
}

// labelGroups are the carrier service groups labels are requested for. The
// full set is always sent; the API picks the group each shipment belongs to.
var labelGroups = []string{
	"Parcel Post",
	"Express Post",
	"StarTrack",
	"Startrack Courier",
	"On Demand",
	"International",
	"Commercial",
}

// GetLabels requests labels for a set of lodged shipments and returns the
// first label URL, or an empty string when the API produced none.
func (c *Client) GetLabels(ctx context.Context, shipmentIDs []string, labelType *LabelType) (string, error) {
	ctx, span := c.startSpan(ctx, "auspost.GetLabels")
	defer span.End()

	if len(shipmentIDs) == 0 {
		return "", ErrNoShipments
	}
	if labelType == nil {
		labelType = NewLabelType()
	}

	c.logger.Ctx(ctx).Info("Getting Australia Post labels",
		zap.Strings("shipment_ids", shipmentIDs),
		zap.String("layout", labelType.LayoutType),
		zap.String("format", labelType.Format),
	)

	groups := make([]LabelGroup, 0, len(labelGroups))
	for _, group := range labelGroups {
		groups = append(groups, LabelGroup{
			Group:      group,
			Layout:     labelType.LayoutType,
			Branded:    labelType.Branded,
			LeftOffset: labelType.LeftOffset,
			TopOffset:  labelType.TopOffset,
		})
	}

	shipments := make([]ShipmentRef, 0, len(shipmentIDs))
	for _, id := range shipmentIDs {
		shipments = append(shipments, ShipmentRef{ShipmentID: id})
	}

	resp, err := c.apiClient.CreateLabels(ctx, &CreateLabelsRequest{
		WaitForLabelURL: true,
		Preferences: LabelPreferences{
			Type:   "PRINT",
			Format: labelType.Format,
			Groups: groups,
		},
		Shipments: shipments,
	})
	if err != nil {
		c.logger.Ctx(ctx).Error("Australia Post labels call failed", zap.Error(err))
		return "", err
	}
	if err := firstError(resp.Errors); err != nil {
		return "", err
	}

	for _, label := range resp.Labels {
		return label.URL, nil
	}
	return "", nil
}

// CreateOrder closes the given shipments into an order and attaches the
// manifest summary document. When the API answers the order call with an
// inline document instead of an order record, the order id is reported as
// "None" and the document is attached directly.
func (c *Client) CreateOrder(ctx context.Context, shipmentIDs []string) (*Order, error) {
	ctx, span := c.startSpan(ctx, "auspost.CreateOrder")
	defer span.End()

	if len(shipmentIDs) == 0 {
		return nil, ErrNoShipments
	}

	c.logger.Ctx(ctx).Info("Creating Australia Post order",
		zap.Strings("shipment_ids", shipmentIDs),
	)

	shipments := make([]ShipmentRef, 0, len(shipmentIDs))
	for _, id := range shipmentIDs {
		shipments = append(shipments, ShipmentRef{ShipmentID: id})
	}

	resp, err := c.apiClient.CreateOrder(ctx, &CreateOrderRequest{Shipments: shipments})
	if err != nil {
		c.logger.Ctx(ctx).Error("Australia Post orders call failed", zap.Error(err))
		return nil, err
	}

	if resp.Order == nil && len(resp.Errors) == 0 && len(resp.Raw) > 0 {
		return &Order{
			OrderID:      "None",
			CreationDate: time.Now(),
			ManifestPDF:  resp.Raw,
		}, nil
	}
	if err := firstError(resp.Errors); err != nil {
		return nil, err
	}
	if resp.Order == nil {
		return nil, NewAPIError("EMPTY_RESPONSE", "orders call returned no order")
	}

	manifest, err := c.apiClient.GetOrderSummary(ctx, c.accountNumber, resp.Order.OrderID)
	if err != nil {
		c.logger.Ctx(ctx).Error("Australia Post order summary call failed",
			zap.String("order_id", resp.Order.OrderID),
			zap.Error(err),
		)
		return nil, err
	}

	return &Order{
		OrderID:      resp.Order.OrderID,
		CreationDate: parseAPITime(resp.Order.OrderCreationDate),
		ManifestPDF:  manifest,
	}, nil
}

// DeleteShipment deletes a lodged, unmanifested shipment.
func (c *Client) DeleteShipment(ctx context.Context, shipmentID string) error {
	ctx, span := c.startSpan(ctx, "auspost.DeleteShipment")
	defer span.End()

	c.logger.Ctx(ctx).Info("Deleting Australia Post shipment",
		zap.String("shipment_id", shipmentID),
	)

	resp, err := c.apiClient.DeleteShipment(ctx, shipmentID)
	if err != nil {
		c.logger.Ctx(ctx).Error("Australia Post delete call failed", zap.Error(err))
		return err
	}
	return firstError(resp.Errors)
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if c.tracer == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, name)
	}
	return c.tracer.Start(ctx, name)
}

// padAccountNumber left-pads an account number with zeros to the width the
// API expects. Numbers already at or past the width pass through unchanged.
func padAccountNumber(account string) string {
	if len(account) >= accountNumberWidth {
		return account
	}
	return strings.Repeat("0", accountNumberWidth-len(account)) + account
}

// parseAPITime parses the timestamp formats the API uses, returning the zero
// time when nothing matches.
func parseAPITime(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
