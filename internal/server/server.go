// Package server exposes the Australia Post client as a small JSON HTTP
// service for merchant-side applications.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/auspost/internal/telemetry"
	"github.com/tournevent/auspost/pkg/auspost"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP server fronting the Australia Post client.
type Server struct {
	port    int
	client  *auspost.Client
	logger  *otelzap.Logger
	metrics *telemetry.Metrics
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance.
func New(cfg Config, client *auspost.Client, logger *otelzap.Logger) *Server {
	return &Server{
		port:    cfg.Port,
		client:  client,
		logger:  logger,
		metrics: telemetry.NewMetrics(),
	}
}

// NewWithMetrics creates a server with externally managed metrics, used by
// tests to avoid duplicate prometheus registration.
func NewWithMetrics(cfg Config, client *auspost.Client, logger *otelzap.Logger, metrics *telemetry.Metrics) *Server {
	return &Server{
		port:    cfg.Port,
		client:  client,
		logger:  logger,
		metrics: metrics,
	}
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/quotes", s.handleQuotes)
	mux.HandleFunc("POST /v1/shipments", s.handleLodge)
	mux.HandleFunc("DELETE /v1/shipments/{id}", s.handleDeleteShipment)
	mux.HandleFunc("POST /v1/labels", s.handleLabels)
	mux.HandleFunc("POST /v1/orders", s.handleOrders)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// ============================================================================
// Request/response types
// ============================================================================

type errorResponse struct {
	Error string `json:"error"`
}

type locationRequest struct {
	Postcode string `json:"postcode"`
	Country  string `json:"country,omitempty"`
	State    string `json:"state,omitempty"`
}

type quoteItemRequest struct {
	ItemReference string  `json:"item_reference,omitempty"`
	Length        float64 `json:"length"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Weight        float64 `json:"weight"`
	Value         float64 `json:"value,omitempty"`
}

type quotesRequest struct {
	From  locationRequest    `json:"from"`
	To    locationRequest    `json:"to"`
	Items []quoteItemRequest `json:"items"`
}

type quoteResult struct {
	ProductID             string  `json:"product_id"`
	ProductType           string  `json:"product_type"`
	SignatureOnDelivery   bool    `json:"signature_on_delivery_option"`
	AuthorityToLeave      bool    `json:"authority_to_leave_option"`
	DangerousGoodsAllowed bool    `json:"dangerous_goods_allowed"`
	PriceIncGST           float64 `json:"price_inc_gst"`
	PriceExcGST           float64 `json:"price_exc_gst"`
}

type quotesResponse struct {
	Quotes []quoteResult `json:"quotes"`
}

type lodgeRequest struct {
	ShipmentReference    string           `json:"shipment_reference,omitempty"`
	CustomerReference1   string           `json:"customer_reference_1,omitempty"`
	CustomerReference2   string           `json:"customer_reference_2,omitempty"`
	DeliveryInstructions string           `json:"delivery_instructions,omitempty"`
	ProductID            string           `json:"product_id"`
	EmailTrackingEnabled *bool            `json:"email_tracking_enabled,omitempty"`
	From                 map[string]any   `json:"from"`
	To                   map[string]any   `json:"to"`
	Parcels              []map[string]any `json:"parcels"`
}

type lodgedParcelResult struct {
	ItemReference         string `json:"item_reference"`
	ItemID                string `json:"item_id"`
	TrackingArticleID     string `json:"tracking_article_id"`
	TrackingConsignmentID string `json:"tracking_consignment_id"`
}

type lodgeResponse struct {
	ShipmentID string               `json:"shipment_id"`
	LodgedAt   string               `json:"lodged_at"`
	Parcels    []lodgedParcelResult `json:"parcels"`
}

type labelsRequest struct {
	ShipmentIDs []string `json:"shipment_ids"`
	Layout      string   `json:"layout,omitempty"`
	Format      string   `json:"format,omitempty"`
	Branded     *bool    `json:"branded,omitempty"`
	LeftOffset  int      `json:"left_offset,omitempty"`
	TopOffset   int      `json:"top_offset,omitempty"`
}

type labelsResponse struct {
	URL string `json:"url"`
}

type ordersRequest struct {
	ShipmentIDs []string `json:"shipment_ids"`
}

type ordersResponse struct {
	OrderID      string `json:"order_id"`
	CreationDate string `json:"creation_date"`
	ManifestPDF  []byte `json:"manifest_pdf,omitempty"`
}

// ============================================================================
// Handlers
// ============================================================================

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req quotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	input := &auspost.QuoteInput{
		From: auspost.RateLocation{Postcode: req.From.Postcode, Country: req.From.Country, State: req.From.State},
		To:   auspost.RateLocation{Postcode: req.To.Postcode, Country: req.To.Country, State: req.To.State},
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, auspost.RateItem{
			ItemReference: item.ItemReference,
			Length:        item.Length,
			Width:         item.Width,
			Height:        item.Height,
			Weight:        item.Weight,
			Value:         item.Value,
		})
	}

	quotes, err := s.client.GetQuotes(r.Context(), input)
	if err != nil {
		s.finish(w, "get_quotes", start, err)
		return
	}

	resp := quotesResponse{Quotes: make([]quoteResult, 0, len(quotes))}
	for _, q := range quotes {
		resp.Quotes = append(resp.Quotes, quoteResult{
			ProductID:             q.ProductID,
			ProductType:           q.ProductType,
			SignatureOnDelivery:   q.SignatureOnDelivery,
			AuthorityToLeave:      q.AuthorityToLeave,
			DangerousGoodsAllowed: q.DangerousGoodsAllowed,
			PriceIncGST:           q.PriceIncGST,
			PriceExcGST:           q.PriceExcGST,
		})
	}

	s.metrics.RecordRequest("get_quotes", "ok", time.Since(start).Seconds())
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLodge(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req lodgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	shipment := s.client.NewShipment().
		SetFrom(auspost.NewAddress(req.From)).
		SetTo(auspost.NewAddress(req.To))
	shipment.ShipmentReference = req.ShipmentReference
	shipment.CustomerReference1 = req.CustomerReference1
	shipment.CustomerReference2 = req.CustomerReference2
	shipment.DeliveryInstructions = req.DeliveryInstructions
	shipment.ProductID = req.ProductID
	if req.EmailTrackingEnabled != nil {
		shipment.EmailTrackingEnabled = *req.EmailTrackingEnabled
	}
	for _, details := range req.Parcels {
		shipment.AddParcel(auspost.NewParcel(details))
	}

	if err := shipment.Lodge(r.Context()); err != nil {
		s.finish(w, "lodge_shipment", start, err)
		return
	}

	resp := lodgeResponse{
		ShipmentID: shipment.ShipmentID,
		LodgedAt:   shipment.LodgedAt.Format(time.RFC3339),
	}
	for _, parcel := range shipment.Parcels {
		resp.Parcels = append(resp.Parcels, lodgedParcelResult{
			ItemReference:         parcel.ItemReference,
			ItemID:                parcel.ItemID,
			TrackingArticleID:     parcel.TrackingArticleID,
			TrackingConsignmentID: parcel.TrackingConsignmentID,
		})
	}

	s.metrics.RecordRequest("lodge_shipment", "ok", time.Since(start).Seconds())
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDeleteShipment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	shipmentID := r.PathValue("id")
	if err := s.client.DeleteShipment(r.Context(), shipmentID); err != nil {
		s.finish(w, "delete_shipment", start, err)
		return
	}

	s.metrics.RecordRequest("delete_shipment", "ok", time.Since(start).Seconds())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req labelsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	labelType := auspost.NewLabelType()
	if req.Layout != "" {
		labelType.LayoutType = req.Layout
	}
	if req.Format != "" {
		labelType.Format = req.Format
	}
	if req.Branded != nil {
		labelType.Branded = *req.Branded
	}
	labelType.LeftOffset = req.LeftOffset
	labelType.TopOffset = req.TopOffset

	url, err := s.client.GetLabels(r.Context(), req.ShipmentIDs, labelType)
	if err != nil {
		s.finish(w, "get_labels", start, err)
		return
	}

	s.metrics.RecordRequest("get_labels", "ok", time.Since(start).Seconds())
	s.writeJSON(w, http.StatusOK, labelsResponse{URL: url})
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ordersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	order, err := s.client.CreateOrder(r.Context(), req.ShipmentIDs)
	if err != nil {
		s.finish(w, "create_order", start, err)
		return
	}

	s.metrics.RecordRequest("create_order", "ok", time.Since(start).Seconds())
	s.writeJSON(w, http.StatusOK, ordersResponse{
		OrderID:      order.OrderID,
		CreationDate: order.CreationDate.Format(time.RFC3339),
		ManifestPDF:  order.ManifestPDF,
	})
}

// ============================================================================
// Helpers
// ============================================================================

// finish reports a failed carrier operation: validation sentinels map to 400,
// everything else surfaces as an upstream failure.
func (s *Server) finish(w http.ResponseWriter, operation string, start time.Time, err error) {
	s.metrics.RecordRequest(operation, "error", time.Since(start).Seconds())
	s.metrics.RecordError(operation)
	s.logger.Error("Operation failed", zap.String("operation", operation), zap.Error(err))

	status := http.StatusBadGateway
	switch {
	case errors.Is(err, auspost.ErrMissingAddress),
		errors.Is(err, auspost.ErrNoParcels),
		errors.Is(err, auspost.ErrNoShipments),
		errors.Is(err, auspost.ErrNotLodged):
		status = http.StatusBadRequest
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}
