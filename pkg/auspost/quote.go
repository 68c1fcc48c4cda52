package auspost

import (
	"context"

	"go.uber.org/zap"
)

// RateLocation is the origin or destination of a quote request. Item pricing
// only needs postcode and country; state must also be set for the
// fuel-surcharge-inclusive pricing to be consulted.
type RateLocation struct {
	Postcode string
	Country  string
	State    string
	Suburb   string
}

// RateItem is one parcel line of a quote request. Value, when non-zero,
// attaches a TRANSIT_COVER feature for that amount.
type RateItem struct {
	ItemReference string
	Length        float64
	Width         float64
	Height        float64
	Weight        float64
	Value         float64
}

// QuoteInput is the input to Client.GetQuotes: an origin, a destination and
// an ordered list of items.
type QuoteInput struct {
	From  RateLocation
	To    RateLocation
	Items []RateItem
}

func (loc RateLocation) toWire() PriceLocation {
	return PriceLocation{
		Postcode: loc.Postcode,
		Country:  loc.Country,
		State:    loc.State,
		Suburb:   loc.Suburb,
	}
}

func (in *QuoteInput) toWire() *ItemPricesRequest {
	req := &ItemPricesRequest{
		From:  in.From.toWire(),
		To:    in.To.toWire(),
		Items: make([]PriceItem, 0, len(in.Items)),
	}
	for _, item := range in.Items {
		wire := PriceItem{
			ItemReference: item.ItemReference,
			Length:        item.Length,
			Height:        item.Height,
			Width:         item.Width,
			Weight:        item.Weight,
		}
		if item.Value > 0 {
			wire.Features = map[string]Feature{
				"TRANSIT_COVER": {Attributes: FeatureAttributes{CoverAmount: item.Value}},
			}
		}
		req.Items = append(req.Items, wire)
	}
	return req
}

// GetQuotes prices the input against every available postage product and
// aggregates the per-item price lines into one Quote per product, in the
// order products first appear in the response.
//
// For every price line the fuel-surcharge-inclusive total for that product is
// looked up; when available it replaces the running total for the product
// outright. Otherwise the line's bundled price is added for items after the
// first, or its standalone calculated price. Option flags are AND-ed across
// every occurrence of a product, so a flag reported false on any item stays
// false on the aggregate.
//
// Any error list on the response or on an item aborts the whole call; no
// partial quote list is ever returned.
func (c *Client) GetQuotes(ctx context.Context, input *QuoteInput) ([]*Quote, error) {
	ctx, span := c.startSpan(ctx, "auspost.GetQuotes")
	defer span.End()

	c.logger.Ctx(ctx).Info("Getting Australia Post quotes",
		zap.String("from_postcode", input.From.Postcode),
		zap.String("to_postcode", input.To.Postcode),
		zap.Int("item_count", len(input.Items)),
	)

	resp, err := c.apiClient.GetItemPrices(ctx, input.toWire())
	if err != nil {
		c.logger.Ctx(ctx).Error("Australia Post prices/items call failed", zap.Error(err))
		return nil, err
	}
	if err := firstError(resp.Errors); err != nil {
		return nil, err
	}

	var order []string
	byProduct := make(map[string]*Quote)

	for itemIndex, item := range resp.Items {
		if err := firstError(item.Errors); err != nil {
			return nil, err
		}
		for _, price := range item.Prices {
			incGST, excGST, surchargeOK := c.fuelSurchargeQuote(ctx, price.ProductID, input)

			quote, seen := byProduct[price.ProductID]
			if !seen {
				quote = &Quote{
					ProductID:             price.ProductID,
					ProductType:           price.ProductType,
					SignatureOnDelivery:   boolOption(price.Options.SignatureOnDelivery),
					AuthorityToLeave:      boolOption(price.Options.AuthorityToLeave),
					DangerousGoodsAllowed: boolOption(price.Options.DangerousGoodsAllowed),
				}
				byProduct[price.ProductID] = quote
				order = append(order, price.ProductID)
			}

			switch {
			case surchargeOK:
				// The surcharge-inclusive total is authoritative: it
				// replaces whatever has been summed so far rather than
				// adding to it. Last successful lookup wins.
				quote.PriceIncGST = incGST
				quote.PriceExcGST = excGST
			case price.BundledPrice != nil && itemIndex > 0:
				quote.PriceIncGST += *price.BundledPrice
				quote.PriceExcGST += derefFloat(price.BundledPriceExGST)
			default:
				quote.PriceIncGST += price.CalculatedPrice
				quote.PriceExcGST += price.CalculatedPriceExGST
			}

			// Flags only ever drop from true to false.
			if !boolOption(price.Options.SignatureOnDelivery) {
				quote.SignatureOnDelivery = false
			}
			if !boolOption(price.Options.AuthorityToLeave) {
				quote.AuthorityToLeave = false
			}
			if !boolOption(price.Options.DangerousGoodsAllowed) {
				quote.DangerousGoodsAllowed = false
			}
		}
	}

	quotes := make([]*Quote, 0, len(order))
	for _, productID := range order {
		quotes = append(quotes, byProduct[productID])
	}

	c.logger.Ctx(ctx).Info("Aggregated Australia Post quotes",
		zap.Int("product_count", len(quotes)),
	)
	return quotes, nil
}

// fuelSurchargeQuote fetches the fuel-surcharge-inclusive total for a single
// product over the same origin/destination/items, summing the shipment
// summaries in the response. The shipment pricing endpoint needs a state on
// both ends. Any failure means "no override available": ok is false and the
// caller falls back to line-item pricing. This call never aborts the parent
// quote request.
func (c *Client) fuelSurchargeQuote(ctx context.Context, productID string, input *QuoteInput) (incGST, excGST float64, ok bool) {
	if input.From.State == "" || input.To.State == "" {
		return 0, 0, false
	}

	items := make([]PriceItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, PriceItem{
			ProductID: productID,
			Length:    item.Length,
			Height:    item.Height,
			Width:     item.Width,
			Weight:    item.Weight,
		})
	}

	resp, err := c.apiClient.GetShipmentPrices(ctx, &ShipmentPricesRequest{
		Shipments: ShipmentPriceSpec{
			From:  input.From.toWire(),
			To:    input.To.toWire(),
			Items: items,
		},
	})
	if err != nil {
		c.logger.Ctx(ctx).Debug("Fuel surcharge quote unavailable",
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return 0, 0, false
	}
	if err := firstError(resp.Errors); err != nil {
		c.logger.Ctx(ctx).Debug("Fuel surcharge quote rejected",
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return 0, 0, false
	}

	for _, shipment := range resp.Shipments {
		incGST += shipment.ShipmentSummary.TotalCost
		excGST += shipment.ShipmentSummary.TotalCostExGST
	}
	return incGST, excGST, true
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
