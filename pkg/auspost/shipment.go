package auspost

import (
	"context"
	"time"
)

// Shipment is a mutable aggregate of one or more parcels between two
// addresses. The expected lifecycle is build (SetFrom/SetTo/AddParcel),
// quote, pick a product, then lodge exactly once. Lodging assigns ShipmentID
// and the per-parcel tracking identifiers.
type Shipment struct {
	ShipmentReference    string
	CustomerReference1   string
	CustomerReference2   string
	EmailTrackingEnabled bool
	From                 *Address
	To                   *Address
	Parcels              []*Parcel
	DeliveryInstructions string

	// ProductID selects the postage product for lodgement, normally taken
	// from a Quote.
	ProductID string

	ShipmentID string
	LodgedAt   time.Time

	client *Client
}

// SetFrom sets the sender address.
func (s *Shipment) SetFrom(address *Address) *Shipment {
	s.From = address
	return s
}

// SetTo sets the delivery address.
func (s *Shipment) SetTo(address *Address) *Shipment {
	s.To = address
	return s
}

// AddParcel appends a parcel to the shipment.
func (s *Shipment) AddParcel(parcel *Parcel) *Shipment {
	s.Parcels = append(s.Parcels, parcel)
	return s
}

// GetQuotes prices the shipment across the available postage products. Only
// postcode and country are passed through to pricing; quoting does not
// require full addresses.
func (s *Shipment) GetQuotes(ctx context.Context) ([]*Quote, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	input := &QuoteInput{
		From: RateLocation{
			Postcode: s.From.Postcode,
			Country:  s.From.Country,
		},
		To: RateLocation{
			Postcode: s.To.Postcode,
			Country:  s.To.Country,
		},
	}
	for _, parcel := range s.Parcels {
		input.Items = append(input.Items, RateItem{
			ItemReference: parcel.ItemReference,
			Length:        parcel.Length,
			Width:         parcel.Width,
			Height:        parcel.Height,
			Weight:        parcel.Weight,
			Value:         parcel.Value,
		})
	}
	return s.client.GetQuotes(ctx, input)
}

// Lodge submits the shipment to the carrier. On success the shipment id and
// lodgement time are recorded and every returned item is matched back to its
// parcel by item reference to store the item id and tracking identifiers.
// Returned items with no matching parcel are ignored. An API error list
// aborts before any shipment state is touched.
func (s *Shipment) Lodge(ctx context.Context) error {
	if err := s.validate(); err != nil {
		return err
	}

	spec := ShipmentSpec{
		ShipmentReference:    s.ShipmentReference,
		CustomerReference1:   s.CustomerReference1,
		CustomerReference2:   s.CustomerReference2,
		EmailTrackingEnabled: s.EmailTrackingEnabled,
		From: ShipmentAddress{
			Name:         s.From.Name,
			BusinessName: s.From.BusinessName,
			Lines:        s.From.Lines,
			Suburb:       s.From.Suburb,
			State:        s.From.State,
			Postcode:     s.From.Postcode,
			Country:      s.From.Country,
			Phone:        s.From.Phone,
			Email:        s.From.Email,
		},
		To: ShipmentAddress{
			Name:                 s.To.Name,
			BusinessName:         s.To.BusinessName,
			Lines:                s.To.Lines,
			Suburb:               s.To.Suburb,
			State:                s.To.State,
			Postcode:             s.To.Postcode,
			Country:              s.To.Country,
			Phone:                s.To.Phone,
			Email:                s.To.Email,
			DeliveryInstructions: s.DeliveryInstructions,
		},
	}
	for _, parcel := range s.Parcels {
		item := ShipmentItem{
			ItemReference:        parcel.ItemReference,
			ProductID:            s.ProductID,
			Length:               parcel.Length,
			Height:               parcel.Height,
			Width:                parcel.Width,
			Weight:               parcel.Weight,
			AuthorityToLeave:     parcel.AuthorityToLeave,
			AllowPartialDelivery: parcel.AllowPartialDelivery,
			PackagingType:        parcel.PackagingType,
		}
		if parcel.Value > 0 {
			item.Features = map[string]Feature{
				"TRANSIT_COVER": {Attributes: FeatureAttributes{CoverAmount: parcel.Value}},
			}
		}
		spec.Items = append(spec.Items, item)
	}

	resp, err := s.client.lodgeShipments(ctx, &CreateShipmentsRequest{Shipments: spec})
	if err != nil {
		return err
	}

	for _, shipment := range resp.Shipments {
		s.ShipmentID = shipment.ShipmentID
		s.LodgedAt = parseAPITime(shipment.ShipmentCreationDate)
		for _, item := range shipment.Items {
			for _, parcel := range s.Parcels {
				if parcel.ItemReference != item.ItemReference {
					continue
				}
				parcel.ItemID = item.ItemID
				parcel.TrackingArticleID = item.TrackingDetails.ArticleID
				parcel.TrackingConsignmentID = item.TrackingDetails.ConsignmentID
			}
		}
	}
	return nil
}

// GetLabel returns the label URL for this lodged shipment.
func (s *Shipment) GetLabel(ctx context.Context, labelType *LabelType) (string, error) {
	if s.ShipmentID == "" {
		return "", ErrNotLodged
	}
	return s.client.GetLabels(ctx, []string{s.ShipmentID}, labelType)
}

func (s *Shipment) validate() error {
	if s.From == nil || s.To == nil {
		return ErrMissingAddress
	}
	if len(s.Parcels) == 0 {
		return ErrNoParcels
	}
	return nil
}
