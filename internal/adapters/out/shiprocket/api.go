package shiprocket

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"fulfillment/internal/core/ports"
)

// orderDateLayout is the date format the carrier expects on order creation.
const orderDateLayout = "2006-01-02 15:04"

type createOrderItem struct {
	Name         string  `json:"name"`
	SKU          string  `json:"sku"`
	Units        int     `json:"units"`
	SellingPrice float64 `json:"selling_price"`
}

type createOrderRequest struct {
	OrderID         string            `json:"order_id"`
	OrderDate       string            `json:"order_date"`
	BillingCustomer string            `json:"billing_customer_name"`
	BillingAddress  string            `json:"billing_address"`
	BillingCity     string            `json:"billing_city"`
	BillingState    string            `json:"billing_state"`
	BillingPincode  string            `json:"billing_pincode"`
	BillingCountry  string            `json:"billing_country"`
	BillingPhone    string            `json:"billing_phone"`
	ShippingIsBill  bool              `json:"shipping_is_billing"`
	OrderItems      []createOrderItem `json:"order_items"`
	PaymentMethod   string            `json:"payment_method"`
	SubTotal        float64           `json:"sub_total"`
	Weight          float64           `json:"weight"`
}

type createOrderResponse struct {
	OrderID    int64  `json:"order_id"`
	ShipmentID int64  `json:"shipment_id"`
	Status     string `json:"status"`
}

// CreateShipment registers the order with the carrier and returns the
// carrier-side identifiers.
func (c *Client) CreateShipment(ctx context.Context, req ports.CreateShipmentRequest) (ports.CreateShipmentResult, error) {
	subTotal := 0.0
	items := make([]createOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, createOrderItem{
			Name:         item.Name,
			SKU:          item.Name,
			Units:        item.Quantity,
			SellingPrice: item.Price,
		})
		subTotal += item.Price * float64(item.Quantity)
	}

	paymentMethod := "Prepaid"
	if req.CODAmount > 0 {
		paymentMethod = "COD"
	}

	body := createOrderRequest{
		OrderID:         req.OrderID,
		OrderDate:       req.OrderDate.Format(orderDateLayout),
		BillingCustomer: req.CustomerName,
		BillingAddress:  req.AddressLine1,
		BillingCity:     req.City,
		BillingState:    req.State,
		BillingPincode:  req.Pincode,
		BillingCountry:  "India",
		BillingPhone:    req.CustomerPhone,
		ShippingIsBill:  true,
		OrderItems:      items,
		PaymentMethod:   paymentMethod,
		SubTotal:        subTotal,
		Weight:          req.WeightKg,
	}

	var resp createOrderResponse
	failure, err := c.do(ctx, "create_shipment", http.MethodPost, "/v1/external/orders/create/adhoc", body, &resp)
	if err != nil {
		return ports.CreateShipmentResult{}, err
	}
	if failure != nil {
		return ports.CreateShipmentResult{Failure: failure}, nil
	}

	return ports.CreateShipmentResult{
		ProviderOrderID: strconv.FormatInt(resp.OrderID, 10),
		ShipmentID:      strconv.FormatInt(resp.ShipmentID, 10),
	}, nil
}

type assignAWBRequest struct {
	ShipmentID string `json:"shipment_id"`
}

type assignAWBResponse struct {
	AWBAssignStatus int `json:"awb_assign_status"`
	Response        struct {
		Data struct {
			AWBCode     string `json:"awb_code"`
			CourierName string `json:"courier_name"`
		} `json:"data"`
	} `json:"response"`
}

// GenerateAWB asks the carrier to assign a courier and waybill number to an
// existing shipment.
func (c *Client) GenerateAWB(ctx context.Context, shipmentID string) (ports.AWBResult, error) {
	var resp assignAWBResponse
	failure, err := c.do(ctx, "generate_awb", http.MethodPost, "/v1/external/courier/assign/awb",
		assignAWBRequest{ShipmentID: shipmentID}, &resp)
	if err != nil {
		return ports.AWBResult{}, err
	}
	if failure != nil {
		return ports.AWBResult{Failure: failure}, nil
	}

	if resp.AWBAssignStatus != 1 || resp.Response.Data.AWBCode == "" {
		// A 200 with no waybill means no courier accepted the shipment
		// right now.
		return ports.AWBResult{Failure: &ports.Failure{
			Kind:       ports.FailureTransient,
			StatusCode: http.StatusOK,
			Message:    "no courier assigned",
		}}, nil
	}

	return ports.AWBResult{
		AWBCode:     resp.Response.Data.AWBCode,
		CourierName: resp.Response.Data.CourierName,
	}, nil
}

type shipmentIDsRequest struct {
	ShipmentIDs []string `json:"shipment_id"`
}

type labelResponse struct {
	LabelCreated int    `json:"label_created"`
	LabelURL     string `json:"label_url"`
}

// GenerateLabel produces the shipping label PDF for a shipment.
func (c *Client) GenerateLabel(ctx context.Context, shipmentID string) (ports.DocumentResult, error) {
	var resp labelResponse
	failure, err := c.do(ctx, "generate_label", http.MethodPost, "/v1/external/courier/generate/label",
		shipmentIDsRequest{ShipmentIDs: []string{shipmentID}}, &resp)
	if err != nil {
		return ports.DocumentResult{}, err
	}
	if failure != nil {
		return ports.DocumentResult{Failure: failure}, nil
	}
	if resp.LabelURL == "" {
		return ports.DocumentResult{Failure: &ports.Failure{
			Kind:       ports.FailureTransient,
			StatusCode: http.StatusOK,
			Message:    "label not ready",
		}}, nil
	}

	return ports.DocumentResult{URL: resp.LabelURL}, nil
}

type invoiceRequest struct {
	IDs []string `json:"ids"`
}

type invoiceResponse struct {
	IsInvoiceCreated bool   `json:"is_invoice_created"`
	InvoiceURL       string `json:"invoice_url"`
}

// GenerateInvoice produces the tax invoice PDF for a carrier order.
func (c *Client) GenerateInvoice(ctx context.Context, providerOrderID string) (ports.DocumentResult, error) {
	var resp invoiceResponse
	failure, err := c.do(ctx, "generate_invoice", http.MethodPost, "/v1/external/orders/print/invoice",
		invoiceRequest{IDs: []string{providerOrderID}}, &resp)
	if err != nil {
		return ports.DocumentResult{}, err
	}
	if failure != nil {
		return ports.DocumentResult{Failure: failure}, nil
	}
	if resp.InvoiceURL == "" {
		return ports.DocumentResult{Failure: &ports.Failure{
			Kind:       ports.FailureTransient,
			StatusCode: http.StatusOK,
			Message:    "invoice not ready",
		}}, nil
	}

	return ports.DocumentResult{URL: resp.InvoiceURL}, nil
}

type manifestResponse struct {
	ManifestURL string `json:"manifest_url"`
}

// GenerateManifest produces the pickup manifest for a shipment.
func (c *Client) GenerateManifest(ctx context.Context, shipmentID string) (ports.DocumentResult, error) {
	var resp manifestResponse
	failure, err := c.do(ctx, "generate_manifest", http.MethodPost, "/v1/external/manifests/generate",
		shipmentIDsRequest{ShipmentIDs: []string{shipmentID}}, &resp)
	if err != nil {
		return ports.DocumentResult{}, err
	}
	if failure != nil {
		return ports.DocumentResult{Failure: failure}, nil
	}
	if resp.ManifestURL == "" {
		return ports.DocumentResult{Failure: &ports.Failure{
			Kind:       ports.FailureTransient,
			StatusCode: http.StatusOK,
			Message:    "manifest not ready",
		}}, nil
	}

	return ports.DocumentResult{URL: resp.ManifestURL}, nil
}

type trackResponse struct {
	TrackingData struct {
		ShipmentStatus string `json:"shipment_status"`
		ShipmentTrack  []struct {
			CurrentStatus string `json:"current-status"`
		} `json:"shipment_track"`
		ShipmentTrackActivities []struct {
			Date     string `json:"date"`
			Activity string `json:"activity"`
			Status   string `json:"sr-status-label"`
			Location string `json:"location"`
		} `json:"shipment_track_activities"`
	} `json:"tracking_data"`
}

// trackTimeLayout is the timestamp format on tracking activities.
const trackTimeLayout = "2006-01-02 15:04:05"

// TrackShipment fetches the checkpoint history for a waybill.
func (c *Client) TrackShipment(ctx context.Context, awbCode string) (ports.TrackResult, error) {
	var resp trackResponse
	failure, err := c.do(ctx, "track_shipment", http.MethodGet,
		"/v1/external/courier/track/awb/"+url.PathEscape(awbCode), nil, &resp)
	if err != nil {
		return ports.TrackResult{}, err
	}
	if failure != nil {
		return ports.TrackResult{Failure: failure}, nil
	}

	scans := make([]ports.TrackingScan, 0, len(resp.TrackingData.ShipmentTrackActivities))
	for _, activity := range resp.TrackingData.ShipmentTrackActivities {
		at, parseErr := time.Parse(trackTimeLayout, activity.Date)
		if parseErr != nil {
			c.logger.Warn("skipping scan with unparseable timestamp",
				slog.String("awb_code", awbCode), slog.String("date", activity.Date))
			continue
		}
		status := activity.Status
		if status == "" {
			status = activity.Activity
		}
		scans = append(scans, ports.TrackingScan{
			StatusCode: status,
			Location:   activity.Location,
			At:         at,
		})
	}

	current := resp.TrackingData.ShipmentStatus
	if current == "" && len(resp.TrackingData.ShipmentTrack) > 0 {
		current = resp.TrackingData.ShipmentTrack[0].CurrentStatus
	}

	return ports.TrackResult{
		CurrentStatusCode: current,
		Scans:             scans,
	}, nil
}

type cancelRequest struct {
	IDs []string `json:"ids"`
}

// CancelShipment cancels the carrier-side order.
func (c *Client) CancelShipment(ctx context.Context, providerOrderID string) (ports.CancelResult, error) {
	failure, err := c.do(ctx, "cancel_shipment", http.MethodPost, "/v1/external/orders/cancel",
		cancelRequest{IDs: []string{providerOrderID}}, nil)
	if err != nil {
		return ports.CancelResult{}, err
	}

	return ports.CancelResult{Failure: failure}, nil
}

type pickupRequest struct {
	ShipmentIDs []string `json:"shipment_id"`
}

type pickupResponse struct {
	PickupStatus   int `json:"pickup_status"`
	ResponseDetail struct {
		PickupScheduledDate string `json:"pickup_scheduled_date"`
	} `json:"response"`
}

// SchedulePickup books a courier pickup slot for a shipment.
func (c *Client) SchedulePickup(ctx context.Context, shipmentID string) (ports.PickupResult, error) {
	var resp pickupResponse
	failure, err := c.do(ctx, "schedule_pickup", http.MethodPost, "/v1/external/courier/generate/pickup",
		pickupRequest{ShipmentIDs: []string{shipmentID}}, &resp)
	if err != nil {
		return ports.PickupResult{}, err
	}
	if failure != nil {
		return ports.PickupResult{Failure: failure}, nil
	}

	scheduledAt, parseErr := time.Parse(trackTimeLayout, resp.ResponseDetail.PickupScheduledDate)
	if parseErr != nil {
		// The slot is booked either way; fall back to now so the order
		// still records that a pickup exists.
		scheduledAt = time.Now().UTC()
	}

	return ports.PickupResult{ScheduledAt: scheduledAt}, nil
}

type serviceabilityResponse struct {
	Data struct {
		AvailableCourierCompanies []struct {
			CourierName           string  `json:"courier_name"`
			Rate                  float64 `json:"rate"`
			EstimatedDeliveryDays string  `json:"estimated_delivery_days"`
		} `json:"available_courier_companies"`
	} `json:"data"`
}

// CheckServiceability lists couriers able to carry a parcel between two
// pincodes.
func (c *Client) CheckServiceability(
	ctx context.Context, pickupPincode, deliveryPincode string, weightKg float64, cod bool,
) (ports.ServiceabilityResult, error) {
	codFlag := "0"
	if cod {
		codFlag = "1"
	}

	query := url.Values{
		"pickup_postcode":   {pickupPincode},
		"delivery_postcode": {deliveryPincode},
		"weight":            {fmt.Sprintf("%g", weightKg)},
		"cod":               {codFlag},
	}

	var resp serviceabilityResponse
	failure, err := c.do(ctx, "check_serviceability", http.MethodGet,
		"/v1/external/courier/serviceability/?"+query.Encode(), nil, &resp)
	if err != nil {
		return ports.ServiceabilityResult{}, err
	}
	if failure != nil {
		return ports.ServiceabilityResult{Failure: failure}, nil
	}

	options := make([]ports.ServiceabilityOption, 0, len(resp.Data.AvailableCourierCompanies))
	for _, company := range resp.Data.AvailableCourierCompanies {
		days, _ := strconv.Atoi(company.EstimatedDeliveryDays)
		options = append(options, ports.ServiceabilityOption{
			CourierName:   company.CourierName,
			Rate:          company.Rate,
			EstimatedDays: days,
		})
	}

	return ports.ServiceabilityResult{
		Serviceable: len(options) > 0,
		Options:     options,
	}, nil
}
