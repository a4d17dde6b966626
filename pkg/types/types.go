package types

import (
	"time"

	"github.com/coldchain-labs/inbound/pkg/validate"
)

// Temperature classes accepted by the Arcadia order form.
const (
	TemperatureFreezer       = "FREEZER"
	TemperatureCooler        = "COOLER"
	TemperatureFreezerCrates = "FREEZER CRATES"
)

// OrderStatus represents the outcome of a single order submission
type OrderStatus string

const (
	OrderStatusSuccess OrderStatus = "success"
	OrderStatusFailed  OrderStatus = "failed"
)

// BatchStatus represents the aggregate outcome of a batch or pipeline run
type BatchStatus string

const (
	BatchStatusSuccess BatchStatus = "success"
	BatchStatusPartial BatchStatus = "partial"
	BatchStatusFailed  BatchStatus = "failed"
)

// Stage identifies the pipeline phase where a failure occurred
type Stage string

const (
	StageExtraction Stage = "extraction"
	StageSubmission Stage = "submission"
	StageUnknown    Stage = "unknown"
)

// ProductLine is one SKU + quantity + temperature class within an order
type ProductLine struct {
	ProductCode string `json:"product_code"`
	Quantity    int    `json:"quantity"`
	Temperature string `json:"temperature"`
}

// Order is one inbound shipment: a master bill of lading and its products
type Order struct {
	Date                    string        `json:"date,omitempty"`
	MasterBillNumber        string        `json:"master_bill_number"`
	SupplyingFacilityNumber string        `json:"supplying_facility_number,omitempty"`
	SplitLoad               bool          `json:"split_load"`
	Products                []ProductLine `json:"products"`
}

// Validate checks the order's invariants: a 9-digit master bill and at
// least one product with a valid code and quantity.
func (o *Order) Validate() error {
	if err := validate.MasterBillNumber(o.MasterBillNumber); err != nil {
		return err
	}
	if len(o.Products) == 0 {
		return validate.Errorf("order %s must contain at least one product", o.MasterBillNumber)
	}
	for _, p := range o.Products {
		if err := validate.ProductCode(p.ProductCode); err != nil {
			return err
		}
		if err := validate.Quantity(p.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Facility returns the supplying facility number, defaulting to the
// master bill number when unset.
func (o *Order) Facility() string {
	if o.SupplyingFacilityNumber != "" {
		return o.SupplyingFacilityNumber
	}
	return o.MasterBillNumber
}

// EmailExtraction is the result of one mailbox scan
type EmailExtraction struct {
	EmailSubject string    `json:"email_subject"`
	Orders       []Order   `json:"orders"`
	ExtractedAt  time.Time `json:"extracted_at"`
}

// OrderCreationRequest is the normalized single-product submission unit.
// One request is issued per product line, never one per order.
type OrderCreationRequest struct {
	MasterBillNumber        string `json:"master_bill_number"`
	ProductCode             string `json:"product_code"`
	Quantity                int    `json:"quantity"`
	Temperature             string `json:"temperature"`
	SupplyingFacilityNumber string `json:"supplying_facility_number,omitempty"`
	DeliveryDate            string `json:"delivery_date,omitempty"`
	DeliveryCompany         string `json:"delivery_company,omitempty"`
	Comments                string `json:"comments,omitempty"`
}

// Normalize trims the identifying fields, canonicalizes the temperature
// and defaults the supplying facility number to the master bill number.
func (r *OrderCreationRequest) Normalize() {
	r.MasterBillNumber = validate.Trim(r.MasterBillNumber)
	r.ProductCode = validate.Trim(r.ProductCode)
	r.Temperature = validate.NormalizeTemperature(r.Temperature)
	if r.SupplyingFacilityNumber == "" {
		r.SupplyingFacilityNumber = r.MasterBillNumber
	}
}

// Validate checks the required fields. Normalize should be called first.
func (r *OrderCreationRequest) Validate() error {
	if err := validate.MasterBillNumber(r.MasterBillNumber); err != nil {
		return err
	}
	if err := validate.ProductCode(r.ProductCode); err != nil {
		return err
	}
	return validate.Quantity(r.Quantity)
}

// OrderResult is the outcome of one order submission
type OrderResult struct {
	Status           OrderStatus `json:"status"`
	MasterBillNumber string      `json:"master_bill_number"`
	ProductCode      string      `json:"product_code,omitempty"`
	Quantity         int         `json:"quantity,omitempty"`
	Temperature      string      `json:"temperature,omitempty"`
	ConfirmationID   string      `json:"confirmation_id,omitempty"`
	Error            string      `json:"error,omitempty"`
	Message          string      `json:"message,omitempty"`
	VideoPath        string      `json:"video_path,omitempty"`
}

// SubmissionResult aggregates the outcomes of one batch
type SubmissionResult struct {
	Status           BatchStatus   `json:"status"`
	OrdersSubmitted  int           `json:"orders_submitted"`
	OrdersFailed     int           `json:"orders_failed"`
	SuccessfulOrders []OrderResult `json:"successful_orders"`
	FailedOrders     []OrderResult `json:"failed_orders"`
	Error            string        `json:"error,omitempty"`
}

// DeriveBatchStatus maps a success/failure mix to the batch trichotomy:
// failed only when nothing succeeded, success only when nothing failed,
// partial otherwise.
func DeriveBatchStatus(succeeded, failed int) BatchStatus {
	switch {
	case failed == 0:
		return BatchStatusSuccess
	case succeeded > 0:
		return BatchStatusPartial
	default:
		return BatchStatusFailed
	}
}

// PipelineResult is the outcome of a full extract-and-submit run
type PipelineResult struct {
	Status           BatchStatus   `json:"status"`
	EmailSubject     string        `json:"email_subject,omitempty"`
	OrdersExtracted  int           `json:"orders_extracted"`
	OrdersSubmitted  int           `json:"orders_submitted"`
	OrdersFailed     int           `json:"orders_failed"`
	SuccessfulOrders []OrderResult `json:"successful_orders"`
	FailedOrders     []OrderResult `json:"failed_orders"`
	Error            string        `json:"error,omitempty"`
	Stage            Stage         `json:"stage,omitempty"`
}
