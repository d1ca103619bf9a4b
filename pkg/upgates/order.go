package upgates

// YesNo is the API's string-encoded flag.
type YesNo string

const (
	No  YesNo = "0"
	Yes YesNo = "1"
)

// TimeLayout is the timestamp format of last_update_time and related filters.
const TimeLayout = "2006-01-02T15:04:05-07:00"

// Order is the central order document as exchanged with the API.
type Order struct {
	OrderNumber           string                 `json:"order_number,omitempty"`
	OrderID               int64                  `json:"order_id,omitempty"`
	CaseNumber            *string                `json:"case_number,omitempty"`
	ExternalOrderNumber   string                 `json:"external_order_number,omitempty"`
	UUID                  string                 `json:"uuid,omitempty"`
	LanguageID            string                 `json:"language_id,omitempty"`
	CurrencyID            string                 `json:"currency_id,omitempty"`
	DefaultCurrencyRate   float64                `json:"default_currency_rate,omitempty"`
	PricesWithVAT         *bool                  `json:"prices_with_vat_yn,omitempty"`
	StatusID              int64                  `json:"status_id,omitempty"`
	Status                string                 `json:"status,omitempty"`
	PaidDate              string                 `json:"paid_date,omitempty"`
	TrackingCode          string                 `json:"tracking_code,omitempty"`
	TrackingURL           string                 `json:"tracking_url,omitempty"`
	Statistics            *bool                  `json:"statistics_yn,omitempty"`
	Resolved              *bool                  `json:"resolved_yn,omitempty"`
	OSS                   *bool                  `json:"oss_yn,omitempty"`
	InternalNote          string                 `json:"internal_note,omitempty"`
	LastUpdateTime        string                 `json:"last_update_time,omitempty"`
	CreationTime          string                 `json:"creation_time,omitempty"`
	VariableSymbol        string                 `json:"variable_symbol,omitempty"`
	Dimensions            *OrderDimensions       `json:"dimensions,omitempty"`
	TotalWeight           float64                `json:"total_weight,omitempty"`
	OrderTotal            float64                `json:"order_total"`
	OrderTotalBeforeRound float64                `json:"order_total_before_round,omitempty"`
	OrderTotalRest        float64                `json:"order_total_rest,omitempty"`
	InvoiceNumber         string                 `json:"invoice_number,omitempty"`
	Origin                string                 `json:"origin,omitempty"`
	AdminURL              string                 `json:"admin_url,omitempty"`
	Customer              OrderCustomer          `json:"customer"`
	Products              []OrderProduct         `json:"products"`
	DiscountVoucher       Opaque                 `json:"discount_voucher,omitempty"`
	QuantityDiscount      *OrderQuantityDiscount `json:"quantity_discount,omitempty"`
	LoyaltyPoints         Opaque                 `json:"loyalty_points,omitempty"`
	Shipment              *OrderShipment         `json:"shipment,omitempty"`
	Payment               *OrderPayment          `json:"payment,omitempty"`
	Attachments           Opaque                 `json:"attachments,omitempty"`
	Metas                 []OrderMeta            `json:"metas,omitempty"`
}

// OrderCustomer holds the invoice address and, when PostalYN is Yes, a
// separate postal address.
type OrderCustomer struct {
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	FirstnameInvoice string `json:"firstname_invoice"`
	SurnameInvoice   string `json:"surname_invoice"`
	StreetInvoice    string `json:"street_invoice"`
	CityInvoice      string `json:"city_invoice"`
	StateInvoice     string `json:"state_invoice"`
	ZipInvoice       string `json:"zip_invoice"`
	CountryIDInvoice string `json:"country_id_invoice"`
	PostalYN         YesNo  `json:"postal_yn"`
	FirstnamePostal  string `json:"firstname_postal,omitempty"`
	SurnamePostal    string `json:"surname_postal,omitempty"`
	StreetPostal     string `json:"street_postal,omitempty"`
	CityPostal       string `json:"city_postal,omitempty"`
	StatePostal      string `json:"state_postal,omitempty"`
	ZipPostal        string `json:"zip_postal,omitempty"`
	CountryIDPostal  string `json:"country_id_postal,omitempty"`
	CompanyYN        YesNo  `json:"company_yn"`
	Company          string `json:"company,omitempty"`
	ICO              string `json:"ico,omitempty"`
	DIC              string `json:"dic,omitempty"`
	VATPayerYN       YesNo  `json:"vat_payer_yn"`
	PricelistName    string `json:"pricelist_name,omitempty"`
	PricelistPercent string `json:"pricelist_percent,omitempty"`
	CustomerNote     string `json:"customer_note,omitempty"`
}

// OrderProduct is one line item.
type OrderProduct struct {
	ProductID              int64              `json:"product_id,omitempty"`
	OptionSetID            int64              `json:"option_set_id,omitempty"`
	Type                   string             `json:"type,omitempty"`
	UUID                   string             `json:"uuid,omitempty"`
	ParentUUID             *string            `json:"parent_uuid,omitempty"`
	Code                   string             `json:"code"`
	CodeSupplier           *string            `json:"code_supplier,omitempty"`
	Supplier               *string            `json:"supplier,omitempty"`
	EAN                    *string            `json:"ean,omitempty"`
	Title                  string             `json:"title"`
	Adult                  *bool              `json:"adult_yn,omitempty"`
	Unit                   string             `json:"unit"`
	Length                 *string            `json:"length,omitempty"`
	LengthUnit             *string            `json:"length_unit,omitempty"`
	Quantity               float64            `json:"quantity"`
	PricePerUnit           float64            `json:"price_per_unit"`
	PricePerUnitWithVAT    float64            `json:"price_per_unit_with_vat,omitempty"`
	PricePerUnitWithoutVAT float64            `json:"price_per_unit_without_vat,omitempty"`
	Price                  float64            `json:"price"`
	PriceWithVAT           float64            `json:"price_with_vat,omitempty"`
	PriceWithoutVAT        float64            `json:"price_without_vat,omitempty"`
	VAT                    float64            `json:"vat"`
	BuyPrice               float64            `json:"buy_price,omitempty"`
	RecyclingFee           *string            `json:"recycling_fee,omitempty"`
	Weight                 float64            `json:"weight,omitempty"`
	Availability           string             `json:"availability,omitempty"`
	StockPosition          *string            `json:"stock_position,omitempty"`
	InvoiceInfo            string             `json:"invoice_info,omitempty"`
	Parameters             []ProductParameter `json:"parameters,omitempty"`
	Configurations         Opaque             `json:"configurations,omitempty"`
	Categories             []ProductCategory  `json:"categories,omitempty"`
	ImageURL               string             `json:"image_url,omitempty"`
}

// ProductParameter is a name/value annotation of a line item.
type ProductParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductCategory links a line item to a shop category.
type ProductCategory struct {
	CategoryID int64  `json:"category_id"`
	Code       string `json:"code"`
}

// OrderDimensions is the parcel size of an order.
type OrderDimensions struct {
	Width  *string `json:"width"`
	Length *string `json:"length"`
	Height *string `json:"height"`
}

// Quantity discount types.
const (
	DiscountTypePrice   = "price"
	DiscountTypePercent = "percent"
)

// OrderQuantityDiscount is the volume discount applied to an order.
type OrderQuantityDiscount struct {
	Amount string `json:"amount"`
	Type   string `json:"type"`
}

// OrderShipment is the selected shipping method.
type OrderShipment struct {
	ID               int64   `json:"id,omitempty"`
	Code             *string `json:"code"`
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	PriceWithVAT     float64 `json:"price_with_vat,omitempty"`
	PriceWithoutVAT  float64 `json:"price_without_vat,omitempty"`
	VAT              float64 `json:"vat"`
	AffiliateID      string  `json:"affiliate_id,omitempty"`
	AffiliateName    string  `json:"affiliate_name,omitempty"`
	Type             string  `json:"type,omitempty"`
	PacketaCarrierID int64   `json:"packeta_carrier_id,omitempty"`
}

// OrderPayment is the selected payment method.
type OrderPayment struct {
	ID              int64   `json:"id,omitempty"`
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	PriceWithVAT    float64 `json:"price_with_vat,omitempty"`
	PriceWithoutVAT float64 `json:"price_without_vat,omitempty"`
	VAT             float64 `json:"vat"`
	EET             *bool   `json:"eet_yn,omitempty"`
	Type            string  `json:"type,omitempty"`
}

// OrderMeta is a custom key/value entry attached to an order.
type OrderMeta struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// OrderUpdate is the partial order sent by Orders.Update. Unset fields are
// left untouched by the API.
type OrderUpdate struct {
	OrderID               *int64                 `json:"order_id,omitempty"`
	CaseNumber            *string                `json:"case_number,omitempty"`
	ExternalOrderNumber   *string                `json:"external_order_number,omitempty"`
	UUID                  *string                `json:"uuid,omitempty"`
	LanguageID            *string                `json:"language_id,omitempty"`
	CurrencyID            *string                `json:"currency_id,omitempty"`
	DefaultCurrencyRate   *float64               `json:"default_currency_rate,omitempty"`
	PricesWithVAT         *bool                  `json:"prices_with_vat_yn,omitempty"`
	StatusID              *int64                 `json:"status_id,omitempty"`
	Status                *string                `json:"status,omitempty"`
	PaidDate              *string                `json:"paid_date,omitempty"`
	TrackingCode          *string                `json:"tracking_code,omitempty"`
	TrackingURL           *string                `json:"tracking_url,omitempty"`
	Statistics            *bool                  `json:"statistics_yn,omitempty"`
	Resolved              *bool                  `json:"resolved_yn,omitempty"`
	OSS                   *bool                  `json:"oss_yn,omitempty"`
	InternalNote          *string                `json:"internal_note,omitempty"`
	LastUpdateTime        *string                `json:"last_update_time,omitempty"`
	CreationTime          *string                `json:"creation_time,omitempty"`
	VariableSymbol        *string                `json:"variable_symbol,omitempty"`
	Dimensions            *OrderDimensions       `json:"dimensions,omitempty"`
	TotalWeight           *float64               `json:"total_weight,omitempty"`
	OrderTotal            *float64               `json:"order_total,omitempty"`
	OrderTotalBeforeRound *float64               `json:"order_total_before_round,omitempty"`
	OrderTotalRest        *float64               `json:"order_total_rest,omitempty"`
	InvoiceNumber         *string                `json:"invoice_number,omitempty"`
	Origin                *string                `json:"origin,omitempty"`
	AdminURL              *string                `json:"admin_url,omitempty"`
	Customer              *OrderCustomer         `json:"customer,omitempty"`
	Products              []OrderProduct         `json:"products,omitempty"`
	DiscountVoucher       Opaque                 `json:"discount_voucher,omitempty"`
	QuantityDiscount      *OrderQuantityDiscount `json:"quantity_discount,omitempty"`
	LoyaltyPoints         Opaque                 `json:"loyalty_points,omitempty"`
	Shipment              *OrderShipment         `json:"shipment,omitempty"`
	Payment               *OrderPayment          `json:"payment,omitempty"`
	Attachments           Opaque                 `json:"attachments,omitempty"`
	Metas                 []OrderMeta            `json:"metas,omitempty"`
}

// UpdateFromOrder sets every non-zero field of o on an OrderUpdate.
// OrderTotal and Customer are always set. OrderNumber is not carried, it is
// passed to Orders.Update separately.
func UpdateFromOrder(o Order) OrderUpdate {
	customer := o.Customer
	total := o.OrderTotal
	return OrderUpdate{
		OrderID:               nonZero(o.OrderID),
		CaseNumber:            o.CaseNumber,
		ExternalOrderNumber:   nonZero(o.ExternalOrderNumber),
		UUID:                  nonZero(o.UUID),
		LanguageID:            nonZero(o.LanguageID),
		CurrencyID:            nonZero(o.CurrencyID),
		DefaultCurrencyRate:   nonZero(o.DefaultCurrencyRate),
		PricesWithVAT:         o.PricesWithVAT,
		StatusID:              nonZero(o.StatusID),
		Status:                nonZero(o.Status),
		PaidDate:              nonZero(o.PaidDate),
		TrackingCode:          nonZero(o.TrackingCode),
		TrackingURL:           nonZero(o.TrackingURL),
		Statistics:            o.Statistics,
		Resolved:              o.Resolved,
		OSS:                   o.OSS,
		InternalNote:          nonZero(o.InternalNote),
		LastUpdateTime:        nonZero(o.LastUpdateTime),
		CreationTime:          nonZero(o.CreationTime),
		VariableSymbol:        nonZero(o.VariableSymbol),
		Dimensions:            o.Dimensions,
		TotalWeight:           nonZero(o.TotalWeight),
		OrderTotal:            &total,
		OrderTotalBeforeRound: nonZero(o.OrderTotalBeforeRound),
		OrderTotalRest:        nonZero(o.OrderTotalRest),
		InvoiceNumber:         nonZero(o.InvoiceNumber),
		Origin:                nonZero(o.Origin),
		AdminURL:              nonZero(o.AdminURL),
		Customer:              &customer,
		Products:              o.Products,
		DiscountVoucher:       o.DiscountVoucher,
		QuantityDiscount:      o.QuantityDiscount,
		LoyaltyPoints:         o.LoyaltyPoints,
		Shipment:              o.Shipment,
		Payment:               o.Payment,
		Attachments:           o.Attachments,
		Metas:                 o.Metas,
	}
}

func nonZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

// ListOrdersParams are the filters accepted by Orders.List. Zero values are
// not sent.
type ListOrdersParams struct {
	Page               int
	LastUpdateTimeFrom string
	LastUpdateTimeTo   string
	Status             string
	StatusID           string
	ResolvedYN         YesNo
	PaidYN             YesNo
	LanguageID         string
}

// OrderList is one page of the orders listing.
type OrderList struct {
	CurrentPage      int     `json:"current_page"`
	CurrentPageItems int     `json:"current_page_items"`
	NumberOfPages    int     `json:"number_of_pages"`
	NumberOfItems    int     `json:"number_of_items"`
	Orders           []Order `json:"orders"`
}

// OrderHistoryRecord is one name/value entry of an order's audit log.
type OrderHistoryRecord struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type orderHistoryEnvelope struct {
	Data []OrderHistoryRecord `json:"data"`
}

// OrderUpdateResult is the API's per-order outcome of an update.
type OrderUpdateResult struct {
	OrderNumber string `json:"order_number"`
	OrderURL    string `json:"order_url"`
	Updated     bool   `json:"updated_yn"`
	Messages    Opaque `json:"messages,omitempty"`
}

type orderUpdateEnvelope struct {
	Orders []OrderUpdateResult `json:"orders"`
}
