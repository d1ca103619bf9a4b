package upgates

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/samvad-hq/upgates-go/pkg/httpclient"
)

const ordersPath = "/orders"

// requester is the transport surface the resource modules use.
type requester interface {
	Get(ctx context.Context, path string, out any, opts ...httpclient.RequestOption) error
	Post(ctx context.Context, path string, body, out any, opts ...httpclient.RequestOption) error
	Put(ctx context.Context, path string, body, out any, opts ...httpclient.RequestOption) error
	Delete(ctx context.Context, path string, out any, opts ...httpclient.RequestOption) error
	GetBlob(ctx context.Context, path string, opts ...httpclient.RequestOption) (*httpclient.Blob, error)
	PostMultipart(ctx context.Context, path string, fields []httpclient.MultipartField, out any, opts ...httpclient.RequestOption) error
}

// Orders groups the operations of the orders resource.
//
// Write endpoints of the API are batch oriented. Create, Update and
// AddHistoryRecord send a batch of exactly one entry and never notify the
// customer by e-mail or SMS.
type Orders struct {
	http requester
}

// OrderFile is an attachment uploaded by AddFile.
type OrderFile struct {
	File     io.Reader
	FileName string
	Code     string
}

type createOrdersRequest struct {
	SendEmails YesNo   `json:"send_emails_yn"`
	SendSMS    YesNo   `json:"send_sms_yn"`
	Orders     []Order `json:"orders"`
}

type updateOrdersRequest struct {
	SendEmails            YesNo              `json:"send_emails_yn"`
	SendSMS               YesNo              `json:"send_sms_yn"`
	DeleteMissingProducts YesNo              `json:"delete_missing_products_yn"`
	Orders                []orderUpdateEntry `json:"orders"`
}

type orderUpdateEntry struct {
	OrderNumber string `json:"order_number"`
	OrderUpdate
}

// createdOrder accepts either a bare order or the batch envelope.
type createdOrder struct {
	order *Order
}

func (c *createdOrder) UnmarshalJSON(data []byte) error {
	var env struct {
		Orders *[]Order `json:"orders"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if env.Orders != nil {
		if len(*env.Orders) > 0 {
			c.order = &(*env.Orders)[0]
		}
		return nil
	}
	var o Order
	if err := json.Unmarshal(data, &o); err != nil {
		return err
	}
	c.order = &o
	return nil
}

// List returns one page of orders matching params. A nil params lists the
// first page unfiltered.
func (o *Orders) List(ctx context.Context, params *ListOrdersParams) (*OrderList, error) {
	var out OrderList
	if err := o.http.Get(ctx, ordersPath, &out, httpclient.WithQueryValues(params.values())); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches a single order. The endpoint answers with a list wrapper, so an
// empty list yields a *NotFoundError.
func (o *Orders) Get(ctx context.Context, orderNumber string) (*Order, error) {
	if err := requireOrderNumber(orderNumber); err != nil {
		return nil, err
	}
	var out OrderList
	if err := o.http.Get(ctx, orderPath(orderNumber, ""), &out); err != nil {
		return nil, err
	}
	if len(out.Orders) == 0 {
		return nil, &NotFoundError{Operation: "get", OrderNumber: orderNumber}
	}
	return &out.Orders[0], nil
}

// Create submits a new order and returns the order as stored by the API,
// which may differ from the input (for example the assigned order number).
// A successful response without an order yields ErrEmptyCreateResponse.
func (o *Orders) Create(ctx context.Context, order Order) (*Order, error) {
	req := createOrdersRequest{
		SendEmails: No,
		SendSMS:    No,
		Orders:     []Order{order},
	}
	var out createdOrder
	if err := o.http.Post(ctx, ordersPath, req, &out); err != nil {
		return nil, err
	}
	if out.order == nil {
		return nil, ErrEmptyCreateResponse
	}
	return out.order, nil
}

// Update applies a partial update to an order. Products missing from the
// update are kept. An empty result list yields a *NotFoundError, which covers
// both unknown orders and rejected updates.
func (o *Orders) Update(ctx context.Context, orderNumber string, update OrderUpdate) (*OrderUpdateResult, error) {
	if err := requireOrderNumber(orderNumber); err != nil {
		return nil, err
	}
	req := updateOrdersRequest{
		SendEmails:            No,
		SendSMS:               No,
		DeleteMissingProducts: No,
		Orders: []orderUpdateEntry{{
			OrderNumber: orderNumber,
			OrderUpdate: update,
		}},
	}
	var out orderUpdateEnvelope
	if err := o.http.Put(ctx, ordersPath, req, &out); err != nil {
		return nil, err
	}
	if len(out.Orders) == 0 {
		return nil, &NotFoundError{Operation: "update", OrderNumber: orderNumber}
	}
	return &out.Orders[0], nil
}

// Delete removes an order. No response body is expected.
func (o *Orders) Delete(ctx context.Context, orderNumber string) error {
	if err := requireOrderNumber(orderNumber); err != nil {
		return err
	}
	return o.http.Delete(ctx, ordersPath, nil, httpclient.WithQuery("order_number", orderNumber))
}

// GetPDF downloads the PDF rendition of an order.
func (o *Orders) GetPDF(ctx context.Context, orderNumber string) (*httpclient.Blob, error) {
	if err := requireOrderNumber(orderNumber); err != nil {
		return nil, err
	}
	return o.http.GetBlob(ctx, orderPath(orderNumber, "pdf"), httpclient.WithHeader("Accept", "application/pdf"))
}

// GetHistory returns the audit log of an order.
func (o *Orders) GetHistory(ctx context.Context, orderNumber string) ([]OrderHistoryRecord, error) {
	if err := requireOrderNumber(orderNumber); err != nil {
		return nil, err
	}
	var out orderHistoryEnvelope
	if err := o.http.Get(ctx, orderPath(orderNumber, "history"), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// AddHistoryRecord appends one record and returns the history reported back.
func (o *Orders) AddHistoryRecord(ctx context.Context, orderNumber string, record OrderHistoryRecord) ([]OrderHistoryRecord, error) {
	if err := requireOrderNumber(orderNumber); err != nil {
		return nil, err
	}
	req := orderHistoryEnvelope{Data: []OrderHistoryRecord{record}}
	var out orderHistoryEnvelope
	if err := o.http.Post(ctx, orderPath(orderNumber, "history"), req, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// AddFile uploads an attachment as multipart form data with the parts file,
// file_name and code.
func (o *Orders) AddFile(ctx context.Context, orderNumber string, file OrderFile) error {
	if err := requireOrderNumber(orderNumber); err != nil {
		return err
	}
	if file.File == nil || strings.TrimSpace(file.FileName) == "" || strings.TrimSpace(file.Code) == "" {
		return ErrInvalidFile
	}
	fields := []httpclient.MultipartField{
		{Name: "file", FileName: file.FileName, Reader: file.File},
		{Name: "file_name", Value: file.FileName},
		{Name: "code", Value: file.Code},
	}
	return o.http.PostMultipart(ctx, orderPath(orderNumber, "file"), fields, nil)
}

func requireOrderNumber(orderNumber string) error {
	if strings.TrimSpace(orderNumber) == "" {
		return ErrOrderNumberRequired
	}
	return nil
}

func orderPath(orderNumber, sub string) string {
	p := ordersPath + "/" + url.PathEscape(orderNumber)
	if sub != "" {
		p += "/" + sub
	}
	return p
}

func (p *ListOrdersParams) values() url.Values {
	if p == nil {
		return nil
	}
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("last_update_time_from", p.LastUpdateTimeFrom)
	set("last_update_time_to", p.LastUpdateTimeTo)
	set("status", p.Status)
	set("status_id", p.StatusID)
	set("resolved_yn", string(p.ResolvedYN))
	set("paid_yn", string(p.PaidYN))
	set("language_id", p.LanguageID)
	return v
}
