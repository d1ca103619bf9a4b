package upgates

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{APIURL: srv.URL, Login: "shop", APIKey: "key"})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func sampleOrder() Order {
	code := "PPL"
	resolved := false
	return Order{
		OrderNumber:    "2024000123",
		OrderID:        123,
		LanguageID:     "cs",
		CurrencyID:     "CZK",
		Status:         "Nová",
		StatusID:       1,
		Resolved:       &resolved,
		LastUpdateTime: "2024-05-01T10:00:00+02:00",
		OrderTotal:     1210.5,
		Customer: OrderCustomer{
			Email:            "jana@example.com",
			Phone:            "+420123456789",
			FirstnameInvoice: "Jana",
			SurnameInvoice:   "Nováková",
			StreetInvoice:    "Dlouhá 1",
			CityInvoice:      "Praha",
			ZipInvoice:       "11000",
			CountryIDInvoice: "CZ",
			PostalYN:         No,
			CompanyYN:        Yes,
			Company:          "Acme s.r.o.",
			ICO:              "12345678",
			VATPayerYN:       Yes,
		},
		Products: []OrderProduct{{
			ProductID:      77,
			Code:           "SKU-1",
			Title:          "Mug",
			Unit:           "ks",
			Quantity:       2,
			PricePerUnit:   500,
			Price:          1000,
			PriceWithVAT:   1210,
			VAT:            21,
			Parameters:     []ProductParameter{{Name: "color", Value: "red"}},
			Categories:     []ProductCategory{{CategoryID: 5, Code: "kitchen"}},
			Configurations: Opaque(`[{"name":"engraving","value":"J"}]`),
		}},
		DiscountVoucher: Opaque(`{"code":"SPRING","amount":"10"}`),
		LoyaltyPoints:   Opaque(`{"points":120,"extra":{"tier":"gold"}}`),
		Attachments:     Opaque(`[{"url":"https://cdn.example.com/a.pdf"}]`),
		Shipment:        &OrderShipment{Code: &code, Name: "PPL", Price: 99, VAT: 21},
		Payment:         &OrderPayment{Code: "card", Name: "Card", Price: 0, VAT: 21},
		Metas:           []OrderMeta{{Key: "source", Type: "input", Value: "b2b"}},
	}
}

func TestNewValidatesAPIURL(t *testing.T) {
	for _, raw := range []string{"", "api.example.com", "ftp//broken", "/api/v2"} {
		_, err := New(Config{APIURL: raw, Login: "l", APIKey: "k"})
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr, "api url %q", raw)
	}

	c, err := New(Config{APIURL: "https://api.example.com", Login: "l", APIKey: "k"})
	require.NoError(t, err)
	assert.NotNil(t, c.Orders)
	assert.Equal(t, "https://api.example.com", c.BaseURL())
}

func TestListSendsFilters(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "3", q.Get("page"))
		assert.Equal(t, "2024-01-01T00:00:00+00:00", q.Get("last_update_time_from"))
		assert.Equal(t, "1", q.Get("paid_yn"))
		assert.Equal(t, "cs", q.Get("language_id"))
		assert.False(t, q.Has("status"))
		writeJSON(w, `{"current_page":3,"current_page_items":1,"number_of_pages":4,"number_of_items":31,
			"orders":[{"order_number":"A1","order_total":10,"customer":{},"products":[]}]}`)
	})

	page, err := c.Orders.List(context.Background(), &ListOrdersParams{
		Page:               3,
		LastUpdateTimeFrom: "2024-01-01T00:00:00+00:00",
		PaidYN:             Yes,
		LanguageID:         "cs",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 1, page.CurrentPageItems)
	assert.Equal(t, 4, page.NumberOfPages)
	assert.Equal(t, 31, page.NumberOfItems)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, "A1", page.Orders[0].OrderNumber)
}

func TestListWithoutParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		writeJSON(w, `{"current_page":1,"orders":[]}`)
	})

	page, err := c.Orders.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, page.Orders)
}

func TestGetReturnsOrderUnchanged(t *testing.T) {
	want := sampleOrder()
	raw, err := json.Marshal(OrderList{CurrentPage: 1, Orders: []Order{want}})
	require.NoError(t, err)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/2024000123", r.URL.Path)
		writeJSON(w, string(raw))
	})

	got, err := c.Orders.Get(context.Background(), "2024000123")
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestGetEmptyListIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"orders":[]}`)
	})

	_, err := c.Orders.Get(context.Background(), "X")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "X", nf.OrderNumber)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsNotFound(err))
}

func TestGetEscapesOrderNumber(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/A%2FB", r.URL.EscapedPath())
		writeJSON(w, `{"orders":[{"order_number":"A/B","order_total":0,"customer":{},"products":[]}]}`)
	})

	got, err := c.Orders.Get(context.Background(), "A/B")
	require.NoError(t, err)
	assert.Equal(t, "A/B", got.OrderNumber)
}

func TestEmptyOrderNumberIsRejectedBeforeIO(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	})
	ctx := context.Background()

	_, err := c.Orders.Get(ctx, "")
	assert.ErrorIs(t, err, ErrOrderNumberRequired)
	_, err = c.Orders.Update(ctx, " ", OrderUpdate{})
	assert.ErrorIs(t, err, ErrOrderNumberRequired)
	assert.ErrorIs(t, c.Orders.Delete(ctx, ""), ErrOrderNumberRequired)
	_, err = c.Orders.GetPDF(ctx, "")
	assert.ErrorIs(t, err, ErrOrderNumberRequired)
	_, err = c.Orders.GetHistory(ctx, "")
	assert.ErrorIs(t, err, ErrOrderNumberRequired)
	_, err = c.Orders.AddHistoryRecord(ctx, "", OrderHistoryRecord{})
	assert.ErrorIs(t, err, ErrOrderNumberRequired)
	assert.ErrorIs(t, c.Orders.AddFile(ctx, "", OrderFile{}), ErrOrderNumberRequired)
	assert.Zero(t, calls.Load())
}

func TestCreateSendsSingleOrderBatchWithoutNotifications(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, "0", body["send_emails_yn"])
		assert.Equal(t, "0", body["send_sms_yn"])
		orders, _ := body["orders"].([]any)
		assert.Len(t, orders, 1)
		assert.Len(t, body, 3)
		writeJSON(w, `{"order_number":"2024000999","order_total":5,"customer":{"email":"a@b.c"},"products":[]}`)
	})

	created, err := c.Orders.Create(context.Background(), Order{OrderTotal: 5, Customer: OrderCustomer{Email: "a@b.c"}})
	require.NoError(t, err)
	assert.Equal(t, "2024000999", created.OrderNumber)
}

func TestCreateAcceptsBatchEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"orders":[{"order_number":"N1","order_total":1,"customer":{},"products":[]}]}`)
	})

	created, err := c.Orders.Create(context.Background(), Order{})
	require.NoError(t, err)
	assert.Equal(t, "N1", created.OrderNumber)
}

func TestCreateEchoRoundTrip(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		writeJSON(w, string(raw))
	})

	want := sampleOrder()
	got, err := c.Orders.Create(context.Background(), want)
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	var loyalty struct {
		Points int `json:"points"`
	}
	require.NoError(t, got.LoyaltyPoints.Decode(&loyalty))
	assert.Equal(t, 120, loyalty.Points)
}

func TestCreateWithoutOrderInResponse(t *testing.T) {
	for name, body := range map[string]string{
		"empty body":     "",
		"empty envelope": `{"orders":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, body)
			})

			_, err := c.Orders.Create(context.Background(), Order{})
			require.ErrorIs(t, err, ErrEmptyCreateResponse)
			assert.False(t, IsNotFound(err))
		})
	}
}

func TestUpdateFromOrderRoundTrip(t *testing.T) {
	want := sampleOrder()
	caseNumber := "C-7"
	pricesWithVAT := true
	want.CaseNumber = &caseNumber
	want.PricesWithVAT = &pricesWithVAT
	want.InvoiceNumber = "FV-2024-1"
	want.DefaultCurrencyRate = 1
	want.TotalWeight = 1.25
	want.Origin = "eshop"
	want.UUID = "9f6c1e52"
	want.CreationTime = "2024-05-01T09:00:00+02:00"

	var sent Order
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Orders []Order `json:"orders"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.Len(t, req.Orders, 1) {
			sent = req.Orders[0]
		}
		writeJSON(w, `{"orders":[{"order_number":"2024000123","updated_yn":true}]}`)
	})

	res, err := c.Orders.Update(context.Background(), want.OrderNumber, UpdateFromOrder(want))
	require.NoError(t, err)
	assert.True(t, res.Updated)
	assert.Equal(t, want, sent)
}

func TestUpdateFromOrderSkipsZeroFields(t *testing.T) {
	raw, err := json.Marshal(UpdateFromOrder(Order{InvoiceNumber: "FV-1"}))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "FV-1", got["invoice_number"])
	assert.Contains(t, got, "order_total")
	assert.Contains(t, got, "customer")
	assert.NotContains(t, got, "prices_with_vat_yn")
	assert.NotContains(t, got, "order_number")
	assert.NotContains(t, got, "products")
}

func TestUpdateMergesOrderNumberIntoBatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, "0", body["send_emails_yn"])
		assert.Equal(t, "0", body["send_sms_yn"])
		assert.Equal(t, "0", body["delete_missing_products_yn"])
		orders, _ := body["orders"].([]any)
		if assert.Len(t, orders, 1) {
			assert.Equal(t, map[string]any{"order_number": "X", "status": "paid"}, orders[0])
		}
		writeJSON(w, `{"orders":[{"order_number":"X","order_url":"https://shop/admin/X","updated_yn":true,"messages":[{"text":"ok"}]}]}`)
	})

	status := "paid"
	res, err := c.Orders.Update(context.Background(), "X", OrderUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "X", res.OrderNumber)
	assert.Equal(t, "https://shop/admin/X", res.OrderURL)
	assert.True(t, res.Updated)
	assert.JSONEq(t, `[{"text":"ok"}]`, res.Messages.String())
}

func TestUpdateEmptyResultIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"orders":[]}`)
	})

	_, err := c.Orders.Update(context.Background(), "X", OrderUpdate{})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "update", nf.Operation)
	assert.Contains(t, err.Error(), "not updated")
}

func TestDeleteIssuesSingleRequest(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "order_number=X", r.URL.RawQuery)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.Orders.Delete(context.Background(), "X"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetPDF(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/X/pdf", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.WriteString(w, "%PDF-1.7")
	})

	blob, err := c.Orders.GetPDF(context.Background(), "X")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", blob.ContentType)
	assert.Equal(t, int64(8), blob.Size)
	assert.Equal(t, "%PDF-1.7", string(blob.Data))
}

func TestHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/X/history", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, `{"data":[{"name":"status","value":"new"}]}`)
		case http.MethodPost:
			body := decodeBody(t, r)
			assert.Equal(t, map[string]any{"data": []any{map[string]any{"name": "note", "value": "called"}}}, body)
			writeJSON(w, `{"data":[{"name":"status","value":"new"},{"name":"note","value":"called"}]}`)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})
	ctx := context.Background()

	history, err := c.Orders.GetHistory(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, []OrderHistoryRecord{{Name: "status", Value: "new"}}, history)

	history, err = c.Orders.AddHistoryRecord(ctx, "X", OrderHistoryRecord{Name: "note", Value: "called"})
	require.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, "called", history[1].Value)
}

func TestAddFileSendsThreeMultipartFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders/X/file", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		form := r.MultipartForm
		assert.Len(t, form.Value, 2)
		assert.Len(t, form.File, 1)
		assert.Equal(t, []string{"invoice.pdf"}, form.Value["file_name"])
		assert.Equal(t, []string{"invoice"}, form.Value["code"])
		if assert.Len(t, form.File["file"], 1) {
			f, err := form.File["file"][0].Open()
			if assert.NoError(t, err) {
				data, _ := io.ReadAll(f)
				f.Close()
				assert.Equal(t, "pdf-bytes", string(data))
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	err := c.Orders.AddFile(context.Background(), "X", OrderFile{
		File:     strings.NewReader("pdf-bytes"),
		FileName: "invoice.pdf",
		Code:     "invoice",
	})
	require.NoError(t, err)
}

func TestAddFileValidatesParts(t *testing.T) {
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	})
	ctx := context.Background()

	assert.ErrorIs(t, c.Orders.AddFile(ctx, "X", OrderFile{FileName: "a", Code: "b"}), ErrInvalidFile)
	assert.ErrorIs(t, c.Orders.AddFile(ctx, "X", OrderFile{File: strings.NewReader("x"), Code: "b"}), ErrInvalidFile)
	assert.ErrorIs(t, c.Orders.AddFile(ctx, "X", OrderFile{File: strings.NewReader("x"), FileName: "a"}), ErrInvalidFile)
}

func TestNon2xxSurfacesTransportErrorForEveryOperation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "maintenance")
	})
	ctx := context.Background()

	ops := map[string]func() error{
		"list": func() error { _, err := c.Orders.List(ctx, nil); return err },
		"get":  func() error { _, err := c.Orders.Get(ctx, "X"); return err },
		"create": func() error {
			_, err := c.Orders.Create(ctx, Order{})
			return err
		},
		"update": func() error {
			_, err := c.Orders.Update(ctx, "X", OrderUpdate{})
			return err
		},
		"delete":  func() error { return c.Orders.Delete(ctx, "X") },
		"pdf":     func() error { _, err := c.Orders.GetPDF(ctx, "X"); return err },
		"history": func() error { _, err := c.Orders.GetHistory(ctx, "X"); return err },
		"add_history": func() error {
			_, err := c.Orders.AddHistoryRecord(ctx, "X", OrderHistoryRecord{Name: "a", Value: "b"})
			return err
		},
		"add_file": func() error {
			return c.Orders.AddFile(ctx, "X", OrderFile{File: strings.NewReader("x"), FileName: "a", Code: "b"})
		},
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			var terr *TransportError
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, http.StatusServiceUnavailable, terr.StatusCode)
			assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
			assert.Equal(t, "maintenance", string(terr.Body))
			assert.False(t, IsNotFound(err))
		})
	}
}
