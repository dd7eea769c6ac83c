package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"restaurant-orders/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string {
	return &v
}

func sampleOrder() domain.Order {
	return domain.Order{
		ID: "0193-abc",
		Customer: domain.Customer{
			FirstName:     "Sara",
			LastName:      "Al_Harthy",
			Phone:         "+968 9000 0000",
			Address:       "Muscat, Al Khuwair",
			Location:      strPtr("https://maps.example/?q=23.6,58.4"),
			Notes:         strPtr("*no* onions"),
			ContactMethod: "whatsapp",
			DeliveryType:  domain.DeliveryTypeDelivery,
		},
		Items: []domain.OrderLine{{
			ID:       "1",
			Name:     domain.LocalizedText{FA: "استیک", EN: "Steak", AR: "ستيك"},
			Price:    decimal.RequireFromString("13.95"),
			Quantity: 2,
		}},
		TotalBase:       decimal.RequireFromString("27.9"),
		TotalSettlement: decimal.RequireFromString("72.54"),
		Status:          domain.StatusConfirmed,
		Paid:            true,
	}
}

func TestRenderContainsSummary(t *testing.T) {
	tg := NewTelegram(TelegramConfig{Locale: "en"}, nil)
	msg := tg.Render(sampleOrder())

	for _, want := range []string{
		"#0193-abc",
		`Sara Al\_Harthy`,
		"+968 9000 0000 (whatsapp)",
		"Muscat, Al Khuwair",
		"*Location:* https://maps.example/?q=23.6,58.4",
		"• Steak × 2 = 27.90 OMR",
		"*Total:* 27.90 OMR",
		"*Paid:* 72.54 USD",
		"*Delivery:* Delivery",
		`*Notes:* \*no\* onions`,
	} {
		assert.Contains(t, msg, want)
	}
}

func TestRenderPickupWithoutOptionalFields(t *testing.T) {
	o := sampleOrder()
	o.Customer.Location = nil
	o.Customer.Notes = nil
	o.Customer.DeliveryType = domain.DeliveryTypePickup

	msg := NewTelegram(TelegramConfig{}, nil).Render(o)
	assert.NotContains(t, msg, "لوکیشن")
	assert.Contains(t, msg, "*توضیحات:* -")
	assert.Contains(t, msg, "*تحویل:* حضوری")
	assert.Contains(t, msg, "استیک", "default locale is fa")
}

func TestRenderLocaleLabels(t *testing.T) {
	fa := NewTelegram(TelegramConfig{}, nil).Render(sampleOrder())
	assert.Contains(t, fa, "*سفارش جدید* (#0193-abc)")
	assert.Contains(t, fa, "*مبلغ کل:* 27.90 OMR")
	assert.Contains(t, fa, "*تحویل:* ارسال")
	assert.NotContains(t, fa, "Customer")

	ar := NewTelegram(TelegramConfig{Locale: "AR"}, nil).Render(sampleOrder())
	assert.Contains(t, ar, "*طلب جديد*")
	assert.Contains(t, ar, "*التسليم:* توصيل")
	assert.Contains(t, ar, "• ستيك × 2")

	unknown := NewTelegram(TelegramConfig{Locale: "de"}, nil).Render(sampleOrder())
	assert.Contains(t, unknown, "*مشتری:*", "unknown locales use Persian labels")
}

func TestNotifyUnconfiguredIsNoop(t *testing.T) {
	tg := NewTelegram(TelegramConfig{BotToken: "token"}, nil)
	require.NoError(t, tg.Notify(context.Background(), sampleOrder()))
}

func TestNotifySendsMessage(t *testing.T) {
	var got sendMessageRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegram(TelegramConfig{BotToken: "123:abc", ChatID: "42", APIBase: srv.URL}, nil)
	require.NoError(t, tg.Notify(context.Background(), sampleOrder()))

	assert.Equal(t, "/bot123:abc/sendMessage", path)
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, "Markdown", got.ParseMode)
	assert.True(t, strings.Contains(got.Text, "#0193-abc"))
}

func TestNotifyReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: can't parse entities"}`))
	}))
	defer srv.Close()

	tg := NewTelegram(TelegramConfig{BotToken: "t", ChatID: "42", APIBase: srv.URL}, nil)
	err := tg.Notify(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't parse entities")
}
