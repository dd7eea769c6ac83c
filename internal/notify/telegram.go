package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"restaurant-orders/internal/domain"
)

const telegramAPI = "https://api.telegram.org"

type TelegramConfig struct {
	BotToken string
	ChatID   string
	// Locale picks the labels and product-name translation used in the message.
	Locale             string
	BaseCurrency       string
	SettlementCurrency string
	// APIBase overrides the Telegram endpoint, e.g. for a local fake.
	APIBase string
}

// Telegram posts Markdown order summaries through the Bot API sendMessage method.
type Telegram struct {
	cfg    TelegramConfig
	http   *http.Client
	logger *log.Logger
}

func NewTelegram(cfg TelegramConfig, logger *log.Logger) *Telegram {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cfg.APIBase == "" {
		cfg.APIBase = telegramAPI
	}
	if cfg.Locale == "" {
		cfg.Locale = "fa"
	}
	if cfg.BaseCurrency == "" {
		cfg.BaseCurrency = "OMR"
	}
	if cfg.SettlementCurrency == "" {
		cfg.SettlementCurrency = "USD"
	}
	return &Telegram{cfg: cfg, http: &http.Client{Timeout: 10 * time.Second}, logger: logger}
}

func (t *Telegram) Configured() bool {
	return t.cfg.BotToken != "" && t.cfg.ChatID != ""
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify is a no-op when the bot is not configured.
func (t *Telegram) Notify(ctx context.Context, order domain.Order) error {
	if !t.Configured() {
		t.logger.Printf("notify: telegram not configured, skipping order_id=%s", order.ID)
		return nil
	}
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    t.cfg.ChatID,
		Text:      t.Render(order),
		ParseMode: "Markdown",
	})
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(t.cfg.APIBase, "/"), t.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		// The URL embeds the bot token; keep it out of logs.
		return fmt.Errorf("telegram sendMessage: %s", redact(err.Error(), t.cfg.BotToken))
	}
	defer resp.Body.Close()

	var out sendMessageResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out)
	if resp.StatusCode != http.StatusOK || !out.OK {
		return fmt.Errorf("telegram sendMessage: status %d: %s", resp.StatusCode, out.Description)
	}
	t.logger.Printf("notify: telegram sent order_id=%s", order.ID)
	return nil
}

type telegramLabels struct {
	title, customer, phone, address, location string
	items, total, paid, delivery, notes       string
	deliver, pickup                           string
}

var labelsByLocale = map[string]telegramLabels{
	"fa": {
		title: "سفارش جدید", customer: "مشتری", phone: "تلفن", address: "آدرس", location: "لوکیشن",
		items: "محصولات", total: "مبلغ کل", paid: "پرداخت شده", delivery: "تحویل", notes: "توضیحات",
		deliver: "ارسال", pickup: "حضوری",
	},
	"en": {
		title: "New order", customer: "Customer", phone: "Phone", address: "Address", location: "Location",
		items: "Items", total: "Total", paid: "Paid", delivery: "Delivery", notes: "Notes",
		deliver: "Delivery", pickup: "Pickup",
	},
	"ar": {
		title: "طلب جديد", customer: "العميل", phone: "الهاتف", address: "العنوان", location: "الموقع",
		items: "المنتجات", total: "المجموع", paid: "المدفوع", delivery: "التسليم", notes: "ملاحظات",
		deliver: "توصيل", pickup: "استلام",
	},
}

// labels falls back to Persian for unknown locales.
func labels(locale string) telegramLabels {
	if l, ok := labelsByLocale[strings.ToLower(locale)]; ok {
		return l
	}
	return labelsByLocale["fa"]
}

// Render builds the operator summary in Telegram's legacy Markdown.
func (t *Telegram) Render(o domain.Order) string {
	c := o.Customer
	l := labels(t.cfg.Locale)
	var b strings.Builder

	fmt.Fprintf(&b, "🛒 *%s* (#%s)\n\n", l.title, escapeMarkdown(o.ID))
	fmt.Fprintf(&b, "👤 *%s:* %s %s\n", l.customer, escapeMarkdown(c.FirstName), escapeMarkdown(c.LastName))
	fmt.Fprintf(&b, "📞 *%s:* %s (%s)\n", l.phone, escapeMarkdown(c.Phone), escapeMarkdown(c.ContactMethod))
	fmt.Fprintf(&b, "📍 *%s:* %s\n", l.address, escapeMarkdown(c.Address))
	if c.Location != nil && strings.TrimSpace(*c.Location) != "" {
		fmt.Fprintf(&b, "🗺 *%s:* %s\n", l.location, escapeMarkdown(*c.Location))
	}

	fmt.Fprintf(&b, "\n📦 *%s:*\n", l.items)
	for _, item := range o.Items {
		fmt.Fprintf(&b, "• %s × %d = %s %s\n",
			escapeMarkdown(item.Name.In(t.cfg.Locale)), item.Quantity, item.Total().StringFixed(2), t.cfg.BaseCurrency)
	}

	fmt.Fprintf(&b, "\n💰 *%s:* %s %s\n", l.total, o.TotalBase.StringFixed(2), t.cfg.BaseCurrency)
	fmt.Fprintf(&b, "💵 *%s:* %s %s\n", l.paid, o.TotalSettlement.StringFixed(2), t.cfg.SettlementCurrency)

	delivery := l.deliver
	if c.IsPickup() {
		delivery = l.pickup
	}
	fmt.Fprintf(&b, "\n🚚 *%s:* %s\n", l.delivery, delivery)
	notes := "-"
	if c.Notes != nil && strings.TrimSpace(*c.Notes) != "" {
		notes = escapeMarkdown(*c.Notes)
	}
	fmt.Fprintf(&b, "📝 *%s:* %s\n", l.notes, notes)
	return b.String()
}

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "<redacted>")
}
