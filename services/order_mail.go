package services

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/kendall-kelly/storefront-api/models"
	"github.com/shopspring/decimal"
)

// OrderConfirmationSubject is the subject line of every confirmation e-mail
const OrderConfirmationSubject = "Your order has been confirmed!"

// MailMessage is a rendered e-mail ready for delivery
type MailMessage struct {
	To      string
	Subject string
	Body    string
	OrderID uint
}

type confirmationRow struct {
	Name      string
	Quantity  int
	UnitPrice string
	Subtotal  string
}

type confirmationData struct {
	AppName    string
	ClientName string
	OrderID    uint
	OrderURL   string
	Rows       []confirmationRow
	Total      string
}

var confirmationTemplate = template.Must(template.New("order_confirmation").Parse(
	`Order Confirmed!

Hello, {{.ClientName}}!

Thank you for your order! Order #{{.OrderID}} was received and is being processed.

Order details:

| Product | Quantity | Unit price | Subtotal |
|:--------|:--------:|-----------:|---------:|
{{range .Rows}}| {{.Name}} | {{.Quantity}} | {{.UnitPrice}} | {{.Subtotal}} |
{{end}}
Order total: {{.Total}}

You can see your order here: {{.OrderURL}}

Thanks,
{{.AppName}}
`))

// FormatOrderConfirmation renders the confirmation e-mail for a fully loaded
// order, addressed to the order's client.
func FormatOrderConfirmation(order *models.Order, appName, appURL string) (*MailMessage, error) {
	if order.Client.Email == "" {
		return nil, fmt.Errorf("order %d has no client e-mail loaded", order.ID)
	}

	data := confirmationData{
		AppName:    appName,
		ClientName: order.Client.Name,
		OrderID:    order.ID,
		OrderURL:   fmt.Sprintf("%s/api/v1/orders/%d", strings.TrimRight(appURL, "/"), order.ID),
		Total:      FormatMoney(order.Total()),
	}
	for i := range order.Lines {
		line := &order.Lines[i]
		data.Rows = append(data.Rows, confirmationRow{
			Name:      line.Product.Name,
			Quantity:  line.Quantity,
			UnitPrice: FormatMoney(line.PriceAtPurchase),
			Subtotal:  FormatMoney(line.Subtotal()),
		})
	}

	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("failed to render confirmation: %w", err)
	}

	return &MailMessage{
		To:      order.Client.Email,
		Subject: OrderConfirmationSubject,
		Body:    body.String(),
		OrderID: order.ID,
	}, nil
}

// FormatMoney renders an amount in Brazilian real notation, e.g. R$ 1.234,50
func FormatMoney(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}

	return fmt.Sprintf("%sR$ %s,%s", sign, grouped.String(), cents)
}
