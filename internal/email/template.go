package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/foodles/order-api/internal/model"
)

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(template.FuncMap{
	"rupees": func(v float64) string { return fmt.Sprintf("₹%.2f", v) },
	"line": func(item model.OrderItem) string {
		return fmt.Sprintf("₹%.2f", item.Price*float64(item.Quantity))
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Order Confirmation</title></head>
<body>
  <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #ddd; border-radius: 10px;">
    <h2 style="color: #333;">ORDER CONFIRMATION</h2>
    <p style="color: #555;">Dear {{.Name}},</p>
    <p style="color: #555;">Thank you for your order! Here is your order summary:</p>
    <table style="width: 100%; border-collapse: collapse;">
      <thead>
        <tr><th align="left">Item</th><th align="left">Quantity</th><th align="left">Price</th></tr>
      </thead>
      <tbody>
      {{range .Details.Items}}
        <tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{line .}}</td></tr>
      {{end}}
      </tbody>
    </table>
    <table style="width: 100%; margin-top: 20px;">
      <tbody>
        <tr><td>Subtotal</td><td>{{rupees .Details.Subtotal}}</td></tr>
        <tr><td>Delivery Fee</td><td>{{rupees .Details.DeliveryFee}}</td></tr>
        {{if gt .Details.DogDonation 0.0}}
        <tr style="color: #4ade80;"><td>Dog Donation</td><td>{{rupees .Details.DogDonation}}</td></tr>
        {{else}}
        <tr><td>Convenience Fee</td><td>{{rupees .Details.ConvenienceFee}}</td></tr>
        {{end}}
      </tbody>
    </table>
    <h3>GRAND TOTAL {{rupees .Details.GrandTotal}}</h3>
    <p style="color: #555;">We appreciate your business and hope you enjoy your meal!</p>
    <p style="color: #555;">Foodles Team</p>
  </div>
</body>
</html>`))

var vendorTmpl = template.Must(template.New("vendor").Funcs(template.FuncMap{
	"rupees": func(v float64) string { return fmt.Sprintf("₹%.2f", v) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>New Order</title></head>
<body>
  <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #333;">NEW ORDER {{.OrderID}}</h2>
    <p>Customer: {{.Name}}</p>
    <p>{{.Summary}}</p>
    <h3>Total {{rupees .Details.GrandTotal}}</h3>
  </div>
</body>
</html>`))

// RenderConfirmation renders the customer order-confirmation body.
func RenderConfirmation(name string, details model.OrderDetails) (string, error) {
	var buf bytes.Buffer
	err := confirmationTmpl.Execute(&buf, struct {
		Name    string
		Details model.OrderDetails
	}{name, details})
	if err != nil {
		return "", fmt.Errorf("failed to render confirmation email: %w", err)
	}
	return buf.String(), nil
}

// RenderVendorAlert renders the vendor new-order body.
func RenderVendorAlert(orderID, customerName string, details model.OrderDetails) (string, error) {
	lines := make([]string, 0, len(details.Items))
	for _, item := range details.Items {
		lines = append(lines, fmt.Sprintf("%s x %d", item.Name, item.Quantity))
	}

	var buf bytes.Buffer
	err := vendorTmpl.Execute(&buf, struct {
		OrderID string
		Name    string
		Summary string
		Details model.OrderDetails
	}{orderID, customerName, strings.Join(lines, ", "), details})
	if err != nil {
		return "", fmt.Errorf("failed to render vendor email: %w", err)
	}
	return buf.String(), nil
}
