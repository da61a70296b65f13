package model

// Channel identifies one notification mechanism for an order.
type Channel string

const (
	ChannelCustomerEmail Channel = "customer"
	ChannelVendorEmail   Channel = "vendor"
	ChannelVendorCall    Channel = "call"
)

// CallStatus is the recorded outcome of the vendor missed-call ping.
type CallStatus string

const (
	CallStatusSuccess CallStatus = "success"
	CallStatusFailed  CallStatus = "failed"
)

// OrderItem is one line item of the order, used only for rendering emails.
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderDetails carries the rendered portion of an order. It never drives
// control flow.
type OrderDetails struct {
	Items          []OrderItem `json:"items"`
	Subtotal       float64     `json:"subtotal"`
	DeliveryFee    float64     `json:"deliveryFee"`
	ConvenienceFee float64     `json:"convenienceFee"`
	DogDonation    float64     `json:"dogDonation"`
	GrandTotal     float64     `json:"grandTotal"`
}

// OrderNotification is the transient job consumed once by the orchestrator
// after a payment has been verified.
type OrderNotification struct {
	OrderID       string       `json:"order_id"`
	CustomerName  string       `json:"customer_name"`
	CustomerEmail string       `json:"customer_email"`
	VendorEmail   string       `json:"vendor_email,omitempty"`
	VendorPhone   string       `json:"vendor_phone,omitempty"`
	RestaurantID  string       `json:"restaurant_id"`
	Details       OrderDetails `json:"details"`
}

// ChannelError records one failed channel attempt.
type ChannelError struct {
	Channel Channel `json:"type"`
	Message string  `json:"error"`
}

// NotificationOutcome is the per-order result of running all applicable
// channels. The zero value is the documented default served for unknown or
// expired orders.
type NotificationOutcome struct {
	EmailsSent       int            `json:"emailsSent"`
	EmailErrors      []ChannelError `json:"emailErrors"`
	MissedCallStatus CallStatus     `json:"missedCallStatus,omitempty"`
}
