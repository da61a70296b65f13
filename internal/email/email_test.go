package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodles/order-api/internal/model"
)

func TestValidAddress(t *testing.T) {
	valid := []string{"a@b.co", "user.name+tag@example.org", "x_1@sub.domain.in"}
	for _, addr := range valid {
		assert.True(t, ValidAddress(addr), addr)
	}

	invalid := []string{"", "plain", "missing@dot", "@example.com", "two@@example.com", "spa ce@example.com"}
	for _, addr := range invalid {
		assert.False(t, ValidAddress(addr), addr)
	}
}

func TestRenderConfirmation(t *testing.T) {
	details := model.OrderDetails{
		Items: []model.OrderItem{
			{Name: "Paneer Tikka", Quantity: 2, Price: 150},
			{Name: "Butter Naan", Quantity: 4, Price: 30},
		},
		Subtotal:       420,
		DeliveryFee:    30,
		ConvenienceFee: 10,
		GrandTotal:     460,
	}

	body, err := RenderConfirmation("Asha", details)
	require.NoError(t, err)
	assert.Contains(t, body, "Dear Asha")
	assert.Contains(t, body, "Paneer Tikka")
	assert.Contains(t, body, "₹300.00") // 2 x 150
	assert.Contains(t, body, "Convenience Fee")
	assert.NotContains(t, body, "Dog Donation")
}

func TestRenderConfirmationDogDonation(t *testing.T) {
	details := model.OrderDetails{
		Items:       []model.OrderItem{{Name: "Momos", Quantity: 1, Price: 120}},
		Subtotal:    120,
		DogDonation: 5,
		GrandTotal:  125,
	}

	body, err := RenderConfirmation("Ravi", details)
	require.NoError(t, err)
	assert.Contains(t, body, "Dog Donation")
	assert.NotContains(t, body, "Convenience Fee")
}

func TestRenderVendorAlert(t *testing.T) {
	details := model.OrderDetails{
		Items:      []model.OrderItem{{Name: "Thali", Quantity: 2, Price: 180}},
		GrandTotal: 360,
	}

	body, err := RenderVendorAlert("X1", "Asha", details)
	require.NoError(t, err)
	assert.Contains(t, body, "NEW ORDER X1")
	assert.Contains(t, body, "Thali x 2")
}
