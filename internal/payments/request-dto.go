package payments

// ProcessPaymentRequest represents the hold conversion payload
type ProcessPaymentRequest struct {
	HoldID           string `json:"hold_id" binding:"required,uuid"`
	IdempotencyKey   string `json:"idempotency_key" binding:"required,min=8,max=128"`
	Method           string `json:"method" binding:"required,oneof=CARD UPI WALLET CASH"`
	GatewayReference string `json:"gateway_reference" binding:"omitempty,max=128"`
}
