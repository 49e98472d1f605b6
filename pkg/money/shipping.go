package money

// ShippingStatus reports where a subtotal stands against the free-shipping
// threshold. AmountRemaining never goes below zero.
type ShippingStatus struct {
	IsFreeShipping  bool
	AmountRemaining Amount
}

func ComputeShippingStatus(subtotal, threshold Amount) ShippingStatus {
	if subtotal.Cmp(threshold) >= 0 {
		return ShippingStatus{IsFreeShipping: true, AmountRemaining: Zero()}
	}
	return ShippingStatus{AmountRemaining: threshold.Sub(subtotal)}
}
