package wizard

// FeeSchedule prices the listing fee per ticket: tickets above the
// threshold pay the high fee.
type FeeSchedule struct {
	HighPriceThreshold int64
	HighFee            int64
	NormalFee          int64
}

func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		HighPriceThreshold: 1_000_000,
		HighFee:            50_000,
		NormalFee:          30_000,
	}
}

func (f FeeSchedule) PerTicket(price int64) int64 {
	if price > f.HighPriceThreshold {
		return f.HighFee
	}
	return f.NormalFee
}

// Total is the fee for listing quantity tickets at price.
func (f FeeSchedule) Total(price int64, quantity int) int64 {
	if quantity <= 0 {
		return 0
	}
	return f.PerTicket(price) * int64(quantity)
}
