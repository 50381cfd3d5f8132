package auction

// Increment returns the minimum step a new bid must add on top of the
// current bid. Steps grow with the price band.
func Increment(currentBid int64) int64 {
	switch {
	case currentBid < 100:
		return 5
	case currentBid < 500:
		return 10
	case currentBid < 1000:
		return 25
	case currentBid < 5000:
		return 50
	default:
		return 100
	}
}

// RequiredMinimum returns the lowest acceptable next bid given the current bid.
func RequiredMinimum(currentBid int64) int64 {
	return currentBid + Increment(currentBid)
}
