package entities

// PurchaseRate returns the share purchase rate in asset base units per share
// for an asset with the given number of decimals. The fixed ratio is one
// share per 0.01 asset units, so the rate is 10^(decimals-2). Decimals are
// clamped so the rate stays representable in uint64.
func PurchaseRate(assetDecimals uint) uint64 {
	if assetDecimals < 2 {
		assetDecimals = 2
	}
	if assetDecimals > 20 {
		assetDecimals = 20
	}
	rate := uint64(1)
	for i := uint(2); i < assetDecimals; i++ {
		rate *= 10
	}
	return rate
}
