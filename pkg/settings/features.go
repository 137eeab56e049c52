package settings

// ActivationHeights carries the handful of heights the diff engine's
// rejection-vs-failure policy is gated on. A real node would populate
// this from its blockchain settings; the engine never reads a clock
// or a hard-coded constant for these.
type ActivationHeights struct {
	// SyncDAppCheckTransfersHeight is the height since which negative
	// transfer/lease amounts and duplicate-issue/asset-already-exists
	// become RejectError instead of FailedTransactionError, and
	// write-set-too-large becomes a rejection.
	SyncDAppCheckTransfersHeight uint64

	// CheckTotalDataEntriesBytesHeight is the height since which the
	// total write-set byte limit becomes enforced at all (as
	// fail-for-fee, later tightened to reject by
	// SyncDAppCheckTransfersHeight).
	CheckTotalDataEntriesBytesHeight uint64

	// Ride4DAppsHeight is the height since which the transfer driver
	// no longer runs its explicit fee+amount overflow check. The invoke
	// driver does not consult it.
	Ride4DAppsHeight uint64
}

func (a ActivationHeights) SyncDAppChecksActive(height uint64) bool {
	return height >= a.SyncDAppCheckTransfersHeight
}

func (a ActivationHeights) TotalDataEntriesBytesCheckActive(height uint64) bool {
	return height >= a.CheckTotalDataEntriesBytesHeight
}

func (a ActivationHeights) Ride4DAppsActive(height uint64) bool {
	return height >= a.Ride4DAppsHeight
}

// FeatureFlags are the engine's remaining boolean knobs. None of them
// is derivable from StdLibVersion; each is an independently injected
// flag.
type FeatureFlags struct {
	// FixUnicodeFunctions switches takeString/dropString on V5+ scripts
	// from UTF-8 byte indices to code-point indices; both forms
	// saturate on out-of-range counts.
	FixUnicodeFunctions bool
	// UseNewPowPrecision is passed through to ride.BuiltinConfig; no
	// builtin in pkg/ride reads it.
	UseNewPowPrecision bool
	// DisallowSelfPayment, combined with "version >= V4", is the sole
	// gate for rejecting a dApp invocation that pays itself.
	DisallowSelfPayment bool
}

// SelfPaymentDisallowed is the one place the engine computes the
// self-payment gate; nothing else compares against a version literal
// for this.
func (f FeatureFlags) SelfPaymentDisallowed(version StdLibVersion) bool {
	return f.DisallowSelfPayment && version.AtLeast(V4)
}
