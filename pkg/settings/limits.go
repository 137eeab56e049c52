package settings

// Fee constants, in the base asset's smallest unit.
const (
	FeeUnit        int64 = 100_000
	InvokeFeeBase  int64 = 5
	IssueFeeBase   int64 = 1000
	ScriptExtraFee int64 = 4
)

// Size/count limits.
const (
	DataTxMaxBytes      = 153_600
	DataTxMaxProtoBytes = 165_890
	MaxEntryCount       = 100

	// MaxTotalWriteSetSizeInBytes bounds the sum of DataEntry.BinarySize
	// across one invocation's data actions.
	MaxTotalWriteSetSizeInBytes = 5 * 1024

	// MaxSyncDepth bounds recursive synchronous invoke depth.
	MaxSyncDepth = 100

	// TotalComplexityLimit bounds the sum of all complexity spent by one
	// transaction, across the main callable and every sync call and
	// asset-script invocation.
	TotalComplexityLimit = 52_000
)

// MaxKeySize returns the per-version data-entry key size limit in
// bytes.
func MaxKeySize(v StdLibVersion) int {
	if v.AtLeast(V4) {
		return 400
	}
	return 100
}

// MaxWriteSetSize returns the per-version maximum count of data
// operations in one invocation.
func MaxWriteSetSize(v StdLibVersion) int {
	if v.AtLeast(V4) {
		return 100
	}
	return 100
}

// MaxCallableActions returns the per-version maximum count of
// non-data callable actions in one invocation.
func MaxCallableActions(v StdLibVersion) int {
	switch {
	case v.AtLeast(V5):
		return 30
	case v.AtLeast(V4):
		return 30
	default:
		return 10
	}
}

// MaxComplexityByVersion is the per-call complexity step size used by
// the fee-step formula.
func MaxComplexityByVersion(v StdLibVersion) uint64 {
	switch {
	case v.AtLeast(V5):
		return 52_000
	case v.AtLeast(V4):
		return 4_000
	default:
		return 4_000
	}
}

// EmptyKeyAllowed reports whether an empty data-entry key is accepted:
// disallowed since V4.
func EmptyKeyAllowed(v StdLibVersion) bool {
	return !v.AtLeast(V4)
}
