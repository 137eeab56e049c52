// Package invoke implements invoke-script fee/step accounting and the
// synchronous cross-dApp call orchestration: depth limiting,
// reentrancy gating, and wiring pkg/ride's evaluator back into
// pkg/action's fold for each recursive call.
package invoke

import (
	"github.com/Nekuips1x/Waves/pkg/errs"
	"github.com/Nekuips1x/Waves/pkg/settings"
	"github.com/Nekuips1x/Waves/pkg/state"
)

// Steps computes ceil(usedComplexity / stepLimit) for version's
// per-version step size.
func Steps(usedComplexity uint64, version settings.StdLibVersion) uint64 {
	stepLimit := settings.MaxComplexityByVersion(version)
	if stepLimit == 0 {
		return 0
	}
	return (usedComplexity + stepLimit - 1) / stepLimit
}

// MinFee computes the minimum acceptable fee in base units for an
// invoke-script transaction:
// FeeUnit * (InvokeFeeBase*steps + nonNftIssueCount*IssueFeeBase +
// extraScriptInvocations*ScriptExtraFee).
func MinFee(usedComplexity uint64, version settings.StdLibVersion, nonNftIssueCount int, extraScriptInvocations int) int64 {
	steps := int64(Steps(usedComplexity, version))
	return settings.FeeUnit * (settings.InvokeFeeBase*steps +
		int64(nonNftIssueCount)*settings.IssueFeeBase +
		int64(extraScriptInvocations)*settings.ScriptExtraFee)
}

// NonNftIssueCount counts the Issue entries of d whose resulting asset
// is not an NFT (decimals == 0, quantity == 1, not reissuable is the
// protocol's NFT predicate; the diff only records issued assets, so
// this walks d.IssuedAssets rather than the raw action list).
func NonNftIssueCount(d state.Diff) int {
	n := 0
	for _, desc := range d.IssuedAssets {
		if !desc.NFT {
			n++
		}
	}
	return n
}

// CheckMinFee validates that attachedBaseFee (already sponsorship-
// converted by the caller, if applicable) covers MinFee, returning a
// FeeForActionsError carrying the computed minimum otherwise.
func CheckMinFee(attachedBaseFee int64, usedComplexity uint64, version settings.StdLibVersion, nonNftIssueCount int, extraScriptInvocations int) error {
	minFee := MinFee(usedComplexity, version, nonNftIssueCount, extraScriptInvocations)
	if attachedBaseFee < minFee {
		return errs.NewFeeForActionsError("fee is less than the minimum required", usedComplexity, minFee)
	}
	return nil
}

// ResolveAttachedFee converts the transaction's attached fee to base
// units if it was paid in a sponsored asset. A rate
// of zero means "not sponsored" and the attached amount is returned
// unconverted.
func ResolveAttachedFee(attached int64, sponsorshipRate int64) int64 {
	if sponsorshipRate == 0 {
		return attached
	}
	return state.ToBase(attached, sponsorshipRate)
}
