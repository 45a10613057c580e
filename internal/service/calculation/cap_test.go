package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeductionCap_ClipsExcess(t *testing.T) {
	// gross 5,000 at 50% → ceiling 2,500; raw deductions 4,000 are clipped.
	result, trace := DeductionCap(
		decimal.NewFromInt(4000),
		decimal.NewFromInt(5000),
		decimal.NewFromInt(50),
	)

	assert.True(t, result.Clipped)
	assert.True(t, result.Applied.Equal(decimal.NewFromInt(2500)), "applied %s", result.Applied)
	assert.True(t, result.ClippedBy.Equal(decimal.NewFromInt(1500)))

	// the clip event must appear in the trace for audit
	require.Len(t, trace, 1)
	assert.Equal(t, "deductionCap", trace[0].Step)
	assert.True(t, trace[0].Result.Equal(decimal.NewFromInt(2500)))
}

func TestDeductionCap_NoClipUnderCeiling(t *testing.T) {
	result, trace := DeductionCap(
		decimal.NewFromInt(2000),
		decimal.NewFromInt(5000),
		decimal.NewFromInt(50),
	)

	assert.False(t, result.Clipped)
	assert.True(t, result.Applied.Equal(decimal.NewFromInt(2000)))
	assert.Empty(t, trace)
}

func TestDeductionCap_ExactCeilingIsNotAClip(t *testing.T) {
	result, trace := DeductionCap(
		decimal.NewFromInt(2500),
		decimal.NewFromInt(5000),
		decimal.NewFromInt(50),
	)

	assert.False(t, result.Clipped)
	assert.Empty(t, trace)
}
