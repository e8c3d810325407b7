package entity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeeStateSplit(t *testing.T) {
	type testcase struct {
		name             string
		rateBps          uint16
		price            int64
		expectedFee      int64
		expectedProceeds int64
	}
	testcases := []testcase{
		{
			name:             "exact_division",
			rateBps:          250,
			price:            10_000,
			expectedFee:      250,
			expectedProceeds: 9_750,
		},
		{
			name:             "fee_rounds_down",
			rateBps:          250,
			price:            3,
			expectedFee:      0,
			expectedProceeds: 3,
		},
		{
			name:             "zero_rate",
			rateBps:          0,
			price:            10_000,
			expectedFee:      0,
			expectedProceeds: 10_000,
		},
		{
			name:             "max_rate",
			rateBps:          MaxFeeRateBps,
			price:            12_345,
			expectedFee:      1_234,
			expectedProceeds: 11_111,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			feeState := FeeState{AccumulatedFees: big.NewInt(0), FeeRateBps: tc.rateBps}
			fee, proceeds := feeState.Split(big.NewInt(tc.price))
			assert.Equal(t, tc.expectedFee, fee.Int64())
			assert.Equal(t, tc.expectedProceeds, proceeds.Int64())
			assert.Equal(t, tc.price, new(big.Int).Add(fee, proceeds).Int64(), "fee + proceeds must equal price")
		})
	}
}
