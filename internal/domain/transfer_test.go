package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransferRecord_Validate(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()

	valid := &TransferRecord{
		SenderID:            sender,
		ReceiverID:          receiver,
		GrossAmount:         decimal.RequireFromString("1000.00"),
		SourceCurrency:      "USD",
		DestinationCurrency: "EUR",
	}
	assert.NoError(t, valid.Validate())

	selfTransfer := *valid
	selfTransfer.ReceiverID = sender
	assert.Error(t, selfTransfer.Validate())

	zeroAmount := *valid
	zeroAmount.GrossAmount = decimal.Zero
	assert.Error(t, zeroAmount.Validate())

	noCurrency := *valid
	noCurrency.DestinationCurrency = ""
	assert.Error(t, noCurrency.Validate())
}

func TestFeeBreakdown_TotalFeeIsSumOfRoundedComponents(t *testing.T) {
	breakdown := FeeBreakdown{
		PlatformBaseFee:        decimal.RequireFromString("1.50"),
		PlatformExchangeProfit: decimal.RequireFromString("1.50"),
		SendingBranchFee:       decimal.RequireFromString("1.50"),
		ReceivingBranchFee:     decimal.RequireFromString("4.00"),
	}

	assert.True(t, breakdown.TotalFee().Equal(decimal.RequireFromString("8.50")))
	assert.True(t, breakdown.PlatformTotal().Equal(decimal.RequireFromString("3.00")))
}

func TestTransferRecord_Releasable(t *testing.T) {
	record := &TransferRecord{Status: TransferStatusCompleted}
	assert.True(t, record.Releasable())

	for _, status := range []TransferStatus{TransferStatusPending, TransferStatusFailed, TransferStatusReleased} {
		record.Status = status
		assert.False(t, record.Releasable())
	}
}

func TestCurrency_RateFallbacks(t *testing.T) {
	c := &Currency{
		Code:              "TL",
		ExchangeRateToUSD: decimal.RequireFromString("0.0241"),
	}

	// No explicit spread recorded: both directions fall back to the mid rate
	assert.True(t, c.BuyingRate().Equal(decimal.RequireFromString("0.0241")))
	assert.True(t, c.SellingRate().Equal(decimal.RequireFromString("0.0241")))

	c.ForexBuyingToUSD = decimal.RequireFromString("0.0239")
	c.ForexSellingToUSD = decimal.RequireFromString("0.0243")
	assert.True(t, c.BuyingRate().Equal(decimal.RequireFromString("0.0239")))
	assert.True(t, c.SellingRate().Equal(decimal.RequireFromString("0.0243")))
}

func TestCurrency_Validate(t *testing.T) {
	usd := &Currency{Code: "USD", ExchangeRateToUSD: decimal.NewFromInt(1)}
	assert.NoError(t, usd.Validate())

	badUSD := &Currency{Code: "USD", ExchangeRateToUSD: decimal.RequireFromString("1.01")}
	assert.Error(t, badUSD.Validate())

	zeroRate := &Currency{Code: "EUR", ExchangeRateToUSD: decimal.Zero}
	assert.Error(t, zeroRate.Validate())
}
