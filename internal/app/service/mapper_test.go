package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_tracker/internal/domain/entity"
)

func TestBuildPortfolios_GroupsAndSortsByName(t *testing.T) {
	rows := []entity.PositionRow{
		{ID: "1", Symbol: "ETH", PortfolioName: "Long Term"},
		{ID: "2", Symbol: "SOL", PortfolioName: "Degen Plays"},
		{ID: "3", Symbol: "BTC", PortfolioName: "Long Term"},
	}

	portfolios := BuildPortfolios(rows)
	require.Len(t, portfolios, 2)

	assert.Equal(t, "Degen Plays", portfolios[0].Name)
	assert.Equal(t, "degen-plays", portfolios[0].ID)
	assert.Len(t, portfolios[0].Positions, 1)

	assert.Equal(t, "Long Term", portfolios[1].Name)
	assert.Equal(t, "long-term", portfolios[1].ID)
	assert.Len(t, portfolios[1].Positions, 2)
}

func TestBuildPortfolios_DefaultsMissingPortfolioName(t *testing.T) {
	portfolios := BuildPortfolios([]entity.PositionRow{
		{ID: "1", Symbol: "DOGE"},
		{ID: "2", Symbol: "PEPE", PortfolioName: "   "},
	})

	require.Len(t, portfolios, 1)
	assert.Equal(t, "Uncategorized", portfolios[0].Name)
	assert.Equal(t, "uncategorized", portfolios[0].ID)
	assert.Len(t, portfolios[0].Positions, 2)
}

func TestMapRow_DerivesValueAndPnL(t *testing.T) {
	pos := mapRow(entity.PositionRow{
		ID:          "42",
		Symbol:      "ETH",
		PriceUSD:    3000.0,
		EntryPrice:  2000.0,
		Quantity:    2.0,
		InvestedUSD: 4000.0,
	})

	assert.Equal(t, "42", pos.ID)
	assert.Equal(t, 6000.0, pos.Value)
	assert.InDelta(t, 50.0, pos.PnLPercent, 1e-9)
}

func TestMapRow_ZeroBuyPriceMeansZeroPnL(t *testing.T) {
	pos := mapRow(entity.PositionRow{PriceUSD: 100.0, EntryPrice: 0.0, Quantity: 1.0})
	assert.Equal(t, 0.0, pos.PnLPercent)

	pos = mapRow(entity.PositionRow{PriceUSD: 100.0, EntryPrice: -5.0, Quantity: 1.0})
	assert.Equal(t, 0.0, pos.PnLPercent)
}

func TestMapRow_CoercesMalformedFields(t *testing.T) {
	pos := mapRow(entity.PositionRow{
		ID:          7.0,
		PriceUSD:    "12.5",
		EntryPrice:  "not a number",
		Quantity:    nil,
		InvestedUSD: []any{"garbage"},
	})

	assert.Equal(t, "7", pos.ID)
	assert.Equal(t, 12.5, pos.Price)
	assert.Equal(t, 0.0, pos.BuyPrice)
	assert.Equal(t, 0.0, pos.Quantity)
	assert.Equal(t, 0.0, pos.Invested)
	assert.Equal(t, 0.0, pos.Value)
}

func TestMapRow_AvatarPlaceholder(t *testing.T) {
	pos := mapRow(entity.PositionRow{AvatarURL: ""})
	assert.Equal(t, "https://via.placeholder.com/40", pos.Token.AvatarURL)

	pos = mapRow(entity.PositionRow{AvatarURL: "https://cdn.example.com/missing.png"})
	assert.Equal(t, "https://via.placeholder.com/40", pos.Token.AvatarURL)

	pos = mapRow(entity.PositionRow{AvatarURL: "https://cdn.example.com/eth.png"})
	assert.Equal(t, "https://cdn.example.com/eth.png", pos.Token.AvatarURL)
}

func TestMapRow_ChecksumsHexAddresses(t *testing.T) {
	pos := mapRow(entity.PositionRow{Address: "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"})
	assert.Equal(t, "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359", pos.Token.Address)

	// Non-EVM addresses pass through untouched.
	pos = mapRow(entity.PositionRow{Address: "So11111111111111111111111111111111111111112"})
	assert.Equal(t, "So11111111111111111111111111111111111111112", pos.Token.Address)
}

func TestMapRow_ParsesSparkline(t *testing.T) {
	pos := mapRow(entity.PositionRow{Sparkline: "1,2,3"})
	assert.Equal(t, []float64{1, 2, 3}, pos.Sparkline)

	pos = mapRow(entity.PositionRow{Sparkline: []any{1.5, 2.5}})
	assert.Equal(t, []float64{1.5, 2.5}, pos.Sparkline)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "long-term", Slugify("Long Term"))
	assert.Equal(t, "a-b-c", Slugify("  A   b\tC "))
	assert.Equal(t, "", Slugify("   "))
}
