package service

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/sparkline"
)

const (
	// placeholderAvatarURL substitutes token avatars that are absent or
	// flagged missing upstream.
	placeholderAvatarURL = "https://via.placeholder.com/40"

	// defaultPortfolioName groups rows that carry no portfolio name.
	defaultPortfolioName = "Uncategorized"
)

// BuildPortfolios maps raw backing-store rows to the portfolio set. The
// function is total and idempotent: malformed fields degrade to
// zero/default values, no row is ever rejected. The result is the
// partition of positions by portfolio name, sorted lexicographically by
// name, with slug ids derived from the names.
func BuildPortfolios(rows []entity.PositionRow) []entity.Portfolio {
	grouped := make(map[string][]entity.Position)
	order := make([]string, 0)

	for _, row := range rows {
		pos := mapRow(row)
		if _, seen := grouped[pos.PortfolioName]; !seen {
			order = append(order, pos.PortfolioName)
		}
		grouped[pos.PortfolioName] = append(grouped[pos.PortfolioName], pos)
	}

	portfolios := make([]entity.Portfolio, 0, len(order))
	for _, name := range order {
		portfolios = append(portfolios, entity.Portfolio{
			ID:        Slugify(name),
			Name:      name,
			Positions: grouped[name],
		})
	}

	sort.Slice(portfolios, func(i, j int) bool {
		return portfolios[i].Name < portfolios[j].Name
	})
	return portfolios
}

// mapRow converts one raw row into a Position, applying the defensive
// coercion and derivation rules.
func mapRow(row entity.PositionRow) entity.Position {
	price := coerceFloat(row.PriceUSD)
	buyPrice := coerceFloat(row.EntryPrice)
	quantity := coerceFloat(row.Quantity)
	invested := coerceFloat(row.InvestedUSD)

	pnlPercent := 0.0
	if buyPrice > 0 {
		pnlPercent = (price - buyPrice) / buyPrice * 100
	}

	name := strings.TrimSpace(row.PortfolioName)
	if name == "" {
		name = defaultPortfolioName
	}

	return entity.Position{
		ID: coerceString(row.ID),
		Token: entity.Token{
			Symbol:    row.Symbol,
			Name:      row.Name,
			Network:   row.Network,
			Address:   normalizeAddress(row.Address),
			AvatarURL: avatarOrPlaceholder(row.AvatarURL),
			ChartURL:  row.ChartURL,
		},
		Price:         price,
		Quantity:      quantity,
		Invested:      invested,
		Value:         price * quantity,
		BuyPrice:      buyPrice,
		PnLPercent:    pnlPercent,
		PortfolioName: name,
		Sparkline:     sparkline.Parse(row.Sparkline),
	}
}

// avatarOrPlaceholder falls back to the placeholder when the source URL
// is absent or flagged as missing.
func avatarOrPlaceholder(url string) string {
	if url == "" || strings.Contains(url, "missing") {
		return placeholderAvatarURL
	}
	return url
}

// normalizeAddress checksums hex-valid EVM addresses; anything else is
// passed through untouched (non-EVM networks keep their native form).
func normalizeAddress(addr string) string {
	if addr == "" || !common.IsHexAddress(addr) {
		return addr
	}
	return common.HexToAddress(addr).Hex()
}

// Slugify derives a portfolio id from its name: lower-cased, whitespace
// runs collapsed to single hyphens.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// coerceFloat converts a raw row value to float64, degrading anything
// unusable to 0.
func coerceFloat(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

// coerceString converts a raw row id to its string form. Whole-number
// ids arrive as JSON numbers and must not pick up an exponent or
// fraction.
func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	default:
		return ""
	}
}
