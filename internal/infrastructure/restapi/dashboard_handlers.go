package restapi

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/format"
	"portfolio_tracker/internal/pkg/sparkline"
)

// RenderedPosition is one table or card row, display strings already
// formatted and privacy-masked server side.
type RenderedPosition struct {
	ID            string              `json:"id"`
	Token         entity.Token        `json:"token"`
	Price         string              `json:"price"`
	Quantity      string              `json:"quantity"`
	Invested      string              `json:"invested"`
	Value         string              `json:"value"`
	BuyPrice      string              `json:"buyPrice"`
	PnLPercent    string              `json:"pnlPercent"`
	PnLTone       string              `json:"pnlTone"`
	PortfolioName string              `json:"portfolioName"`
	Sparkline     *sparkline.Polyline `json:"sparkline,omitempty"`
	SparklineSVG  string              `json:"sparklineSvg,omitempty"`
	MenuOpen      bool                `json:"menuOpen"`
}

// RenderedTotals are the summary cards as display strings.
type RenderedTotals struct {
	Invested   string `json:"invested"`
	Value      string `json:"value"`
	PnL        string `json:"pnl"`
	PnLPercent string `json:"pnlPercent"`
	PnLTone    string `json:"pnlTone"`
}

// DashboardResponse is the full dashboard payload for one view session.
type DashboardResponse struct {
	PortfolioID   string                    `json:"portfolioId"`
	PortfolioName string                    `json:"portfolioName"`
	Portfolios    []entity.PortfolioSummary `json:"portfolios"`
	Positions     []RenderedPosition        `json:"positions"`
	FilteredCount int                       `json:"filteredCount"`
	TotalCount    int                       `json:"totalCount"`
	HasMore       bool                      `json:"hasMore"`
	Totals        RenderedTotals            `json:"totals"`
	State         entity.ViewState          `json:"state"`
}

// DashboardHandler serves the derived-view snapshot and the state
// mutations behind every dashboard control.
type DashboardHandler struct {
	dashboard  port.DashboardService
	portfolios port.PortfolioService
	notifier   port.Notifier
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(ds port.DashboardService, ps port.PortfolioService, n port.Notifier) *DashboardHandler {
	return &DashboardHandler{
		dashboard:  ds,
		portfolios: ps,
		notifier:   n,
	}
}

func renderPosition(p entity.Position, private bool, openMenuID string) RenderedPosition {
	rendered := RenderedPosition{
		ID:            p.ID,
		Token:         p.Token,
		Price:         format.MaskIfPrivate(private, format.FormatCryptoPrice(p.Price)),
		Quantity:      format.MaskIfPrivate(private, format.FormatQuantity(p.Quantity)),
		Invested:      format.MaskIfPrivate(private, format.FormatCurrency(p.Invested)),
		Value:         format.MaskIfPrivate(private, format.FormatCurrency(p.Value)),
		BuyPrice:      format.MaskIfPrivate(private, format.FormatCryptoPrice(p.BuyPrice)),
		PnLPercent:    format.MaskIfPrivate(private, format.FormatPercent(p.PnLPercent)),
		PnLTone:       format.PnLTone(p.PnLPercent),
		PortfolioName: p.PortfolioName,
		MenuOpen:      openMenuID != "" && openMenuID == p.ID,
	}
	if line, ok := sparkline.Render(p.Sparkline, sparkline.DefaultWidth, sparkline.DefaultHeight); ok {
		rendered.Sparkline = &line
		rendered.SparklineSVG = line.SVG()
	}
	return rendered
}

func renderTotals(t entity.Totals, private bool) RenderedTotals {
	return RenderedTotals{
		Invested:   format.MaskIfPrivate(private, format.FormatCurrency(t.Invested)),
		Value:      format.MaskIfPrivate(private, format.FormatCurrency(t.Value)),
		PnL:        format.MaskIfPrivate(private, format.FormatCurrency(t.PnL)),
		PnLPercent: format.MaskIfPrivate(private, format.FormatPercent(t.PnLPercent)),
		PnLTone:    format.PnLTone(t.PnLPercent),
	}
}

func (h *DashboardHandler) respondSnapshot(c *gin.Context) {
	view := h.dashboard.Snapshot(viewSessionID(c))
	private := view.State.PrivacyMode

	positions := make([]RenderedPosition, 0, len(view.Positions))
	for _, p := range view.Positions {
		positions = append(positions, renderPosition(p, private, view.State.OpenMenuID))
	}

	c.JSON(http.StatusOK, DashboardResponse{
		PortfolioID:   view.PortfolioID,
		PortfolioName: view.PortfolioName,
		Portfolios:    h.portfolios.Summaries(),
		Positions:     positions,
		FilteredCount: view.FilteredCount,
		TotalCount:    view.TotalCount,
		HasMore:       view.State.VisibleCount < view.FilteredCount,
		Totals:        renderTotals(view.Totals, private),
		State:         view.State,
	})
}

// RootHandler consumes the auth redirect markers. A request carrying
// login=success or error=... turns the marker into a toast for the
// caller's view session and redirects back to a clean root URL.
func (h *DashboardHandler) RootHandler(c *gin.Context) {
	sessionID := viewSessionID(c)

	if c.Query("login") == "success" {
		h.notifier.Push(sessionID, entity.Toast{
			Kind:  entity.ToastSuccess,
			Title: "Successfully signed in",
		})
		c.Redirect(http.StatusFound, "/")
		return
	}
	if errMsg := c.Query("error"); errMsg != "" {
		decoded, err := url.QueryUnescape(errMsg)
		if err != nil {
			decoded = errMsg
		}
		h.notifier.Push(sessionID, entity.Toast{
			Kind:        entity.ToastError,
			Title:       "Sign in failed",
			Description: decoded,
		})
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"service": "portfolio_tracker",
		"status":  "ok",
	})
}

// GetPortfoliosHandler returns the portfolio selector payload.
func (h *DashboardHandler) GetPortfoliosHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"portfolios": h.portfolios.Summaries()})
}

// GetDashboardHandler returns the current derived view for the caller's
// session.
func (h *DashboardHandler) GetDashboardHandler(c *gin.Context) {
	h.respondSnapshot(c)
}

type selectPortfolioRequest struct {
	PortfolioID string `json:"portfolioId" binding:"required"`
}

// SelectPortfolioHandler switches the active portfolio.
func (h *DashboardHandler) SelectPortfolioHandler(c *gin.Context) {
	var req selectPortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.dashboard.SelectPortfolio(viewSessionID(c), req.PortfolioID)
	h.respondSnapshot(c)
}

type searchRequest struct {
	Query string `json:"query"`
}

// SearchHandler updates the search query.
func (h *DashboardHandler) SearchHandler(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.dashboard.SetSearch(viewSessionID(c), req.Query)
	h.respondSnapshot(c)
}

type sortRequest struct {
	Key string `json:"key" binding:"required"`
}

var sortKeys = map[string]entity.SortKey{
	"token":      entity.SortKeyToken,
	"price":      entity.SortKeyPrice,
	"quantity":   entity.SortKeyQuantity,
	"invested":   entity.SortKeyInvested,
	"value":      entity.SortKeyValue,
	"buyPrice":   entity.SortKeyBuyPrice,
	"pnlPercent": entity.SortKeyPnLPercent,
}

// SortHandler applies the column-click toggle.
func (h *DashboardHandler) SortHandler(c *gin.Context) {
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	key, ok := sortKeys[req.Key]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort key: " + req.Key})
		return
	}
	h.dashboard.SortBy(viewSessionID(c), key)
	h.respondSnapshot(c)
}

type viewModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// ViewModeHandler switches between the table and the card grid.
func (h *DashboardHandler) ViewModeHandler(c *gin.Context) {
	var req viewModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mode := entity.ViewMode(req.Mode)
	if mode != entity.ViewModeList && mode != entity.ViewModeGrid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown view mode: " + req.Mode})
		return
	}
	h.dashboard.SetViewMode(viewSessionID(c), mode)
	h.respondSnapshot(c)
}

// PrivacyHandler toggles balance masking.
func (h *DashboardHandler) PrivacyHandler(c *gin.Context) {
	h.dashboard.TogglePrivacy(viewSessionID(c))
	h.respondSnapshot(c)
}

// LoadMoreHandler grows the visible window by one page.
func (h *DashboardHandler) LoadMoreHandler(c *gin.Context) {
	h.dashboard.LoadMore(viewSessionID(c))
	h.respondSnapshot(c)
}

type menuRequest struct {
	PositionID string `json:"positionId"`
}

// MenuHandler opens one row menu or, with an empty id, closes all.
func (h *DashboardHandler) MenuHandler(c *gin.Context) {
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.dashboard.OpenMenu(viewSessionID(c), req.PositionID)
	h.respondSnapshot(c)
}

// RefreshHandler re-fetches the backing rows and rebuilds the portfolio
// set.
func (h *DashboardHandler) RefreshHandler(c *gin.Context) {
	sessionID := viewSessionID(c)
	if err := h.portfolios.Refresh(c.Request.Context()); err != nil {
		h.notifier.Push(sessionID, entity.Toast{
			Kind:        entity.ToastError,
			Title:       "Refresh failed",
			Description: err.Error(),
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	h.notifier.Push(sessionID, entity.Toast{
		Kind:  entity.ToastSuccess,
		Title: "Portfolio refreshed",
	})
	h.respondSnapshot(c)
}

// DeletePositionHandler removes one position and re-fetches.
func (h *DashboardHandler) DeletePositionHandler(c *gin.Context) {
	sessionID := viewSessionID(c)
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing position id"})
		return
	}
	if err := h.portfolios.DeletePosition(c.Request.Context(), id); err != nil {
		h.notifier.Push(sessionID, entity.Toast{
			Kind:        entity.ToastError,
			Title:       "Failed to delete position",
			Description: err.Error(),
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	h.dashboard.OpenMenu(sessionID, "")
	h.notifier.Push(sessionID, entity.Toast{
		Kind:  entity.ToastSuccess,
		Title: "Position deleted",
	})
	h.respondSnapshot(c)
}

// NotificationsHandler delivers and clears the session's queued toasts.
func (h *DashboardHandler) NotificationsHandler(c *gin.Context) {
	toasts := h.notifier.Drain(viewSessionID(c))
	if toasts == nil {
		toasts = []entity.Toast{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": toasts})
}
