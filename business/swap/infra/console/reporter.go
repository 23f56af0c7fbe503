// Package console renders swap quotes to a terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/swapquote/business/swap/app"
	"github.com/fd1az/swapquote/business/swap/domain"
	"github.com/fd1az/swapquote/internal/apperror"
	"github.com/fd1az/swapquote/pkg/ui"
)

// Ensure Reporter implements app.Reporter.
var _ app.Reporter = (*Reporter)(nil)

// Reporter implements app.Reporter for CLI output.
type Reporter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewReporter creates a Reporter writing to out, or stdout when out is nil.
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{out: out}
}

// Report writes a quote box.
func (r *Reporter) Report(_ context.Context, res *app.QuoteResult) {
	r.write(RenderQuote(res))
}

// ReportError writes an error box.
func (r *Reporter) ReportError(_ context.Context, req app.QuoteRequest, block uint64, err error) {
	r.write(RenderError(req, block, err))
}

func (r *Reporter) write(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, s)
}

// RenderQuote formats a quote result.
func RenderQuote(res *app.QuoteResult) string {
	supplyAsset := res.Supply.Asset().String()
	targetAsset := res.Target.Asset().String()

	var title, boundLabel string
	if res.Quote.Given == domain.SideTarget {
		title = fmt.Sprintf("BUY %s %s", res.TargetDisplay, targetAsset)
		boundLabel = "Maximum paid"
	} else {
		title = fmt.Sprintf("SELL %s %s", res.SupplyDisplay, supplyAsset)
		boundLabel = "Minimum received"
	}
	boundAsset := targetAsset
	if res.Quote.Given == domain.SideTarget {
		boundAsset = supplyAsset
	}

	rows := []string{
		ui.TitleStyle.Render(title),
		"",
		ui.Row("Block", fmt.Sprintf("#%d", res.Block)),
		ui.Row("Pair", res.Request.Pair.String()),
		ui.Row("You pay", ui.AmountValue.Render(res.SupplyDisplay+" "+supplyAsset)),
		ui.Row("You receive", ui.AmountValue.Render(res.TargetDisplay+" "+targetAsset)),
		ui.Row(boundLabel, ui.BoundValue.Render(res.BoundDisplay+" "+boundAsset)),
		ui.Row("Slippage", res.Request.Tolerance.Percent().String()+"%"),
		ui.Row("Fee", res.Quote.Fee.String()),
		ui.Row("Spot price", formatPrice(res.SpotPrice.Rate().StringFixed(6), supplyAsset, targetAsset)),
	}
	if inv, err := res.SpotPrice.Invert(); err == nil {
		rows = append(rows, ui.Row("Inverse", formatPrice(inv.Rate().StringFixed(6), targetAsset, supplyAsset)))
	}
	if res.ImpactDisplay != "" {
		rows = append(rows, ui.Row("Price impact", res.ImpactDisplay+" "+targetAsset))
	}
	if !res.ExecutionPrice.IsZero() {
		rows = append(rows, ui.Row("Exec price", formatPrice(res.ExecutionPrice.Rate().StringFixed(6), supplyAsset, targetAsset)))
	}
	if res.Warning != nil {
		rows = append(rows, ui.Row("Warning", ui.WarningValue.Render(res.Warning.Error())))
	}

	return ui.BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// RenderError formats a failed quote.
func RenderError(req app.QuoteRequest, block uint64, err error) string {
	code := apperror.GetCode(err)
	rows := []string{
		ui.ErrorValue.Render(string(code)),
		"",
		ui.Row("Block", fmt.Sprintf("#%d", block)),
		ui.Row("Pair", req.Pair.String()),
		ui.Row("Request", fmt.Sprintf("%s %s", req.Side, req.Amount)),
		ui.Row("Kind", string(apperror.KindOf(err))),
		ui.Row("Detail", ui.MutedValue.Render(strings.TrimSpace(err.Error()))),
	}
	return ui.ErrorBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatPrice(rate, supply, target string) string {
	return fmt.Sprintf("%s %s per %s", rate, target, supply)
}
