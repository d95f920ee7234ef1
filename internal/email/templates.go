package email

import (
	"fmt"
	"html"
	"strings"
)

// RequestLine is a submitted request line for email purposes
type RequestLine struct {
	Item  string
	Qty   int
	Event string
}

// StockAlert describes an approval that left stock below zero
type StockAlert struct {
	ItemCode  string
	Item      string
	Qty       int
	Stock     int
	User      string
	Event     string
	Timestamp string
}

const cellStyle = `padding: 8px 12px; border-bottom: 1px solid #eee;`

// BuildPendingRequestsBody builds the HTML body listing newly submitted requests
func BuildPendingRequestsBody(user, reqType string, lines []RequestLine) string {
	var rows strings.Builder
	for _, line := range lines {
		rows.WriteString(fmt.Sprintf(
			`<tr><td style="%s">%s</td><td style="%s text-align: right;">%d</td><td style="%s">%s</td></tr>`,
			cellStyle, html.EscapeString(line.Item),
			cellStyle, line.Qty,
			cellStyle, html.EscapeString(line.Event),
		))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h2 style="margin-top: 0;">New %s requests</h2>
	<p><strong>%s</strong> submitted %d line(s). They stay pending until approved.</p>
	<table style="width: 100%%; border-collapse: collapse;">
		<thead><tr><th style="%s text-align: left;">Item</th><th style="%s text-align: right;">Qty</th><th style="%s text-align: left;">Event</th></tr></thead>
		<tbody>%s</tbody>
	</table>
</body>
</html>`,
		html.EscapeString(reqType),
		html.EscapeString(user), len(lines),
		cellStyle, cellStyle, cellStyle,
		rows.String(),
	)
}

// BuildNegativeStockBody builds the HTML body for a negative stock alert
func BuildNegativeStockBody(alert StockAlert) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h2 style="margin-top: 0; color: #c0392b;">Negative stock</h2>
	<p>Approving an OUT request of <strong>%d</strong> x %s (%s) for %s left the stock at <strong>%d</strong>.</p>
	<p>Event: %s<br>Approved at: %s</p>
</body>
</html>`,
		alert.Qty, html.EscapeString(alert.Item), html.EscapeString(alert.ItemCode), html.EscapeString(alert.User),
		alert.Stock,
		html.EscapeString(alert.Event), html.EscapeString(alert.Timestamp),
	)
}
