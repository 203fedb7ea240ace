// Package report renders finished rides for people to read.
package report

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/tatianab/rickshaw/internal/engine"
	"github.com/tatianab/rickshaw/internal/models"
	"github.com/tatianab/rickshaw/internal/pricing"
)

// Banner is printed before the driver's first line.
func Banner(start string) string {
	return "🛺 You're negotiating with an auto driver in Bangalore!\n" +
		"🎯 Ask to go to areas like MG Road, Indiranagar, Koramangala, etc.\n" +
		"🗺️ The driver is currently at " + models.Title(start) + "\n" +
		"🔍 Type 'exit' to end the conversation\n"
}

// Summary describes an agreed ride and its score.
func Summary(r *engine.Result) string {
	var b strings.Builder
	c := r.Conditions

	b.WriteString("📦 Chat ended.\n")
	fmt.Fprintf(&b, "🚕 Destination: %s\n", models.Title(r.Destination.Name))
	fmt.Fprintf(&b, "🛣️ Distance: %.1f km (approx)\n", r.Distance)
	fmt.Fprintf(&b, "⏰ Time: %s\n", pricing.TimeOfDay(c.Hour))
	fmt.Fprintf(&b, "🚦 Traffic: %s\n", models.Title(string(c.Traffic)))
	fmt.Fprintf(&b, "🌤️ Weather: %s\n", models.Title(string(c.Weather)))
	fmt.Fprintf(&b, "😊 Driver Mood: %s\n", models.Title(string(c.Mood)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "💰 Original quote: ₹%d\n", r.Quoted)
	fmt.Fprintf(&b, "📉 Final agreed price: ₹%d\n", r.Final)
	fmt.Fprintf(&b, "🧾 Driver's minimum: ₹%d\n", r.Minimum)
	b.WriteString("\n")
	fmt.Fprintf(&b, "🧠 Negotiation rating: %d/10\n", r.Score)
	b.WriteString(engine.Rating(r.Score) + "\n")
	return b.String()
}

// ReceiptsTable lays saved rides out one per row, with a footer averaging the scores.
func ReceiptsTable(receipts []models.Receipt) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"When", "From", "To", "Conditions", "Quoted", "Paid", "Min", "Rounds", "Score"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Quoted", Align: text.AlignRight},
		{Name: "Paid", Align: text.AlignRight},
		{Name: "Min", Align: text.AlignRight},
		{Name: "Rounds", Align: text.AlignRight},
		{Name: "Score", Align: text.AlignRight},
	})

	total := 0
	for _, r := range receipts {
		c := r.Conditions
		t.AppendRow(table.Row{
			r.At.Format("2006-01-02 15:04"),
			models.Title(r.From),
			models.Title(r.To),
			fmt.Sprintf("%s, %s traffic, %s, %s driver",
				pricing.TimeOfDay(c.Hour), strings.ReplaceAll(string(c.Traffic), "_", " "),
				strings.ReplaceAll(string(c.Weather), "_", " "), c.Mood),
			fmt.Sprintf("₹%d", r.Quoted),
			fmt.Sprintf("₹%d", r.Final),
			fmt.Sprintf("₹%d", r.Minimum),
			r.Rounds,
			fmt.Sprintf("%d/10", r.Score),
		})
		total += r.Score
	}

	avg := "-"
	if len(receipts) > 0 {
		avg = fmt.Sprintf("%.1f/10", float64(total)/float64(len(receipts)))
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d rides", len(receipts)), "", "", "", "", "", "", "avg", avg})
	return t.Render()
}
