package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/miguelangat/dividela/internal/catalog"
	"github.com/miguelangat/dividela/internal/engine"
	"github.com/miguelangat/dividela/internal/model"
)

const highConfidence = 0.8

// FormatConfidence renders a confidence as a percentage colored by strength
// relative to threshold.
func FormatConfidence(confidence, threshold float64) string {
	text := fmt.Sprintf("%.1f%%", confidence*100)
	switch {
	case confidence >= highConfidence:
		return SuccessStyle.Render(text)
	case confidence >= threshold:
		return WarningStyle.Render(text)
	default:
		return ErrorStyle.Render(text)
	}
}

// FormatCategory renders a category with its icon. A withheld category
// renders as "uncategorized".
func FormatCategory(c model.Category) string {
	if c.IsNone() {
		return QuestionIcon + " " + SubtleStyle.Render("uncategorized")
	}
	return CategoryIcon(c) + " " + BoldStyle.Render(c.String())
}

func formatAlternatives(alts model.Alternatives) string {
	if len(alts) == 0 {
		return SubtleStyle.Render("none")
	}
	parts := make([]string, len(alts))
	for i, alt := range alts {
		parts[i] = fmt.Sprintf("%s (%.1f%%)", alt.Category, alt.Confidence*100)
	}
	return strings.Join(parts, ", ")
}

func writeString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func predictionBody(resp model.PredictionResponse, threshold float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Category:     %s\n", FormatCategory(resp.Category))
	fmt.Fprintf(&b, "Confidence:   %s\n", FormatConfidence(resp.Confidence, threshold))
	fmt.Fprintf(&b, "Source:       %s\n", resp.Source)
	fmt.Fprintf(&b, "Alternatives: %s", formatAlternatives(resp.Alternatives))
	if resp.BelowThreshold {
		b.WriteString("\n\n" + FormatWarning("Not confident enough to assign a category"))
		if len(resp.Alternatives) > 0 {
			fmt.Fprintf(&b, "\n%s", FormatInfo("Did you mean "+string(resp.Alternatives[0].Category)+"?"))
		}
	}
	return b.String()
}

// RenderPrediction writes a boxed prediction for merchant.
func RenderPrediction(w io.Writer, merchant string, resp model.PredictionResponse, threshold float64) error {
	title := "Prediction"
	if merchant != "" {
		title += " for " + merchant
	}
	return writeString(w, RenderBox(title, predictionBody(resp, threshold))+"\n")
}

// RenderExplanation writes a prediction followed by every signal behind it.
func RenderExplanation(w io.Writer, merchant string, exp engine.Explanation, threshold float64) error {
	if err := RenderPrediction(w, merchant, exp.Response, threshold); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("\n" + TitleStyle.Render(ChartIcon+" Signals") + "\n")

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		HeaderStyle.Render("Source"),
		HeaderStyle.Render("Category"),
		HeaderStyle.Render("Confidence"),
		HeaderStyle.Render("Weighted"),
		HeaderStyle.Render("Detail"))
	for _, s := range exp.Signals {
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.3f\t%s\n",
			s.Source, s.Category, s.Confidence, s.Confidence*engine.SourceWeight(s.Source), signalDetail(s))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to render signals: %w", err)
	}

	agg := exp.Aggregate
	fmt.Fprintf(&b, "\nWinner %s from %d signal(s), average weighted score %.3f\n",
		agg.Category, agg.Hits, agg.AverageScore)

	return writeString(w, b.String())
}

func signalDetail(s model.Prediction) string {
	switch s.Source {
	case model.SourceExactMerchant:
		return fmt.Sprintf("%d of %d past expenses at %q", s.DominantCount, s.TotalMatches, s.MatchedMerchant)
	case model.SourceFuzzyMerchant:
		return fmt.Sprintf("like %q (similarity %.2f)", s.MatchedMerchant, s.Similarity)
	case model.SourceKeyword, model.SourceGeneric:
		if len(s.MatchedKeywords) > 0 {
			return "keywords: " + strings.Join(s.MatchedKeywords, ", ")
		}
	}
	return ""
}

// RenderBatch writes one row per statement line with its prediction and a
// summary of how many lines were categorized.
func RenderBatch(w io.Writer, lines []model.StatementLine, resps []model.PredictionResponse, threshold float64) error {
	if len(lines) != len(resps) {
		return fmt.Errorf("failed to render batch: %d lines but %d predictions", len(lines), len(resps))
	}
	if len(lines) == 0 {
		return writeString(w, InfoStyle.Render("No statement lines to categorize.")+"\n")
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
		HeaderStyle.Render("Date"),
		HeaderStyle.Render("Merchant"),
		HeaderStyle.Render("Amount"),
		HeaderStyle.Render("Category"),
		HeaderStyle.Render("Confidence"),
		HeaderStyle.Render("Source"))

	assigned := 0
	for i, line := range lines {
		resp := resps[i]
		if !resp.Category.IsNone() {
			assigned++
		}
		date := ""
		if !line.Date.IsZero() {
			date = line.Date.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\t%s\n",
			date, line.Merchant, line.Amount, categoryCell(resp),
			FormatConfidence(resp.Confidence, threshold), resp.Source)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to render batch: %w", err)
	}

	b.WriteString("\n")
	b.WriteString(FormatSuccess(fmt.Sprintf("%d of %d lines categorized", assigned, len(lines))))
	if review := len(lines) - assigned; review > 0 {
		b.WriteString("\n" + FormatWarning(fmt.Sprintf("%d lines need review", review)))
	}
	b.WriteString("\n")

	return writeString(w, b.String())
}

func categoryCell(resp model.PredictionResponse) string {
	if !resp.Category.IsNone() {
		return resp.Category.String()
	}
	if len(resp.Alternatives) > 0 {
		return SubtleStyle.Render("? " + string(resp.Alternatives[0].Category))
	}
	return SubtleStyle.Render("?")
}

// RenderCatalog writes the rule catalog and the description keyword table.
func RenderCatalog(w io.Writer, cat *catalog.Catalog, desc *catalog.DescriptionTable) error {
	var b strings.Builder
	b.WriteString(FormatTitle("Category rules") + "\n")

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		HeaderStyle.Render("Category"),
		HeaderStyle.Render("Range"),
		HeaderStyle.Render("Typical"),
		HeaderStyle.Render("Keywords"))
	for _, e := range cat.Entries() {
		fmt.Fprintf(tw, "%s\t%g-%g\t%g\t%s\n",
			e.Category, e.Rule.AmountRange.Min, e.Rule.AmountRange.Max, e.Rule.TypicalAmount,
			strings.Join(e.Rule.Keywords, ", "))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to render catalog: %w", err)
	}
	fmt.Fprintf(&b, "%s\n\n", SubtleStyle.Render("Fallback: "+cat.Fallback().String()))

	b.WriteString(FormatTitle("Description keywords") + "\n")
	tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, set := range desc.Sets() {
		fmt.Fprintf(tw, "%s\t%s\n", set.Category, strings.Join(set.Keywords, ", "))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to render description keywords: %w", err)
	}

	return writeString(w, b.String())
}

// RenderHistory writes stored expenses as a table.
func RenderHistory(w io.Writer, expenses []model.Expense) error {
	if len(expenses) == 0 {
		return writeString(w, InfoStyle.Render("No expenses found. Use 'dividela history import' to add some.")+"\n")
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		HeaderStyle.Render("Date"),
		HeaderStyle.Render("Merchant"),
		HeaderStyle.Render("Category"),
		HeaderStyle.Render("Amount"),
		HeaderStyle.Render("Description"))
	for _, e := range expenses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n",
			e.Date.Format("2006-01-02"), e.Merchant, e.Category, e.Amount, e.Description)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to render history: %w", err)
	}
	fmt.Fprintf(&b, "\n%s\n", SubtleStyle.Render(fmt.Sprintf("%d expenses", len(expenses))))

	return writeString(w, b.String())
}
