package chat

import (
	"bytes"
	"embed"
	"html/template"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vbonduro/nutribot/internal/domain"
)

// Disclaimer closes every recommendation.
const Disclaimer = "Note: these are estimates to help portion control. " +
	"For personalized medical advice consult a registered dietitian or physician."

const placeholderHTML = "Analyzing..."

// HelpExamples are the sample prompts listed by the help turn.
var HelpExamples = []string{
	"70kg craving nachos want to lose weight",
	"I am 65 kg, craving sweet",
	"What can I have for a protein snack at 80kg?",
}

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"grams":      formatGrams,
	"disclaimer": func() string { return Disclaimer },
}).ParseFS(templatesFS, "templates/*.html"))

// Render returns the HTML fragment for a recommendation turn.
func Render(rec domain.Recommendation) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "result", rec); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderHelp returns the HTML fragment for the static usage turn.
func RenderHelp() (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "help", HelpExamples); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PlainText flattens a rendered fragment to text, one block per line.
func PlainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").PrependHtml("- ")
	doc.Find("div, li, ul, p").AppendHtml("\n")

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// formatGrams prints protein the way a person would write it: 5, 5.6, 0.
func formatGrams(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
