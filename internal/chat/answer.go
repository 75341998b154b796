package chat

import (
	"errors"
	"strings"

	"github.com/vbonduro/nutribot/internal/domain"
	"github.com/vbonduro/nutribot/internal/parser"
	"github.com/vbonduro/nutribot/internal/recommend"
)

var ErrEmptyInput = errors.New("message is empty")

// Answer is one turn without the thinking delay, for callers that want the
// result in a single response.
type Answer struct {
	Input          string                 `json:"input"`
	Help           bool                   `json:"help,omitempty"`
	Intent         *domain.Intent         `json:"intent,omitempty"`
	Recommendation *domain.Recommendation `json:"recommendation,omitempty"`
	HTML           string                 `json:"html"`
	Text           string                 `json:"text"`
}

func Respond(engine *recommend.Engine, raw string) (Answer, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Answer{}, ErrEmptyInput
	}

	if IsHelp(text) {
		html, err := RenderHelp()
		if err != nil {
			return Answer{}, err
		}
		return Answer{Input: text, Help: true, HTML: html, Text: PlainText(html)}, nil
	}

	intent := parser.Parse(text)
	rec := engine.Recommend(intent)
	html, err := Render(rec)
	if err != nil {
		return Answer{}, err
	}
	return Answer{
		Input:          text,
		Intent:         &intent,
		Recommendation: &rec,
		HTML:           html,
		Text:           PlainText(html),
	}, nil
}
