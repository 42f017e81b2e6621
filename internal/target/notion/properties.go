package notion

import (
	"encoding/json"
	"strings"

	"github.com/freqsync/freqsync/internal/domain"
)

// Wire types for the subset of property values this engine reads and writes.

type richText struct {
	Type string `json:"type,omitempty"`
	Text *struct {
		Content string `json:"content"`
		Link    *struct {
			URL string `json:"url"`
		} `json:"link"`
	} `json:"text,omitempty"`
	PlainText string `json:"plain_text,omitempty"`
}

type selectOption struct {
	Name string `json:"name"`
}

// propertyValue is a property as it appears in query results
type propertyValue struct {
	Type        string         `json:"type"`
	Title       []richText     `json:"title,omitempty"`
	Number      *float64       `json:"number,omitempty"`
	Select      *selectOption  `json:"select,omitempty"`
	MultiSelect []selectOption `json:"multi_select,omitempty"`
}

// encodeProperties converts a PropertySet into the write payload. Only the
// fields present in the set appear in the payload, so anything else on the
// row survives the write untouched.
func encodeProperties(ps domain.PropertySet) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, ps.Len())
	for _, prop := range ps.Properties() {
		out[prop.Name] = encodeValue(prop.Value)
	}
	return out
}

func encodeValue(value domain.PropertyValue) json.RawMessage {
	var payload any
	switch v := value.(type) {
	case domain.TitleValue:
		text := map[string]any{"content": v.Text}
		if v.Link != "" {
			text["link"] = map[string]any{"url": v.Link}
		} else {
			text["link"] = nil
		}
		payload = map[string]any{
			"title": []any{map[string]any{"type": "text", "text": text}},
		}
	case domain.NumberValue:
		payload = map[string]any{"number": v.Value}
	case domain.SelectValue:
		payload = map[string]any{"select": selectOption{Name: v.Option}}
	case domain.MultiSelectValue:
		options := make([]selectOption, len(v.Options))
		for i, opt := range v.Options {
			options[i] = selectOption{Name: opt}
		}
		payload = map[string]any{"multi_select": options}
	}

	data, _ := json.Marshal(payload)
	return data
}

// plainText concatenates the plain text runs of a title property
func plainText(runs []richText) string {
	var b strings.Builder
	for _, run := range runs {
		b.WriteString(run.PlainText)
	}
	return b.String()
}
