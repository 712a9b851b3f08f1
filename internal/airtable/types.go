package airtable

import (
	"encoding/json"
	"strings"

	"github.com/nickcecere/recipewriter/internal/recipe"
)

type listResponse struct {
	Records []apiRecord `json:"records"`
	Offset  string      `json:"offset"`
}

type apiRecord struct {
	ID     string    `json:"id"`
	Fields apiFields `json:"fields"`
}

type apiFields struct {
	Title       string    `json:"Title"`
	Description string    `json:"Description"`
	Category    textField `json:"Category"`
	Tags        listField `json:"Tags"`
	URL         string    `json:"URL"`
	ImageLink   string    `json:"Image Link"`
}

// textField accepts a single-line text or a single/multiple select column.
type textField string

func (f *textField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = textField(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*f = textField(strings.Join(list, ", "))
	return nil
}

// listField accepts a multiple select column or comma-separated text.
type listField []string

func (f *listField) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*f = out
	return nil
}

func convertRecord(r apiRecord) recipe.Recipe {
	tags := []string(r.Fields.Tags)
	if tags == nil {
		tags = []string{}
	}
	return recipe.Recipe{
		Title:       r.Fields.Title,
		Description: r.Fields.Description,
		Category:    string(r.Fields.Category),
		Tags:        tags,
		URL:         r.Fields.URL,
		ImageURL:    strings.TrimSpace(r.Fields.ImageLink),
	}
}
