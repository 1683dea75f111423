package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
)

// Dataset is the flat presentation mapping an unbind step produces: entity
// fields rendered back in their submitted form plus auxiliary values (choice
// lists, parent codes, draft flags) the form needs to re-display.
type Dataset map[string]any

// Put sets a key. Returns the dataset for chaining in unbind steps.
func (d Dataset) Put(key string, value any) Dataset {
	d[key] = value
	return d
}

// PutTime renders a timestamp in the canonical submitted format.
func (d Dataset) PutTime(key string, t time.Time) Dataset {
	return d.Put(key, t.Format(time.RFC3339))
}

// PutOptionalTime renders a nullable timestamp, empty string when absent.
func (d Dataset) PutOptionalTime(key string, t *time.Time) Dataset {
	if t == nil {
		return d.Put(key, "")
	}
	return d.PutTime(key, *t)
}

// PutMoney renders a money value in the "<amount> <currency>" submitted form.
func (d Dataset) PutMoney(key string, m domain.Money) Dataset {
	return d.Put(key, m.String())
}

// PutDecimal renders a decimal with full precision.
func (d Dataset) PutDecimal(key string, v decimal.Decimal) Dataset {
	return d.Put(key, v.String())
}

// Choice is one entry of a form choice list.
type Choice struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// SelectChoices is a named choice list with at most one selected entry.
type SelectChoices struct {
	Items []Choice `json:"items"`
}

// ChoicesFrom builds a choice list from parallel key/label pairs, marking the
// entry whose key equals selected.
func ChoicesFrom(keys, labels []string, selected string) SelectChoices {
	items := make([]Choice, len(keys))
	for i, k := range keys {
		label := k
		if i < len(labels) {
			label = labels[i]
		}
		items[i] = Choice{Key: k, Label: label, Selected: k == selected}
	}
	return SelectChoices{Items: items}
}

// Selected returns the key of the selected entry, or "" when none is.
func (c SelectChoices) Selected() string {
	for _, item := range c.Items {
		if item.Selected {
			return item.Key
		}
	}
	return ""
}
