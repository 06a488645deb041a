package client

import (
	"context"
	"encoding/json"

	"github.com/ctrlmap-tools/cmapsync/internal/domain"
)

// PageSize is the fixed listing page size.
const PageSize = 500

// Rule is one filter rule in a listing request body.
type Rule struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// TypeRule builds the standard type filter rule.
func TypeRule(value string) []Rule {
	return []Rule{{Field: "type", Operator: "=", Value: value}}
}

// listBody is the wire shape of a listing request.
type listBody struct {
	StartPos int    `json:"startpos"`
	PageSize int    `json:"pagesize"`
	SortBy   any    `json:"sortby"`
	Rules    []Rule `json:"rules"`
}

// ListAll pages through a listing endpoint and returns all items in listing
// order. Pagination advances startpos by the page size and stops on the
// first short or empty page.
func ListAll(ctx context.Context, t domain.Transport, path string, rules []Rule) ([]json.RawMessage, error) {
	if rules == nil {
		rules = []Rule{}
	}

	var items []json.RawMessage
	for startPos := 0; ; startPos += PageSize {
		body := listBody{
			StartPos: startPos,
			PageSize: PageSize,
			Rules:    rules,
		}

		var page []json.RawMessage
		if err := t.PostJSON(ctx, path, body, &page); err != nil {
			return nil, err
		}

		items = append(items, page...)
		if len(page) < PageSize {
			break
		}
	}

	return items, nil
}
