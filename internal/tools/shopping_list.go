package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	ShoppingListToolName     = "create_shopping_list_pass"
	defaultShoppingListTitle = "My Shopping List"
)

var errWalletNotConfigured = errors.New("wallet passes are not configured")

// ShoppingListLinker issues a save-to-wallet link for a shopping list.
type ShoppingListLinker interface {
	ShoppingListLink(title string, items []string) (string, error)
}

type ShoppingListPassArgs struct {
	Items []string `json:"items" jsonschema:"minItems=1" jsonschema_description:"Items to put on the shopping list."`
	Store string   `json:"store,omitempty" jsonschema_description:"Store the items will be bought at."`
	Notes string   `json:"notes,omitempty" jsonschema_description:"Additional notes shown at the end of the list."`
}

type ShoppingListPassResult struct {
	Items      []string `json:"items"`
	Store      *string  `json:"store"`
	Notes      *string  `json:"notes"`
	WalletLink string   `json:"wallet_link"`
}

func shoppingListTitle(store string) string {
	if store == "" {
		return defaultShoppingListTitle
	}
	return "Shopping list for " + store
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ShoppingListPassTool creates the wallet pass for a shopping list. Notes are
// appended to the pass as a final line but not to the returned items. A nil
// linker makes every call fail.
func ShoppingListPassTool(linker ShoppingListLinker) (Tool, error) {
	return New(ShoppingListToolName,
		"Create a shopping list wallet pass with the given items. Only call this when the user asked for a shopping list or clearly implied one.",
		func(_ context.Context, _ string, args ShoppingListPassArgs) (*ShoppingListPassResult, error) {
			if linker == nil {
				return nil, errWalletNotConfigured
			}
			store := strings.TrimSpace(args.Store)
			notes := strings.TrimSpace(args.Notes)

			passItems := append([]string(nil), args.Items...)
			if notes != "" {
				passItems = append(passItems, "Notes: "+notes)
			}
			link, err := linker.ShoppingListLink(shoppingListTitle(store), passItems)
			if err != nil {
				return nil, fmt.Errorf("create shopping list pass: %w", err)
			}
			return &ShoppingListPassResult{
				Items:      args.Items,
				Store:      optional(store),
				Notes:      optional(notes),
				WalletLink: link,
			}, nil
		})
}
