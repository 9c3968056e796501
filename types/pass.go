package types

import (
	"encoding/json"
	"fmt"
	"time"
)

type PassType string

const (
	PassTypeReceipt      PassType = "receipt"
	PassTypeShoppingList PassType = "shopping_list"
	PassTypeAnalytics    PassType = "analytics"
	PassTypeAlert        PassType = "alert"
	PassTypeOther        PassType = "other"
)

func (p PassType) IsValid() bool {
	switch p {
	case PassTypeReceipt, PassTypeShoppingList, PassTypeAnalytics, PassTypeAlert, PassTypeOther:
		return true
	}
	return false
}

// ToolExecution is one entry of the execution log kept while answering a query.
// Args never contains the caller's user id.
type ToolExecution struct {
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args"`
	Result any            `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// PassDetails is implemented by the typed detail payloads a WalletPass can carry.
type PassDetails interface {
	passType() PassType
}

// AnswerDetails backs plain-answer passes.
type AnswerDetails struct {
	Response         string          `json:"response"`
	ExecutionResults []ToolExecution `json:"execution_results"`
}

func (AnswerDetails) passType() PassType { return PassTypeOther }

// ShoppingListDetails backs passes produced by the shopping-list pass.
type ShoppingListDetails struct {
	Items      []string `json:"items"`
	Store      *string  `json:"store"`
	Notes      *string  `json:"notes"`
	WalletLink string   `json:"wallet_link"`
	Response   string   `json:"response"`
}

func (ShoppingListDetails) passType() PassType { return PassTypeShoppingList }

type WalletPass struct {
	ID         string      `json:"id,omitempty"`
	UserID     string      `json:"user_id,omitempty"`
	PassType   PassType    `json:"pass_type"`
	Title      string      `json:"title"`
	Subtitle   string      `json:"subtitle"`
	Details    PassDetails `json:"details"`
	ValidUntil *time.Time  `json:"valid_until,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Answer returns the natural-language response carried by the pass details.
func (p *WalletPass) Answer() string {
	switch d := p.Details.(type) {
	case AnswerDetails:
		return d.Response
	case ShoppingListDetails:
		return d.Response
	}
	return ""
}

// WalletLink returns the save-to-wallet link, if the pass has one.
func (p *WalletPass) WalletLink() string {
	if d, ok := p.Details.(ShoppingListDetails); ok {
		return d.WalletLink
	}
	return ""
}

// DecodePassDetails unmarshals raw details according to the pass type.
func DecodePassDetails(passType PassType, raw []byte) (PassDetails, error) {
	switch passType {
	case PassTypeShoppingList:
		var d ShoppingListDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode shopping list details: %w", err)
		}
		return d, nil
	case PassTypeOther, PassTypeAnalytics, PassTypeAlert, PassTypeReceipt:
		var d AnswerDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode answer details: %w", err)
		}
		return d, nil
	}
	return nil, fmt.Errorf("unknown pass type %q", passType)
}

// UnmarshalJSON decodes Details into the concrete type selected by PassType.
func (p *WalletPass) UnmarshalJSON(data []byte) error {
	type alias WalletPass
	aux := struct {
		*alias
		Details json.RawMessage `json:"details"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Details) == 0 || string(aux.Details) == "null" {
		p.Details = nil
		return nil
	}
	details, err := DecodePassDetails(p.PassType, aux.Details)
	if err != nil {
		return err
	}
	p.Details = details
	return nil
}
