package wallet

import "fmt"

const (
	stateActive   = "ACTIVE"
	defaultLocale = "en-US"
	fieldPathFmt  = "object.textModulesData['%s']"
)

type savePayload struct {
	GenericClasses []GenericClass  `json:"genericClasses,omitempty"`
	GenericObjects []GenericObject `json:"genericObjects"`
}

type GenericClass struct {
	ID                string             `json:"id"`
	ClassTemplateInfo *ClassTemplateInfo `json:"classTemplateInfo,omitempty"`
}

type ClassTemplateInfo struct {
	CardTemplateOverride CardTemplateOverride `json:"cardTemplateOverride"`
}

type CardTemplateOverride struct {
	CardRowTemplateInfos []CardRow `json:"cardRowTemplateInfos"`
}

// CardRow is a card template row showing one or two text modules.
type CardRow struct {
	OneItem  *OneItem  `json:"oneItem,omitempty"`
	TwoItems *TwoItems `json:"twoItems,omitempty"`
}

type OneItem struct {
	Item TemplateItem `json:"item"`
}

type TwoItems struct {
	StartItem TemplateItem `json:"startItem"`
	EndItem   TemplateItem `json:"endItem"`
}

type TemplateItem struct {
	FirstValue FieldSelector `json:"firstValue"`
}

type FieldSelector struct {
	Fields []FieldReference `json:"fields"`
}

type FieldReference struct {
	FieldPath string `json:"fieldPath"`
}

type GenericObject struct {
	ID                 string         `json:"id"`
	ClassID            string         `json:"classId"`
	State              string         `json:"state"`
	Logo               *Image         `json:"logo,omitempty"`
	HeroImage          *Image         `json:"heroImage,omitempty"`
	CardTitle          LocalizedValue `json:"cardTitle"`
	Subheader          LocalizedValue `json:"subheader"`
	Header             LocalizedValue `json:"header"`
	TextModulesData    []TextModule   `json:"textModulesData"`
	HexBackgroundColor string         `json:"hexBackgroundColor,omitempty"`
}

type Image struct {
	SourceURI ImageURI `json:"sourceUri"`
}

type ImageURI struct {
	URI string `json:"uri"`
}

type LocalizedValue struct {
	DefaultValue TranslatedString `json:"defaultValue"`
}

type TranslatedString struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

type TextModule struct {
	ID     string `json:"id"`
	Header string `json:"header,omitempty"`
	Body   string `json:"body"`
}

func localized(value string) LocalizedValue {
	return LocalizedValue{DefaultValue: TranslatedString{Language: defaultLocale, Value: value}}
}

func image(uri string) *Image {
	if uri == "" {
		return nil
	}
	return &Image{SourceURI: ImageURI{URI: uri}}
}

func item(moduleID string) TemplateItem {
	return TemplateItem{FirstValue: FieldSelector{Fields: []FieldReference{{FieldPath: fmt.Sprintf(fieldPathFmt, moduleID)}}}}
}

func oneItemRow(moduleID string) CardRow {
	return CardRow{OneItem: &OneItem{Item: item(moduleID)}}
}

func twoItemRow(startID, endID string) CardRow {
	return CardRow{TwoItems: &TwoItems{StartItem: item(startID), EndItem: item(endID)}}
}

func templateClass(id string, rows ...CardRow) GenericClass {
	return GenericClass{
		ID: id,
		ClassTemplateInfo: &ClassTemplateInfo{
			CardTemplateOverride: CardTemplateOverride{CardRowTemplateInfos: rows},
		},
	}
}
