package models

// Record is a single row retrieved from the document record store: an
// opaque identifier plus a bag of named properties.
type Record struct {
	ID         string              `json:"id"`
	Properties map[string]Property `json:"properties"`
}

// Property models the record store's property variants. Exactly one of the
// value fields is populated depending on Type.
type Property struct {
	Type     string        `json:"type,omitempty"`
	Title    []RichText    `json:"title,omitempty"`
	RichText []RichText    `json:"rich_text,omitempty"`
	Number   *float64      `json:"number,omitempty"`
	Formula  *FormulaValue `json:"formula,omitempty"`
	Rollup   *RollupValue  `json:"rollup,omitempty"`
	Select   *SelectOption `json:"select,omitempty"`
	Status   *SelectOption `json:"status,omitempty"`
	Date     *DateValue    `json:"date,omitempty"`
	Relation []RelationRef `json:"relation,omitempty"`
}

// RichText is one fragment of a text-type property. PlainText is populated
// on reads; Text carries the content on writes.
type RichText struct {
	PlainText string       `json:"plain_text,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
}

// TextContent is the write-side payload of a RichText fragment.
type TextContent struct {
	Content string `json:"content"`
}

// FormulaValue holds a computed numeric property value.
type FormulaValue struct {
	Number *float64 `json:"number"`
}

// RollupValue holds an aggregated numeric property value.
type RollupValue struct {
	Number *float64 `json:"number"`
}

// SelectOption is a named option of a select or status property.
type SelectOption struct {
	Name string `json:"name"`
}

// DateValue holds a date property value; Start is ISO-8601 with offset.
type DateValue struct {
	Start string `json:"start"`
}

// RelationRef references another record by id.
type RelationRef struct {
	ID string `json:"id"`
}

// PlainText returns the concatenation-free first text fragment of a title
// or rich_text property, or "" when the property carries no text.
func (p Property) PlainText() string {
	frags := p.Title
	if len(frags) == 0 {
		frags = p.RichText
	}
	if len(frags) == 0 {
		return ""
	}
	if frags[0].PlainText != "" {
		return frags[0].PlainText
	}
	if frags[0].Text != nil {
		return frags[0].Text.Content
	}
	return ""
}

// NumberValue returns the numeric value of a number, formula, or rollup
// property. A nil result means the value is null (distinct from zero).
func (p Property) NumberValue() *float64 {
	if p.Number != nil {
		return p.Number
	}
	if p.Formula != nil {
		return p.Formula.Number
	}
	if p.Rollup != nil {
		return p.Rollup.Number
	}
	return nil
}

// SelectName returns the selected option name of a select or status
// property, or "" when unset.
func (p Property) SelectName() string {
	if p.Select != nil {
		return p.Select.Name
	}
	if p.Status != nil {
		return p.Status.Name
	}
	return ""
}

// FirstRelation returns the id of the first related record, or "".
func (p Property) FirstRelation() string {
	if len(p.Relation) == 0 {
		return ""
	}
	return p.Relation[0].ID
}

// --- write-side constructors ---

// NewTitle builds a title property.
func NewTitle(content string) Property {
	return Property{Title: []RichText{{Text: &TextContent{Content: content}}}}
}

// NewText builds a rich_text property.
func NewText(content string) Property {
	return Property{RichText: []RichText{{Text: &TextContent{Content: content}}}}
}

// NewNumber builds a number property.
func NewNumber(v float64) Property {
	return Property{Number: &v}
}

// NewSelect builds a select property.
func NewSelect(name string) Property {
	return Property{Select: &SelectOption{Name: name}}
}

// NewStatus builds a status property.
func NewStatus(name string) Property {
	return Property{Status: &SelectOption{Name: name}}
}

// NewDate builds a date property from an ISO-8601 timestamp.
func NewDate(start string) Property {
	return Property{Date: &DateValue{Start: start}}
}

// NewRelation builds a relation property referencing the given record ids.
func NewRelation(ids ...string) Property {
	refs := make([]RelationRef, len(ids))
	for i, id := range ids {
		refs[i] = RelationRef{ID: id}
	}
	return Property{Relation: refs}
}

// RecordFilter is an opaque row filter passed through to the record store's
// query operation. Built via the Filter* helpers below.
type RecordFilter map[string]any

// FilterNumberGreaterThan matches rows whose numeric property exceeds v.
func FilterNumberGreaterThan(property string, v float64) RecordFilter {
	return RecordFilter{
		"property": property,
		"number":   map[string]any{"greater_than": v},
	}
}

// FilterSelectEquals matches rows whose select property equals name.
func FilterSelectEquals(property, name string) RecordFilter {
	return RecordFilter{
		"property": property,
		"select":   map[string]any{"equals": name},
	}
}

// FilterSelectIsEmpty matches rows whose select property is unset.
func FilterSelectIsEmpty(property string) RecordFilter {
	return RecordFilter{
		"property": property,
		"select":   map[string]any{"is_empty": true},
	}
}

// FilterAnyOf matches rows satisfying at least one of the given filters.
func FilterAnyOf(filters ...RecordFilter) RecordFilter {
	or := make([]any, len(filters))
	for i, f := range filters {
		or[i] = f
	}
	return RecordFilter{"or": or}
}
