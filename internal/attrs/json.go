package attrs

import "encoding/json"

func (d *LineDecoration) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	if d.isDetailed() {
		return json.Marshal(struct {
			Color *string      `json:"color,omitempty"`
			Style *BorderStyle `json:"style,omitempty"`
		}{d.Color, d.Style})
	}
	if d.Bool != nil {
		return json.Marshal(*d.Bool)
	}
	return []byte("null"), nil
}

func (d *LineDecoration) UnmarshalJSON(b []byte) error {
	var asBool bool
	if err := json.Unmarshal(b, &asBool); err == nil {
		d.Bool = &asBool
		return nil
	}
	var detail struct {
		Color *string      `json:"color,omitempty"`
		Style *BorderStyle `json:"style,omitempty"`
	}
	if err := json.Unmarshal(b, &detail); err != nil {
		return err
	}
	d.Color = detail.Color
	d.Style = detail.Style
	return nil
}

// wireAttributes is the on-the-wire shape: only present keys are emitted.
type wireAttributes struct {
	Bold          *bool           `json:"bold,omitempty"`
	Italic        *bool           `json:"italic,omitempty"`
	Underline     *LineDecoration `json:"underline,omitempty"`
	Strikethrough *LineDecoration `json:"strikethrough,omitempty"`
	FontSize      *string         `json:"fontSize,omitempty"`
	FontFamily    *string         `json:"fontFamily,omitempty"`
	FontWeight    *string         `json:"fontWeight,omitempty"`
	FontStyle     *string         `json:"fontStyle,omitempty"`
	LineHeight    *string         `json:"lineHeight,omitempty"`
	Color         *string         `json:"color,omitempty"`
	VerticalAlign *VerticalAlign  `json:"verticalAlign,omitempty"`
	Align         *Align          `json:"align,omitempty"`
}

func (a Attributes) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireAttributes{
		Bold: a.Bold, Italic: a.Italic,
		Underline: a.Underline, Strikethrough: a.Strikethrough,
		FontSize: a.FontSize, FontFamily: a.FontFamily,
		FontWeight: a.FontWeight, FontStyle: a.FontStyle,
		LineHeight: a.LineHeight, Color: a.Color,
		VerticalAlign: a.VerticalAlign, Align: a.Align,
	})
}

func (a *Attributes) UnmarshalJSON(b []byte) error {
	var w wireAttributes
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	a.Bold, a.Italic = w.Bold, w.Italic
	a.Underline, a.Strikethrough = w.Underline, w.Strikethrough
	a.FontSize, a.FontFamily = w.FontSize, w.FontFamily
	a.FontWeight, a.FontStyle = w.FontWeight, w.FontStyle
	a.LineHeight, a.Color = w.LineHeight, w.Color
	a.VerticalAlign, a.Align = w.VerticalAlign, w.Align
	return nil
}
