// Package attrs implements the closed-key attribute map carried by delta
// entries and operations. Keys are individually optional; an empty
// Attributes is the default. Equality is structural, and overlay-merging
// (used by format/retain-with-attrs) preserves explicit false values rather
// than treating them as deletions.
package attrs

// VerticalAlign is the closed set of values for the verticalAlign key.
type VerticalAlign string

const (
	Baseline VerticalAlign = "baseline"
	Super    VerticalAlign = "super"
	Sub      VerticalAlign = "sub"
)

// Align is the closed set of values for the align key.
type Align string

const (
	Left    Align = "left"
	Center  Align = "center"
	Right   Align = "right"
	Justify Align = "justify"
)

// BorderStyle is the closed set of line-decoration styles for the detailed
// form of underline/strikethrough.
type BorderStyle string

const (
	Dotted BorderStyle = "dotted"
	Dashed BorderStyle = "dashed"
	Solid  BorderStyle = "solid"
	Double BorderStyle = "double"
	Groove BorderStyle = "groove"
	Ridge  BorderStyle = "ridge"
	Inset  BorderStyle = "inset"
	Outset BorderStyle = "outset"
)

// LineDecoration models the "boolean or {color?, style?}" value shape shared
// by underline and strikethrough. Either Bool or the Color/Style pair should
// be set; a non-nil Color or Style marks the detailed form.
type LineDecoration struct {
	Bool  *bool
	Color *string
	Style *BorderStyle
}

func (d *LineDecoration) isDetailed() bool {
	return d != nil && (d.Color != nil || d.Style != nil)
}

func (d *LineDecoration) equal(o *LineDecoration) bool {
	if d == nil || o == nil {
		return d == nil && o == nil
	}
	if !boolPtrEqual(d.Bool, o.Bool) {
		return false
	}
	if !stringPtrEqual(d.Color, o.Color) {
		return false
	}
	if (d.Style == nil) != (o.Style == nil) {
		return false
	}
	if d.Style != nil && *d.Style != *o.Style {
		return false
	}
	return true
}

// Attributes is the closed-key attribute map described in the data model.
// Every field is optional; nil means "not present in this map".
type Attributes struct {
	Bold          *bool
	Italic        *bool
	Underline     *LineDecoration
	Strikethrough *LineDecoration
	FontSize      *string
	FontFamily    *string
	FontWeight    *string
	FontStyle     *string
	LineHeight    *string
	Color         *string
	VerticalAlign *VerticalAlign
	Align         *Align
}

// IsEmpty reports whether no key is set.
func (a Attributes) IsEmpty() bool {
	return a.Bold == nil && a.Italic == nil && a.Underline == nil &&
		a.Strikethrough == nil && a.FontSize == nil && a.FontFamily == nil &&
		a.FontWeight == nil && a.FontStyle == nil && a.LineHeight == nil &&
		a.Color == nil && a.VerticalAlign == nil && a.Align == nil
}

// Equal is structural equality over every key.
func Equal(a, b Attributes) bool {
	return boolPtrEqual(a.Bold, b.Bold) &&
		boolPtrEqual(a.Italic, b.Italic) &&
		a.Underline.equal(b.Underline) &&
		a.Strikethrough.equal(b.Strikethrough) &&
		stringPtrEqual(a.FontSize, b.FontSize) &&
		stringPtrEqual(a.FontFamily, b.FontFamily) &&
		stringPtrEqual(a.FontWeight, b.FontWeight) &&
		stringPtrEqual(a.FontStyle, b.FontStyle) &&
		stringPtrEqual(a.LineHeight, b.LineHeight) &&
		stringPtrEqual(a.Color, b.Color) &&
		valignPtrEqual(a.VerticalAlign, b.VerticalAlign) &&
		alignPtrEqual(a.Align, b.Align)
}

// Merge overlays src onto base: every key src sets (including an explicit
// false) wins; keys src leaves nil keep base's value. This is the semantic
// §4.3's retain-with-attrs overlay and §4.2's format both require.
func Merge(base, src Attributes) Attributes {
	out := base
	if src.Bold != nil {
		out.Bold = src.Bold
	}
	if src.Italic != nil {
		out.Italic = src.Italic
	}
	if src.Underline != nil {
		out.Underline = src.Underline
	}
	if src.Strikethrough != nil {
		out.Strikethrough = src.Strikethrough
	}
	if src.FontSize != nil {
		out.FontSize = src.FontSize
	}
	if src.FontFamily != nil {
		out.FontFamily = src.FontFamily
	}
	if src.FontWeight != nil {
		out.FontWeight = src.FontWeight
	}
	if src.FontStyle != nil {
		out.FontStyle = src.FontStyle
	}
	if src.LineHeight != nil {
		out.LineHeight = src.LineHeight
	}
	if src.Color != nil {
		out.Color = src.Color
	}
	if src.VerticalAlign != nil {
		out.VerticalAlign = src.VerticalAlign
	}
	if src.Align != nil {
		out.Align = src.Align
	}
	return out
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func valignPtrEqual(a, b *VerticalAlign) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func alignPtrEqual(a, b *Align) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// BoolPtr is a small helper for building attribute literals, mirroring the
// ergonomics callers need when every bool must be a pointer.
func BoolPtr(v bool) *bool { return &v }

// StringPtr mirrors BoolPtr for string-valued keys.
func StringPtr(v string) *string { return &v }
