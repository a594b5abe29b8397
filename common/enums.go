// Package common keeps enumerations shared by the document core, the template
// serializer and the command line tool, so none of them has to import the
// others just for a type name.
package common

//go:generate go tool go-enum --names --values

// Kind of structural node which can be styled independently.
// ENUM(paragraph, heading, list-item)
type BlockKind string

// Discriminant of a serialization block.
// ENUM(text, heading, image, button, divider)
type BlockType string

// Horizontal alignment of block content.
// ENUM(left, center, right)
type Alignment string

// Divider line style.
// ENUM(solid, dashed, dotted)
type BorderStyle string

// Specification of requested output type.
// ENUM(fragment, document, bundle)
type OutputFmt int

// Ext returns file extension used for the output type.
func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtFragment, OutputFmtDocument:
		return ".html"
	case OutputFmtBundle:
		return ".zip"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// Tag returns HTML element name for the kind, level is only used for headings.
func (k BlockKind) Tag(level int) string {
	switch k {
	case BlockKindHeading:
		if level < 1 || level > 6 {
			level = 2
		}
		return "h" + string(rune('0'+level))
	case BlockKindListItem:
		return "li"
	default:
		return "p"
	}
}
