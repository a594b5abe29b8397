package style

import (
	"mailbuilder/common"
)

// ListIndent is added to left margin of list items to make room for the
// list marker. It is a fixed constant and can not be configured.
const ListIndent = 26

// DefaultParagraph holds paragraph defaults.
var DefaultParagraph = Record{
	Alignment:  common.AlignmentLeft,
	FontSize:   15,
	LineHeight: 150,
	Color:      "#000000",
}

// DefaultHeading holds heading defaults, index is heading level minus one.
var DefaultHeading = [6]Record{
	{Alignment: common.AlignmentLeft, FontSize: 32, LineHeight: 120, Color: "#000000"},
	{Alignment: common.AlignmentLeft, FontSize: 24, LineHeight: 125, Color: "#000000"},
	{Alignment: common.AlignmentLeft, FontSize: 20, LineHeight: 130, Color: "#000000"},
	{Alignment: common.AlignmentLeft, FontSize: 18, LineHeight: 135, Color: "#000000"},
	{Alignment: common.AlignmentLeft, FontSize: 16, LineHeight: 140, Color: "#000000"},
	{Alignment: common.AlignmentLeft, FontSize: 14, LineHeight: 145, Color: "#000000"},
}

// DefaultListItem holds list item defaults.
var DefaultListItem = Record{
	Alignment:  common.AlignmentLeft,
	FontSize:   15,
	LineHeight: 150,
	Color:      "#000000",
}

// Defaults returns copy of default record for block kind. Level is only used
// for headings, levels out of range are treated as 2.
func Defaults(kind common.BlockKind, level int) Record {
	switch kind {
	case common.BlockKindHeading:
		if level < 1 || level > len(DefaultHeading) {
			level = 2
		}
		return DefaultHeading[level-1]
	case common.BlockKindListItem:
		return DefaultListItem
	default:
		return DefaultParagraph
	}
}
