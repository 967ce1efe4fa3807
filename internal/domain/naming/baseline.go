package naming

import "strings"

// BaselineTemplates are well-known naming patterns shipped with the core for
// common tag/trigger/variable prefixes, per spec.md §4.5: "The core ships a
// set of well-known baseline templates for common prefixes."
var BaselineTemplates = map[string]Pattern{
	"tag-category": {
		Separator: " - ",
		Segments: []Segment{
			{Kind: SegmentVariable, VariableName: "platform", PossibleValues: []string{"GA4", "UA", "GTM"}},
			{Kind: SegmentVariable, VariableName: "event", PossibleValues: []string{"Click", "View", "Submit"}},
		},
		Confidence: 1.0,
	},
	"trigger-kind": {
		Separator: " - ",
		Segments: []Segment{
			{Kind: SegmentVariable, VariableName: "action", PossibleValues: []string{"Click", "View", "Scroll"}},
			{Kind: SegmentVariable, VariableName: "segment0", PossibleValues: []string{"All Pages", "Specific"}},
		},
		Confidence: 1.0,
	},
	"variable-kind": {
		Separator: " - ",
		Segments: []Segment{
			{Kind: SegmentLiteral, Literal: "DLV"},
			{Kind: SegmentVariable, VariableName: "segment0"},
		},
		Confidence: 1.0,
	},
}

// InferKindFromLeadingToken is a supplementary entry point that infers a
// baseline template key from a name's leading token, per spec.md §4.5.
func InferKindFromLeadingToken(name string) (string, bool) {
	lead := strings.ToUpper(firstToken(name))
	switch {
	case lead == "GA4" || lead == "UA" || lead == "GTM":
		return "tag-category", true
	case lead == "CLICK" || lead == "VIEW" || lead == "SCROLL" || lead == "FORM":
		return "trigger-kind", true
	case lead == "DLV" || lead == "JS" || lead == "CONST":
		return "variable-kind", true
	}
	return "", false
}

func firstToken(name string) string {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
