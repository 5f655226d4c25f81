package alsparse

import (
	"strconv"

	"github.com/beevik/etree"
)

// The accessor layer centralizes every defaulting decision the parser
// makes. Live omits elements liberally depending on track and clip
// configuration, so lookups here never fail; callers get their default
// back and, where it matters, record a Diagnostic themselves.

// child descends through a chain of first-matching child elements and
// returns nil as soon as one link is missing.
func child(el *etree.Element, path ...string) *etree.Element {
	for _, tag := range path {
		if el == nil {
			return nil
		}
		el = el.SelectElement(tag)
	}
	return el
}

// children returns all direct children with the given tag, possibly empty.
func children(el *etree.Element, tag string) []*etree.Element {
	if el == nil {
		return nil
	}
	return el.SelectElements(tag)
}

// attr returns the named attribute or def when the element or attribute
// is absent.
func attr(el *etree.Element, name, def string) string {
	if el == nil {
		return def
	}
	return el.SelectAttrValue(name, def)
}

func attrFloat(el *etree.Element, name string, def float64) (float64, bool) {
	s := attr(el, name, "")
	if s == "" {
		return def, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def, false
	}
	return v, true
}

func attrInt(el *etree.Element, name string, def int) (int, bool) {
	s := attr(el, name, "")
	if s == "" {
		return def, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def, false
	}
	return v, true
}

func attrBool(el *etree.Element, name string, def bool) bool {
	switch attr(el, name, "") {
	case "true":
		return true
	case "false":
		return false
	default:
		return def
	}
}

// valueOf reads the "Value" attribute Live puts on leaf elements, walking
// down path first. Empty string when anything along the way is missing.
func valueOf(el *etree.Element, path ...string) string {
	return attr(child(el, path...), "Value", "")
}

// valueFloat is valueOf for numeric leaves.
func valueFloat(el *etree.Element, def float64, path ...string) (float64, bool) {
	return attrFloat(child(el, path...), "Value", def)
}

// valueInt is valueOf for integer leaves.
func valueInt(el *etree.Element, def int, path ...string) (int, bool) {
	return attrInt(child(el, path...), "Value", def)
}

// valueBool is valueOf for boolean leaves.
func valueBool(el *etree.Element, def bool, path ...string) bool {
	return attrBool(child(el, path...), "Value", def)
}

// elementPath renders the dotted ancestor chain of el below the track
// element, used in Diagnostics and automation targets.
func elementPath(el *etree.Element) string {
	if el == nil {
		return ""
	}
	var tags []string
	for e := el; e != nil; e = e.Parent() {
		tags = append(tags, e.Tag)
	}
	// reverse into document order
	var out string
	for i := len(tags) - 1; i >= 0; i-- {
		if out != "" {
			out += "."
		}
		out += tags[i]
	}
	return out
}
