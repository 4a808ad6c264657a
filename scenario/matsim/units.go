package matsim

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Float is a float64 XML attribute written in plain decimal notation.
// encoding/xml would otherwise switch to exponent form for projected coordinates.
type Float float64

// FormatFloat renders v without an exponent and without trailing zeros.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MarshalXMLAttr implements xml.MarshalerAttr.
func (f Float) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	return xml.Attr{Name: name, Value: FormatFloat(float64(f))}, nil
}

// UnmarshalXMLAttr implements xml.UnmarshalerAttr.
func (f *Float) UnmarshalXMLAttr(attr xml.Attr) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(attr.Value), 64)
	if err != nil {
		return fmt.Errorf("attribute %s: %w", attr.Name.Local, err)
	}
	*f = Float(v)
	return nil
}

// FloatPtr is a convenience for optional attributes.
func FloatPtr(v float64) *Float {
	f := Float(v)
	return &f
}

// ParseTime converts "HH:MM:SS" (hours may exceed 24) or plain seconds into seconds.
func ParseTime(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "undefined" {
		return 0, fmt.Errorf("undefined time")
	}
	parts := strings.Split(s, ":")
	if len(parts) == 1 {
		return strconv.ParseFloat(s, 64)
	}
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	var total float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time %q: %w", s, err)
		}
		switch i {
		case 0:
			total += v * 3600
		case 1:
			total += v * 60
		default:
			total += v
		}
	}
	return total, nil
}

// FormatTime renders seconds as HH:MM:SS.
func FormatTime(seconds float64) string {
	sec := int64(seconds)
	sign := ""
	if sec < 0 {
		sign = "-"
		sec = -sec
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, sec/3600, (sec%3600)/60, sec%60)
}
