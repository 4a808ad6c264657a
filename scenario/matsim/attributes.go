package matsim

import (
	"encoding/xml"
	"strconv"
)

// Java class names used in <attribute class="..."> elements.
const (
	ClassString  = "java.lang.String"
	ClassDouble  = "java.lang.Double"
	ClassInteger = "java.lang.Integer"
	ClassBoolean = "java.lang.Boolean"
)

// Attribute is a single typed key/value pair.
type Attribute struct {
	Name  string `xml:"name,attr"`
	Class string `xml:"class,attr"`
	Value string `xml:",chardata"`
}

// Attributes is the ordered <attributes> block carried by most scenario objects.
// An empty block is omitted on write.
type Attributes struct {
	Items []Attribute `xml:"attribute"`
}

// MarshalXML writes nothing for an empty block.
func (a Attributes) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if len(a.Items) == 0 {
		return nil
	}
	return e.EncodeElement(struct {
		Items []Attribute `xml:"attribute"`
	}{a.Items}, start)
}

// Len returns the number of attributes.
func (a Attributes) Len() int { return len(a.Items) }

// Get returns the raw value of the named attribute.
func (a Attributes) Get(name string) (string, bool) {
	for _, it := range a.Items {
		if it.Name == name {
			return it.Value, true
		}
	}
	return "", false
}

// Has reports whether the named attribute exists.
func (a Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Float parses the named attribute as a float. Missing or malformed values report false.
func (a Attributes) Float(name string) (float64, bool) {
	v, ok := a.Get(name)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Set replaces the value of an existing attribute or appends a new one.
func (a *Attributes) Set(name, class, value string) {
	for i := range a.Items {
		if a.Items[i].Name == name {
			a.Items[i].Class = class
			a.Items[i].Value = value
			return
		}
	}
	a.Items = append(a.Items, Attribute{Name: name, Class: class, Value: value})
}

// SetString stores a java.lang.String attribute.
func (a *Attributes) SetString(name, value string) { a.Set(name, ClassString, value) }

// SetFloat stores a java.lang.Double attribute.
func (a *Attributes) SetFloat(name string, value float64) {
	a.Set(name, ClassDouble, FormatFloat(value))
}

// Remove deletes the named attribute and reports whether it was present.
func (a *Attributes) Remove(name string) bool {
	for i := range a.Items {
		if a.Items[i].Name == name {
			a.Items = append(a.Items[:i], a.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns an independent copy.
func (a Attributes) Clone() Attributes {
	if len(a.Items) == 0 {
		return Attributes{}
	}
	items := make([]Attribute, len(a.Items))
	copy(items, a.Items)
	return Attributes{Items: items}
}
