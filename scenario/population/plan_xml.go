package population

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
)

// UnmarshalXML keeps activities and legs in document order, which a plain
// struct mapping would split into two slices.
func (p *Plan) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "score":
			s, err := strconv.ParseFloat(a.Value, 64)
			if err != nil {
				return fmt.Errorf("plan score %q: %w", a.Value, err)
			}
			p.Score = &s
		case "selected":
			p.Selected = a.Value == "yes" || a.Value == "true"
		case "type":
			p.Type = a.Value
		}
	}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "act", "activity":
				act := &Activity{}
				if err := d.DecodeElement(act, &t); err != nil {
					return err
				}
				p.Elements = append(p.Elements, act)
			case "leg":
				leg := &Leg{}
				if err := d.DecodeElement(leg, &t); err != nil {
					return err
				}
				p.Elements = append(p.Elements, leg)
			case "attributes":
				if err := d.DecodeElement(&p.Attributes, &t); err != nil {
					return err
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// MarshalXML writes the plan in population_v6 layout.
func (p Plan) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = nil
	if p.Score != nil {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "score"}, Value: matsim.FormatFloat(*p.Score)})
	}
	if p.Type != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "type"}, Value: p.Type})
	}
	selected := "no"
	if p.Selected {
		selected = "yes"
	}
	start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "selected"}, Value: selected})

	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.EncodeElement(p.Attributes, xml.StartElement{Name: xml.Name{Local: "attributes"}}); err != nil {
		return err
	}
	for _, el := range p.Elements {
		var err error
		switch v := el.(type) {
		case *Activity:
			err = e.EncodeElement(v, xml.StartElement{Name: xml.Name{Local: "activity"}})
		case *Leg:
			err = e.EncodeElement(v, xml.StartElement{Name: xml.Name{Local: "leg"}})
		default:
			err = fmt.Errorf("unknown plan element %T", el)
		}
		if err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}
