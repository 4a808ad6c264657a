package population

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	c := &Plan{
		Selected:   p.Selected,
		Type:       p.Type,
		Attributes: p.Attributes.Clone(),
		Elements:   make([]Element, 0, len(p.Elements)),
	}
	if p.Score != nil {
		s := *p.Score
		c.Score = &s
	}
	for _, el := range p.Elements {
		switch v := el.(type) {
		case *Activity:
			a := *v
			if v.X != nil {
				x := *v.X
				a.X = &x
			}
			if v.Y != nil {
				y := *v.Y
				a.Y = &y
			}
			a.Attributes = v.Attributes.Clone()
			c.Elements = append(c.Elements, &a)
		case *Leg:
			l := *v
			l.Attributes = v.Attributes.Clone()
			if v.Route != nil {
				r := *v.Route
				l.Route = &r
			}
			c.Elements = append(c.Elements, &l)
		}
	}
	return c
}
