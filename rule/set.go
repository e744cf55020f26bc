package rule

import "fmt"

// Set is an immutable snapshot of the linking configuration: the ordered rule
// list plus the categories and templates they reference. Rule order is
// user-controlled and determines match priority. Revision increases
// monotonically on every edit and feeds the render cache key.
type Set struct {
	Revision   int64         `json:"revision"`
	Rules      []Rule        `json:"rules"`
	Categories []Category    `json:"categories,omitempty"`
	Templates  []UTMTemplate `json:"templates,omitempty"`
}

// Active returns the rules that participate in rendering, in set order.
func (s *Set) Active() []Rule {
	active := make([]Rule, 0, len(s.Rules))
	for _, r := range s.Rules {
		if r.Status == StatusActive {
			active = append(active, r)
		}
	}
	return active
}

// Category returns the category with the given ID, or nil.
func (s *Set) Category(id int64) *Category {
	if id == 0 {
		return nil
	}
	for i := range s.Categories {
		if s.Categories[i].ID == id {
			return &s.Categories[i]
		}
	}
	return nil
}

// Template returns the template with the given ID, or nil.
func (s *Set) Template(id int64) *UTMTemplate {
	if id == 0 {
		return nil
	}
	for i := range s.Templates {
		if s.Templates[i].ID == id {
			return &s.Templates[i]
		}
	}
	return nil
}

// Validate checks the set for configuration errors, including references to
// missing categories and templates.
func (s *Set) Validate() error {
	for i := range s.Templates {
		if err := s.Templates[i].Validate(); err != nil {
			return err
		}
	}
	for i := range s.Categories {
		c := &s.Categories[i]
		if c.Cap < 0 {
			return fmt.Errorf("category %d: category_cap must be >= 0", c.ID)
		}
		if c.DefaultUTM != 0 && s.Template(c.DefaultUTM) == nil {
			return fmt.Errorf("category %d: default_utm references unknown template %d", c.ID, c.DefaultUTM)
		}
	}
	for i := range s.Rules {
		r := &s.Rules[i]
		if err := r.Validate(); err != nil {
			return err
		}
		if r.CategoryID != 0 && s.Category(r.CategoryID) == nil {
			return fmt.Errorf("rule %d: references unknown category %d", r.ID, r.CategoryID)
		}
		if r.UTM.Mode == UTMTemplateRef && s.Template(r.UTM.TemplateID) == nil {
			return fmt.Errorf("rule %d: references unknown template %d", r.ID, r.UTM.TemplateID)
		}
	}
	return nil
}
