// Package catalog serves the static club content: the registration option
// catalogs, the team and faculty directory, events and the club copy.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// Kind names one option catalog used by field validation.
type Kind string

const (
	KindCourse     Kind = "course"
	KindYear       Kind = "year"
	KindExperience Kind = "experience"
	KindLanguage   Kind = "language"
	KindInterest   Kind = "interest"
	KindCommitment Kind = "commitment"
	KindReferral   Kind = "referral"
)

// Catalog is immutable after Load.
type Catalog struct {
	Club    Club     `yaml:"club"`
	Options Options  `yaml:"options"`
	Members []Member `yaml:"members"`
	Faculty []Member `yaml:"faculty"`
	Events  []Event  `yaml:"events"`

	sets map[Kind]map[string]struct{}
}

// Default parses the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(embedded)
}

// Parse decodes a catalog document and indexes its option sets.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.index()
	return &c, nil
}

func (c *Catalog) validate() error {
	required := map[string]int{
		"courses":          len(c.Options.Courses),
		"years":            len(c.Options.Years),
		"experienceLevels": len(c.Options.ExperienceLevels),
		"languages":        len(c.Options.Languages),
		"interests":        len(c.Options.Interests),
		"commitments":      len(c.Options.Commitments),
		"referrals":        len(c.Options.Referrals),
	}
	for name, n := range required {
		if n == 0 {
			return fmt.Errorf("catalog: options.%s is empty", name)
		}
	}
	seen := make(map[string]struct{}, len(c.Members)+len(c.Faculty))
	for _, m := range slices.Concat(c.Members, c.Faculty) {
		if m.ID == "" {
			return fmt.Errorf("catalog: member %q has no id", m.Name)
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("catalog: duplicate member id %q", m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	for _, e := range c.Events {
		if !e.Status.IsValid() {
			return fmt.Errorf("catalog: event %q has unknown status %q", e.ID, e.Status)
		}
	}
	return nil
}

func (c *Catalog) index() {
	c.sets = map[Kind]map[string]struct{}{
		KindCourse:     optionSet(c.Options.Courses),
		KindYear:       optionSet(c.Options.Years),
		KindExperience: optionSet(c.Options.ExperienceLevels),
		KindLanguage:   stringSet(c.Options.Languages),
		KindInterest:   stringSet(c.Options.Interests),
		KindCommitment: optionSet(c.Options.Commitments),
		KindReferral:   optionSet(c.Options.Referrals),
	}
}

// Contains reports whether value is a member of the kind's option set.
// Unknown kinds contain nothing.
func (c *Catalog) Contains(kind Kind, value string) bool {
	_, ok := c.sets[kind][value]
	return ok
}

// Member looks up a team member or faculty mentor by id.
func (c *Catalog) Member(id string) (Member, bool) {
	for _, m := range slices.Concat(c.Members, c.Faculty) {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// EventsByStatus returns events with the given status, or all events when
// status is empty.
func (c *Catalog) EventsByStatus(status EventStatus) []Event {
	if status == "" {
		return slices.Clone(c.Events)
	}
	out := make([]Event, 0, len(c.Events))
	for _, e := range c.Events {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}

func optionSet(opts []Option) map[string]struct{} {
	set := make(map[string]struct{}, len(opts))
	for _, o := range opts {
		set[o.Value] = struct{}{}
	}
	return set
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
