package catalog

// Option is one selectable value with its display label.
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Options are the read-only option catalogs of the registration form.
type Options struct {
	Courses          []Option `yaml:"courses"          json:"courses"`
	Years            []Option `yaml:"years"            json:"years"`
	ExperienceLevels []Option `yaml:"experienceLevels" json:"experienceLevels"`
	Languages        []string `yaml:"languages"        json:"languages"`
	Interests        []string `yaml:"interests"        json:"interests"`
	Commitments      []Option `yaml:"commitments"      json:"commitments"`
	Referrals        []Option `yaml:"referrals"        json:"referrals"`
}

// Member is a student team member or a faculty mentor.
type Member struct {
	ID         string   `yaml:"id"         json:"id"`
	Name       string   `yaml:"name"       json:"name"`
	Role       string   `yaml:"role"       json:"role"`
	Year       string   `yaml:"year"       json:"year,omitempty"`
	Department string   `yaml:"department" json:"department"`
	Bio        string   `yaml:"bio"        json:"bio"`
	Skills     []string `yaml:"skills"     json:"skills,omitempty"`
	Expertise  []string `yaml:"expertise"  json:"expertise,omitempty"`
	GitHub     string   `yaml:"github"     json:"github,omitempty"`
	LinkedIn   string   `yaml:"linkedin"   json:"linkedin,omitempty"`
	Email      string   `yaml:"email"      json:"email,omitempty"`
	Avatar     string   `yaml:"avatar"     json:"avatar"`
}

// EventType classifies a club event.
type EventType string

const (
	EventWorkshop    EventType = "workshop"
	EventHackathon   EventType = "hackathon"
	EventCompetition EventType = "competition"
	EventTalk        EventType = "talk"
	EventNetworking  EventType = "networking"
)

// EventStatus is where an event sits in its lifecycle.
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
)

// IsValid reports whether s is a known status.
func (s EventStatus) IsValid() bool {
	switch s {
	case EventUpcoming, EventOngoing, EventCompleted:
		return true
	}
	return false
}

// Event is one entry of the events page.
type Event struct {
	ID                  string      `yaml:"id"                  json:"id"`
	Title               string      `yaml:"title"               json:"title"`
	Type                EventType   `yaml:"type"                json:"type"`
	Date                string      `yaml:"date"                json:"date"`
	Time                string      `yaml:"time"                json:"time"`
	Location            string      `yaml:"location"            json:"location"`
	Description         string      `yaml:"description"         json:"description"`
	MaxParticipants     int         `yaml:"maxParticipants"     json:"maxParticipants,omitempty"`
	CurrentParticipants int         `yaml:"currentParticipants" json:"currentParticipants,omitempty"`
	Status              EventStatus `yaml:"status"              json:"status"`
	RegistrationLink    string      `yaml:"registrationLink"    json:"registrationLink,omitempty"`
	Requirements        []string    `yaml:"requirements"        json:"requirements,omitempty"`
	Prizes              []string    `yaml:"prizes"              json:"prizes,omitempty"`
}

// Club is the landing and about page copy.
type Club struct {
	Name    string `yaml:"name"    json:"name"`
	Tagline string `yaml:"tagline" json:"tagline"`
	About   string `yaml:"about"   json:"about"`
	Quote   string `yaml:"quote"   json:"quote"`
}
