package model

// EntityRole is a coarse entity type.
type EntityRole string

const (
	RolePerson EntityRole = "PERSON"
	RoleOrg    EntityRole = "ORG"
	RolePlace  EntityRole = "PLACE"
	RoleOther  EntityRole = "OTHER"
)

// Entity is a salient named thing remembered across the conversation.
type Entity struct {
	Surface     string     `json:"surface"`
	Canonical   string     `json:"canonical"`
	Role        EntityRole `json:"role"`
	Salience    float64    `json:"salience"`
	SentenceIdx int        `json:"sentenceIdx"`
	Aliases     []string   `json:"aliases,omitempty"`
}
