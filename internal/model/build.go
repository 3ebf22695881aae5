package model

import "time"

// DefaultStatValue is the value every attribute takes when a build is
// created without it.
const DefaultStatValue = 10

// Build is a saved character configuration
type Build struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Class       string    `json:"class"`
	Level       int       `json:"level"`
	Stats       Stats     `json:"stats"`
	Equipment   Equipment `json:"equipment"`
	Spells      []string  `json:"spells"`
	IsPublic    bool      `json:"isPublic"`
	IsPreset    bool      `json:"isPreset"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Stats holds the eight character attributes
type Stats struct {
	Vigor        int `json:"vigor"`
	Mind         int `json:"mind"`
	Endurance    int `json:"endurance"`
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Intelligence int `json:"intelligence"`
	Faith        int `json:"faith"`
	Arcane       int `json:"arcane"`
}

// Equipment holds what the character carries and wears
type Equipment struct {
	RightHand []string `json:"rightHand"`
	LeftHand  []string `json:"leftHand"`
	Armor     Armor    `json:"armor"`
	Talismans []string `json:"talismans"`
}

// Armor slots are nullable item names
type Armor struct {
	Helmet    *string `json:"helmet"`
	Chest     *string `json:"chest"`
	Gauntlets *string `json:"gauntlets"`
	Legs      *string `json:"legs"`
}

// BuildFilters are the recognized list filters for builds
type BuildFilters struct {
	Class    string `json:"class,omitempty"`
	MaxLevel *int   `json:"level,omitempty"`
	IsPublic *bool  `json:"isPublic,omitempty"`
}

// BuildPage is one page of a filtered build listing
type BuildPage struct {
	Builds       []*Build
	TotalResults int
}

// StatsPatch carries optional attribute values. Used both on create, where
// missing values default to DefaultStatValue, and on update, where missing
// values are left untouched.
type StatsPatch struct {
	Vigor        *int `json:"vigor,omitempty"`
	Mind         *int `json:"mind,omitempty"`
	Endurance    *int `json:"endurance,omitempty"`
	Strength     *int `json:"strength,omitempty"`
	Dexterity    *int `json:"dexterity,omitempty"`
	Intelligence *int `json:"intelligence,omitempty"`
	Faith        *int `json:"faith,omitempty"`
	Arcane       *int `json:"arcane,omitempty"`
}

// IsEmpty reports whether no attribute is set
func (p *StatsPatch) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.Vigor == nil && p.Mind == nil && p.Endurance == nil && p.Strength == nil &&
		p.Dexterity == nil && p.Intelligence == nil && p.Faith == nil && p.Arcane == nil
}

// Resolve returns full stats, filling every missing attribute with
// DefaultStatValue.
func (p *StatsPatch) Resolve() Stats {
	if p == nil {
		p = &StatsPatch{}
	}
	return Stats{
		Vigor:        intOr(p.Vigor, DefaultStatValue),
		Mind:         intOr(p.Mind, DefaultStatValue),
		Endurance:    intOr(p.Endurance, DefaultStatValue),
		Strength:     intOr(p.Strength, DefaultStatValue),
		Dexterity:    intOr(p.Dexterity, DefaultStatValue),
		Intelligence: intOr(p.Intelligence, DefaultStatValue),
		Faith:        intOr(p.Faith, DefaultStatValue),
		Arcane:       intOr(p.Arcane, DefaultStatValue),
	}
}

// ArmorPatch carries optional armor slots
type ArmorPatch struct {
	Helmet    *string `json:"helmet,omitempty"`
	Chest     *string `json:"chest,omitempty"`
	Gauntlets *string `json:"gauntlets,omitempty"`
	Legs      *string `json:"legs,omitempty"`
}

// EquipmentPatch carries optional equipment fields
type EquipmentPatch struct {
	RightHand *[]string   `json:"rightHand,omitempty"`
	LeftHand  *[]string   `json:"leftHand,omitempty"`
	Armor     *ArmorPatch `json:"armor,omitempty"`
	Talismans *[]string   `json:"talismans,omitempty"`
}

// Resolve returns full equipment with empty lists and null armor slots
// where nothing was supplied.
func (p *EquipmentPatch) Resolve() Equipment {
	if p == nil {
		p = &EquipmentPatch{}
	}
	eq := Equipment{
		RightHand: sliceOr(p.RightHand),
		LeftHand:  sliceOr(p.LeftHand),
		Talismans: sliceOr(p.Talismans),
	}
	if p.Armor != nil {
		eq.Armor = Armor{
			Helmet:    nonEmpty(p.Armor.Helmet),
			Chest:     nonEmpty(p.Armor.Chest),
			Gauntlets: nonEmpty(p.Armor.Gauntlets),
			Legs:      nonEmpty(p.Armor.Legs),
		}
	}
	return eq
}

// CreateBuildRequest is the body of POST /builds
type CreateBuildRequest struct {
	UserID      string          `json:"userId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Class       string          `json:"class"`
	Level       int             `json:"level"`
	Stats       *StatsPatch     `json:"stats,omitempty"`
	Equipment   *EquipmentPatch `json:"equipment,omitempty"`
	Spells      []string        `json:"spells,omitempty"`
	IsPublic    bool            `json:"isPublic"`
	IsPreset    bool            `json:"isPreset"`
	Tags        []string        `json:"tags,omitempty"`
}

// BuildPatch is a partial update of a build. Nil fields are not touched.
// The owner and the preset flag cannot be changed.
type BuildPatch struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Class       *string         `json:"class,omitempty"`
	Level       *int            `json:"level,omitempty"`
	Stats       *StatsPatch     `json:"stats,omitempty"`
	Equipment   *EquipmentPatch `json:"equipment,omitempty"`
	Spells      *[]string       `json:"spells,omitempty"`
	IsPublic    *bool           `json:"isPublic,omitempty"`
	Tags        *[]string       `json:"tags,omitempty"`
}

// UpdateBuildRequest is the body of PUT /builds/{id}
type UpdateBuildRequest struct {
	UserID string `json:"userId"`
	BuildPatch
}

// OwnerRequest is the body of requests that only carry the caller's id
type OwnerRequest struct {
	UserID string `json:"userId"`
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func sliceOr(v *[]string) []string {
	if v == nil || *v == nil {
		return []string{}
	}
	return *v
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
