package models

// Allergen is one tag of the fixed allergen vocabulary.
// Dishes carry a set of allergens and users may exclude any of them from the menu.
type Allergen struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;not null" json:"name"`
	Slug string `gorm:"size:50;uniqueIndex;not null" json:"slug"`
}

func (Allergen) TableName() string {
	return "allergens"
}

// AllergenIDs returns the IDs of the given allergens in their original order
func AllergenIDs(allergens []Allergen) []uint {
	ids := make([]uint, 0, len(allergens))
	for _, a := range allergens {
		ids = append(ids, a.ID)
	}
	return ids
}
