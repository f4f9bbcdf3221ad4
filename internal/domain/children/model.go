package children

import "time"

type Child struct {
	ID        string     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FamilyID  string     `gorm:"type:uuid;not null;index" json:"family_id"`
	Name      string     `gorm:"not null" json:"name"`
	BirthDate *time.Time `gorm:"type:date" json:"birth_date"`
	Color     string     `gorm:"type:varchar(16)" json:"color"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AgeInMonths returns whole months between birth and at. Nil when the birth
// date is unknown or after at.
func AgeInMonths(birth *time.Time, at time.Time) *int {
	if birth == nil || at.Before(*birth) {
		return nil
	}

	months := (at.Year()-birth.Year())*12 + int(at.Month()) - int(birth.Month())
	if at.Day() < birth.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}
	return &months
}
