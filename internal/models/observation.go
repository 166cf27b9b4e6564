package models

// Observation represents one recorded fishing trip or catch event.
type Observation struct {
	ID       uint     `json:"id" gorm:"primaryKey;autoIncrement"`
	Date     string   `json:"date" gorm:"type:text;not null"` // YYYY-MM-DD
	Location string   `json:"location" gorm:"type:text;not null"`
	Species  string   `json:"species" gorm:"type:text;not null;index"`
	Count    string   `json:"count" gorm:"type:text;not null"` // free text, parsed by the stats aggregator
	Bait     string   `json:"bait" gorm:"type:text;not null"`
	Size     string   `json:"size" gorm:"type:text;not null"`
	Water    string   `json:"water" gorm:"type:text;not null"`
	Platform string   `json:"platform" gorm:"type:text;not null"`
	Comments string   `json:"comments" gorm:"type:text;not null"`
	Image    *string  `json:"image"` // stored filename, nil when no photo was attached
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
}

// TableName pins the table name shared with existing databases.
func (Observation) TableName() string {
	return "observations"
}

// HasCoordinates reports whether both lat and lng are set.
func (o Observation) HasCoordinates() bool {
	return o.Lat != nil && o.Lng != nil
}
