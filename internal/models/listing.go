package models

import "time"

// Condition is the closed set of states a listed item can be in.
type Condition string

const (
	ConditionLikeNew   Condition = "like_new"
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionUsed      Condition = "used"
)

// Conditions lists every accepted Condition.
var Conditions = []Condition{ConditionLikeNew, ConditionExcellent, ConditionGood, ConditionFair, ConditionUsed}

// Listing represents an item offered on the marketplace by its owner.
type Listing struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null;index"`
	Description string    `json:"description" gorm:"type:varchar(255);not null"`
	Price       float64   `json:"price" gorm:"not null"`
	PictureRef  string    `json:"pictureRef" gorm:"type:varchar(500);not null"`
	Condition   Condition `json:"condition" gorm:"type:varchar(16);not null"`
	Category    string    `json:"category" gorm:"type:varchar(255);not null"`
	OwnerID     string    `json:"ownerId" gorm:"type:varchar(36);not null;index"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Owner returns the identity that owns the listing. OwnerID is fixed at creation.
func (l Listing) Owner() string {
	return l.OwnerID
}

// ListingInput is the client-supplied, mutable part of a Listing.
type ListingInput struct {
	Name        string    `json:"name" validate:"required,min=3,max=255"`
	Description string    `json:"description" validate:"required,min=3,max=255"`
	Price       float64   `json:"price" validate:"required,gt=0"`
	PictureRef  string    `json:"pictureRef" validate:"required,min=1,max=500"`
	Condition   Condition `json:"condition" validate:"required,oneof=like_new excellent good fair used"`
	Category    string    `json:"category" validate:"required,min=3,max=255"`
}

// Apply overwrites the mutable fields of l with the input.
func (in ListingInput) Apply(l *Listing) {
	l.Name = in.Name
	l.Description = in.Description
	l.Price = in.Price
	l.PictureRef = in.PictureRef
	l.Condition = in.Condition
	l.Category = in.Category
}

// DeleteResult confirms a deletion and carries the removed listing.
type DeleteResult struct {
	Success bool    `json:"success"`
	ID      string  `json:"id"`
	Listing Listing `json:"listing"`
}
