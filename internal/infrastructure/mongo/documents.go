package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MenuDocument is a menu embedded in a shop document.
type MenuDocument struct {
	Name             string `bson:"name"`
	Category         string `bson:"category,omitempty"`
	Price            int    `bson:"price"`
	DurationMinutes  int    `bson:"durationMinutes,omitempty"`
	ReservationCount int    `bson:"reservationCount"`
}

// ShopDocument is the MongoDB schema of a shop.
type ShopDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Code          string             `bson:"code"`
	Name          string             `bson:"name"`
	CategoryCode  string             `bson:"categoryCode,omitempty"`
	CategoryName  string             `bson:"categoryName,omitempty"`
	Location      string             `bson:"location,omitempty"`
	Phone         string             `bson:"phone,omitempty"`
	Description   string             `bson:"description,omitempty"`
	BusinessHours string             `bson:"businessHours,omitempty"`
	Latitude      float64            `bson:"latitude"`
	Longitude     float64            `bson:"longitude"`
	Menus         []MenuDocument     `bson:"menus,omitempty"`
	CreatedAt     *time.Time         `bson:"createdAt,omitempty"`
	UpdatedAt     *time.Time         `bson:"updatedAt,omitempty"`
}

// CategoryDocument is the MongoDB schema of a category.
type CategoryDocument struct {
	Code      string `bson:"code"`
	Name      string `bson:"name"`
	SortOrder int    `bson:"sortOrder"`
}

// BookingDocument is the MongoDB schema of a booking.
type BookingDocument struct {
	ID         string    `bson:"_id"`
	ShopCode   string    `bson:"shopCode"`
	ShopName   string    `bson:"shopName"`
	MenuName   string    `bson:"menuName"`
	UserID     string    `bson:"userId"`
	Memo       string    `bson:"memo,omitempty"`
	ReservedAt time.Time `bson:"reservedAt"`
	CreatedAt  time.Time `bson:"createdAt"`
}

// FailedNotificationDocument records a notification that could not be delivered.
type FailedNotificationDocument struct {
	Target      string         `bson:"target"`
	Payload     map[string]any `bson:"payload"`
	Error       string         `bson:"error"`
	Attempts    int            `bson:"attempts"`
	Status      string         `bson:"status"`
	CreatedAt   time.Time      `bson:"createdAt"`
	LastTriedAt time.Time      `bson:"lastTriedAt"`
}
