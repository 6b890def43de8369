package models

// Room is supplied by the room catalog; the booking core only reads it.
type Room struct {
	ID          string `bson:"id" json:"roomId" yaml:"id" gorm:"primaryKey;type:varchar(64)"`
	HotelID     string `bson:"hotel_id" json:"hotelId" yaml:"hotelId" gorm:"type:varchar(64);index"`
	Name        string `bson:"name" json:"name" yaml:"name" gorm:"type:varchar(255)"`
	Capacity    int    `bson:"capacity" json:"capacity" yaml:"capacity" gorm:"not null"`
	NightlyRate Money  `bson:"nightly_rate" json:"nightlyRate" yaml:"nightlyRate" gorm:"not null"`
}

func (Room) TableName() string {
	return "rooms"
}
