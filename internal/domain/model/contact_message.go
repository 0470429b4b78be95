package model

import "time"

type ContactMessageStatus string

const (
	ContactMessageUnread ContactMessageStatus = "unread"
	ContactMessageRead   ContactMessageStatus = "read"
)

// お問い合わせフォームの送信内容
type ContactMessage struct {
	ID        int64                `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string               `gorm:"type:varchar(255);not null" json:"name"`
	Email     string               `gorm:"type:varchar(255);not null" json:"email"`
	Subject   string               `gorm:"type:varchar(255);not null" json:"subject"`
	Message   string               `gorm:"type:text;not null" json:"message"`
	Status    ContactMessageStatus `gorm:"type:varchar(20);not null;default:'unread';index" json:"status"`
	CreatedAt time.Time            `gorm:"not null;autoCreateTime;index" json:"created_at"`
}
