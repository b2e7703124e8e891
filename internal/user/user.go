package user

import "time"

// User is an account. Password holds the bcrypt hash and never leaves the
// package in a response.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Firstname string `gorm:"size:255;not null"`
	Surname   string `gorm:"size:255;not null"`
	Email     string `gorm:"size:255;not null;uniqueIndex"`
	Password  string `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

// View is the outward shape of a user.
type View struct {
	ID        uint   `json:"id"`
	Firstname string `json:"firstname"`
	Surname   string `json:"surname"`
	Email     string `json:"email"`
}

func NewView(u User) View {
	return View{ID: u.ID, Firstname: u.Firstname, Surname: u.Surname, Email: u.Email}
}

type CreateInput struct {
	Firstname       string `json:"firstname" validate:"required"`
	Surname         string `json:"surname" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type UpdateInput struct {
	Firstname string `json:"firstname" validate:"required"`
	Surname   string `json:"surname" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is the answer to a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      View      `json:"user"`
}
