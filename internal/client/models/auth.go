package models

// AuthResponse is the body returned by the login endpoint.
type AuthResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
	Token   string `json:"token,omitempty"`
}

// RegisterRequest carries the fields of a new account.
type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,max=100"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// RegisterResponse is the body returned by the register endpoint. Token is
// empty when the server requires e-mail verification before the first login.
type RegisterResponse struct {
	Message string `json:"message,omitempty"`
	User    *User  `json:"user,omitempty"`
	Token   string `json:"token,omitempty"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate is a partial profile; nil fields are left unchanged by the server.
type ProfileUpdate struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Avatar     *string `json:"avatar,omitempty" validate:"omitempty,url"`
	Bio        *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	University *string `json:"university,omitempty" validate:"omitempty,max=200"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=200"`
}

// Empty reports whether p changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Avatar == nil &&
		p.Bio == nil && p.University == nil && p.Department == nil
}
