package users

// CreateUserRequest is the registration payload. Username and password seed
// the credential row; the rest is profile data.
type CreateUserRequest struct {
	FirstName string `json:"first_name" validate:"max=255"`
	LastName  string `json:"last_name" validate:"max=255"`
	Email     string `json:"email" validate:"required,email"`
	Handle    string `json:"handle" validate:"required,max=255"`
	Username  string `json:"username" validate:"required,max=255"`
	Password  string `json:"password" validate:"required,max=255"`
}

// UpdateUserRequest mirrors the create payload; password is optional and,
// when present, rotates the stored hash.
type UpdateUserRequest struct {
	FirstName string `json:"first_name" validate:"max=255"`
	LastName  string `json:"last_name" validate:"max=255"`
	Email     string `json:"email" validate:"required,email"`
	Handle    string `json:"handle" validate:"required,max=255"`
	Username  string `json:"username" validate:"required,max=255"`
	Password  string `json:"password" validate:"omitempty,max=255"`
}
