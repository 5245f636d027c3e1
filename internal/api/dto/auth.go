package dto

// MinPasswordLength matches the account-creation contract: shorter
// passwords are rejected with a field-level validation error.
const MinPasswordLength = 5

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r CreateUserRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < MinPasswordLength {
		errors["password"] = "Password must be at least 5 characters"
	}

	return errors
}

type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r TokenRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type TokenResponse struct {
	Token string `json:"token"`
}

// UpdateUserRequest patches the authenticated account. Nil fields are
// left untouched; the password is never echoed back.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (r UpdateUserRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email != nil && *r.Email == "" {
		errors["email"] = "Email cannot be empty"
	}
	if r.Password != nil && len(*r.Password) < MinPasswordLength {
		errors["password"] = "Password must be at least 5 characters"
	}

	return errors
}

type UserResponse struct {
	ID      uint   `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsStaff bool   `json:"is_staff"`
}
