package model

// Entities exchanged with the external auth/user services. Field names follow
// the wire contract of those services, so JSON tags are authoritative here.

type UserRole string

const (
	RoleUserAccount UserRole = "ROLE_USER"
	RoleAdmin       UserRole = "ROLE_ADMIN"
	RoleManager     UserRole = "ROLE_MANAGER"
)

// User is the profile served by the user service.
type User struct {
	Name      string     `json:"name"`
	Username  string     `json:"userName"`
	Email     string     `json:"email"`
	Roles     []UserRole `json:"roles"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the sign-up request body.
type Registration struct {
	Name     string `json:"name,omitempty"`
	Username string `json:"userName"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// AuthTokens is the auth service response for login and refresh.
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Message      string `json:"message"`
}
