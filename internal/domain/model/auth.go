package model

// AuthState is the session view derived by a client variant. It is never
// persisted by the core.
type AuthState struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Email           string `json:"email,omitempty"`
	Token           string `json:"token,omitempty"`
	UserID          string `json:"userId,omitempty"`
}

// Unauthenticated is the zero session.
func Unauthenticated() AuthState { return AuthState{} }
