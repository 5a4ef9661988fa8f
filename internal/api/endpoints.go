package api

// Authentication service endpoints
const (
	// Service name
	AuthService = "moodiary.auth.Auth"

	// Public endpoints
	AuthRegister      = "/moodiary.auth.Auth/Register"
	AuthLogin         = "/moodiary.auth.Auth/Login"
	AuthValidateToken = "/moodiary.auth.Auth/ValidateToken"
	AuthRefreshToken  = "/moodiary.auth.Auth/RefreshToken"

	// Endpoints that require a bearer access token
	AuthUpdateProfile = "/moodiary.auth.Auth/UpdateProfile"
	AuthGetProfile    = "/moodiary.auth.Auth/GetProfile"
	AuthMe            = "/moodiary.auth.Auth/Me"
)

// PublicEndpoints defines endpoints that don't require authentication
var PublicEndpoints = map[string]bool{
	AuthRegister:      true,
	AuthLogin:         true,
	AuthValidateToken: true,
	AuthRefreshToken:  true,
}
