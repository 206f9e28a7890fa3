package auth

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LoginPayload defines the expected JSON structure for login requests.
type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

const sessionCookieName = "admin_session_token"

// In-memory session store for MVP. Tokens survive only for the lifetime of
// the process. In a real app, use JWT or a shared session store.
var (
	sessionMu     sync.Mutex
	activeTokens  = make(map[string]bool)
	sessionMaxAge = 3600 // seconds
)

func newSessionToken() string {
	token := uuid.New().String()
	sessionMu.Lock()
	activeTokens[token] = true
	sessionMu.Unlock()
	return token
}

func isValidSessionToken(token string) bool {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	return activeTokens[token]
}

func revokeSessionToken(token string) {
	sessionMu.Lock()
	delete(activeTokens, token)
	sessionMu.Unlock()
}

// LoginHandler handles admin login requests.
// It checks credentials against environment-configured values.
// On success, it sets a simple session cookie (for MVP).
func LoginHandler(c *gin.Context) {
	var payload LoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	// LoadAdminCredentials() should have been called at application startup.
	if adminUsername == "" || adminPassword == "" {
		// This indicates a server configuration issue.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Admin credentials not configured on server"})
		return
	}

	if payload.Username == adminUsername && payload.Password == adminPassword {
		token := newSessionToken()
		// HttpOnly should always be true to prevent XSS.
		// Secure=false for local dev without HTTPS.
		c.SetCookie(sessionCookieName, token, sessionMaxAge, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"token":   token, // Also returning as token for flexibility
		})
	} else {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	}
}

// LogoutHandler revokes the session token and clears the cookie.
func LogoutHandler(c *gin.Context) {
	if cookie, err := c.Cookie(sessionCookieName); err == nil {
		revokeSessionToken(cookie)
	}
	// Clear the cookie by setting its MaxAge to -1.
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}
