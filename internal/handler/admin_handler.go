package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/foodlog/internal/db"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	// AuthCookieName carries the admin token on every gated request.
	AuthCookieName   = "admin-auth"
	authCookieMaxAge = 30 * 24 * 60 * 60
	loginPath        = "/admin/login"
	dashboardPath    = "/admin/dashboard"
)

type loginForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// ShowLoginPage returns the login view model with any pending flash notices.
func (a *API) ShowLoginPage(c *gin.Context) {
	session := sessions.Default(c)
	flashes := session.Flashes()
	if len(flashes) > 0 {
		_ = session.Save()
	}

	notices := make([]string, 0, len(flashes))
	for _, flash := range flashes {
		if text, ok := flash.(string); ok {
			notices = append(notices, text)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"title":         "Admin login",
		"authenticated": a.authorized(c),
		"notices":       notices,
	})
}

// Login checks the admin credentials and issues the auth cookie.
func (a *API) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		a.loginFailed(c, "Invalid login request")
		return
	}

	var user db.User
	if err := a.db.Where("username = ?", strings.TrimSpace(form.Username)).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			a.logger.Errorw("load admin user", "error", err)
		}
		a.loginFailed(c, "Invalid username or password")
		return
	}
	if !user.CheckPassword(form.Password) {
		a.loginFailed(c, "Invalid username or password")
		return
	}

	session := sessions.Default(c)
	session.Set("username", user.Username)
	if err := session.Save(); err != nil {
		a.logger.Errorw("save session", "error", err)
		respondError(c, http.StatusInternalServerError, "Could not save session")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookieName, a.authToken, authCookieMaxAge, "/", "", false, true)
	a.logger.Infow("admin signed in", "username", user.Username, "ip", c.ClientIP())
	c.Redirect(http.StatusFound, dashboardPath)
}

func (a *API) loginFailed(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	_ = session.Save()
	a.logger.Warnw("admin sign-in failed", "ip", c.ClientIP())
	c.Redirect(http.StatusFound, loginPath)
}

// Logout clears the session and the auth cookie.
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.SetCookie(AuthCookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, loginPath)
}

// ShowDashboard returns the admin landing data.
func (a *API) ShowDashboard(c *gin.Context) {
	session := sessions.Default(c)
	username, _ := session.Get("username").(string)

	var reviewCount, draftCount, listCount int64
	if err := a.db.Model(&db.Review{}).Count(&reviewCount).Error; err != nil {
		a.respondServiceError(c, err)
		return
	}
	if err := a.db.Model(&db.Review{}).Where("is_draft = ?", true).Count(&draftCount).Error; err != nil {
		a.respondServiceError(c, err)
		return
	}
	if err := a.db.Model(&db.List{}).Count(&listCount).Error; err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":       "Dashboard",
		"username":    username,
		"reviewCount": reviewCount,
		"draftCount":  draftCount,
		"listCount":   listCount,
	})
}

// AdminGate redirects requests without a valid auth cookie to the login page.
func (a *API) AdminGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authorized(c) {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// APIGate rejects unauthenticated writes and geocoding with 401. Reads pass.
func (a *API) APIGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if gatedAPIRequest(c.Request) && !a.authorized(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func gatedAPIRequest(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return strings.TrimRight(r.URL.Path, "/") == "/api/geocode"
}

func (a *API) authorized(c *gin.Context) bool {
	if a.authToken == "" {
		return false
	}
	cookie, err := c.Cookie(AuthCookieName)
	if err != nil || cookie == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie), []byte(a.authToken)) == 1
}
