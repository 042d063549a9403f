package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tigertix/tigertix/internal/service"
	"github.com/tigertix/tigertix/internal/service/auth"
)

func NewAuthRouter(svcs *service.Services, opts Options) *gin.Engine {
	r := newEngine("auth", opts)
	cookies := sessionCookies{secure: opts.CookieSecure}

	g := r.Group("/api/auth")
	{
		g.POST("/register", handleRegister(svcs, cookies))
		g.POST("/login", handleLogin(svcs, cookies))
		g.POST("/logout", handleLogout(svcs, cookies))
		g.GET("/me", RequireAuth(svcs.Auth), handleMe(svcs))
		g.GET("/profile", RequireAuth(svcs.Auth), handleProfile())
	}

	return r
}

type sessionCookies struct {
	secure bool
}

func (s sessionCookies) set(c *gin.Context, session *auth.Session, ttlSeconds int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tokenCookie, session.Token, ttlSeconds, "/", "", s.secure, true)
}

func (s sessionCookies) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tokenCookie, "", -1, "/", "", s.secure, true)
}

// @Summary  Register
// @Tags     auth
// @Param    req body  RegisterRequest true "payload"
// @Success  201 {object} SessionResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "email already registered"
// @Router   /api/auth/register [post]
func handleRegister(svcs *service.Services, cookies sessionCookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		session, err := svcs.Auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
		if err != nil {
			respondErr(c, err)
			return
		}

		cookies.set(c, session, int(svcs.Auth.TokenTTL().Seconds()))
		c.JSON(http.StatusCreated, SessionResponse{Message: "registered", User: session.User, Token: session.Token})
	}
}

// @Summary  Log in
// @Tags     auth
// @Param    req body  LoginRequest true "payload"
// @Success  200 {object} SessionResponse
// @Failure  401 {object} ErrorResponse
// @Router   /api/auth/login [post]
func handleLogin(svcs *service.Services, cookies sessionCookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		session, err := svcs.Auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}

		cookies.set(c, session, int(svcs.Auth.TokenTTL().Seconds()))
		c.JSON(http.StatusOK, SessionResponse{Message: "logged_in", User: session.User, Token: session.Token})
	}
}

// @Summary  Log out
// @Tags     auth
// @Success  200 {object} MessageResponse
// @Router   /api/auth/logout [post]
func handleLogout(svcs *service.Services, cookies sessionCookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.Auth.Logout(c.Request.Context(), tokenFromRequest(c)); err != nil {
			respondErr(c, err)
			return
		}

		cookies.clear(c)
		c.JSON(http.StatusOK, MessageResponse{Message: "logged_out"})
	}
}

// @Summary  Current user
// @Tags     auth
// @Success  200 {object} UserResponse
// @Failure  401 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /api/auth/me [get]
func handleMe(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svcs.Auth.Me(c.Request.Context(), c.GetInt64(ctxUserID))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: user})
	}
}

// @Summary  Session profile
// @Tags     auth
// @Success  200 {object} ProfileResponse
// @Failure  401 {object} ErrorResponse
// @Router   /api/auth/profile [get]
func handleProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ProfileResponse{
			Message: "protected_profile",
			User: ProfileUser{
				ID:    c.GetInt64(ctxUserID),
				Email: c.GetString(ctxUserEmail),
			},
		})
	}
}
