package handler

import (
	"github.com/labstack/echo/v4"
)

// Routes groups every handler the server exposes. WS and Metrics are optional.
type Routes struct {
	News     *DefaultNewsRoute
	Comments *DefaultCommentRoute
	Notes    *DefaultNoteRoute
	Users    *DefaultUserRoute
	WS       *DefaultWSRoute
	Metrics  echo.HandlerFunc
}

func Register(e *echo.Echo, r *Routes) {
	// News
	e.GET("/", r.News.GetHome)
	e.GET("/news/:id/", r.News.GetNewsDetail)

	// Comments
	e.POST("/news/:id/", r.Comments.CreateComment)
	e.GET("/edit_comment/:id/", r.Comments.EditForm)
	e.POST("/edit_comment/:id/", r.Comments.Edit)
	e.GET("/delete_comment/:id/", r.Comments.DeleteForm)
	e.POST("/delete_comment/:id/", r.Comments.Delete)

	// Notes
	notes := e.Group("/notes")
	notes.GET("/", r.Notes.Home)
	notes.GET("/list/", r.Notes.List)
	notes.GET("/add/", r.Notes.AddForm)
	notes.POST("/add/", r.Notes.Create)
	notes.GET("/done/", r.Notes.Done)
	notes.GET("/note/:slug/", r.Notes.Detail)
	notes.GET("/edit/:slug/", r.Notes.EditForm)
	notes.POST("/edit/:slug/", r.Notes.Edit)
	notes.GET("/delete/:slug/", r.Notes.DeleteForm)
	notes.POST("/delete/:slug/", r.Notes.Delete)
	notes.DELETE("/delete/:slug/", r.Notes.Delete)

	// Users
	auth := e.Group("/auth")
	auth.GET("/signup/", r.Users.SignupForm)
	auth.POST("/signup/", r.Users.Signup)
	auth.POST("/signup/confirm/", r.Users.ConfirmSignup)
	auth.GET("/login/", r.Users.LoginForm)
	auth.POST("/login/", r.Users.Login)
	// Session cookies are SameSite=Lax, so state changes stay on POST only
	auth.POST("/logout/", r.Users.Logout)

	// API Gateway websocket integration
	if r.WS != nil {
		ws := e.Group("/ws")
		ws.POST("/connect", r.WS.HandleConnect)
		ws.POST("/disconnect", r.WS.HandleDisconnect)
		ws.POST("/message", r.WS.HandleMessage)
	}

	// Docker Compose healthcheck
	e.GET("/health", Health)
	if r.Metrics != nil {
		e.GET("/metrics", r.Metrics)
	}
}
