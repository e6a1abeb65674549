package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/klu2500030136/lptd-app/core/user"
)

type (
	userApi struct {
		auth *Auth
		svc  *user.Service
	}

	loginData struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	tokenResponse struct {
		Token string    `json:"token"`
		Role  user.Role `json:"role"`
	}

	// userView is a User without its password.
	userView struct {
		ID       int       `json:"id"`
		Username string    `json:"username"`
		Role     user.Role `json:"role"`
		Name     string    `json:"name"`
		Branch   string    `json:"branch,omitempty"`
	}
)

func newUserView(usr user.User) userView {
	return userView{
		ID:       usr.ID,
		Username: usr.Username,
		Role:     usr.Role,
		Name:     usr.Name,
		Branch:   usr.Branch,
	}
}

func newUserViews(users []user.User) []userView {
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u))
	}
	return views
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *Auth, svc *user.Service) {
	api := userApi{auth: auth, svc: svc}

	// un-authed endpoints
	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.POST("/register", api.register)

	// authed endpoints
	g.GET("/me", api.me, jwt)
	g.GET("/students", api.students, jwt, capabilityMiddleware(svc, user.CapListStudents))
	g.GET("/users", api.query, jwt, capabilityMiddleware(svc, user.CapViewStats))
	g.GET("/stats", api.stats, jwt, capabilityMiddleware(svc, user.CapViewStats))
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data loginData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to loginData")
	}
	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		return err
	}
	return api.respondWithToken(ctx, http.StatusOK, usr)
}

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return api.respondWithToken(ctx, http.StatusCreated, usr)
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, newUserView(usr))
}

func (api *userApi) students(ctx echo.Context) error {
	students, err := api.svc.Students(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, newUserViews(students))
}

func (api *userApi) query(ctx echo.Context) error {
	users, err := api.svc.All(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return ctx.JSON(http.StatusOK, newUserViews(users))
}

func (api *userApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *userApi) respondWithToken(ctx echo.Context, code int, usr user.User) error {
	token, err := api.auth.UserToken(usr)
	if err != nil {
		return errors.Wrap(err, "generating user token")
	}
	return ctx.JSON(code, tokenResponse{Token: token, Role: usr.Role})
}
