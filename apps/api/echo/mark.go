package echoapi

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/klu2500030136/lptd-app/core"
	"github.com/klu2500030136/lptd-app/core/mark"
	"github.com/klu2500030136/lptd-app/core/user"
	exportsvc "github.com/klu2500030136/lptd-app/services/export"
)

const (
	exportFilename    = "marks.xlsx"
	marksRequiredText = "this field is required"
)

type (
	markApi struct {
		usrSvc *user.Service
		svc    *mark.Service
	}

	// markData is the request body of the mark write endpoints; the entry ID comes from the path.
	markData struct {
		StudentID int      `json:"studentId"`
		Subject   string   `json:"subject"`
		Marks     *float64 `json:"marks"`
	}
)

func registerMarkAPI(g *echo.Group, jwt echo.MiddlewareFunc, usrSvc *user.Service, svc *mark.Service) {
	api := markApi{usrSvc: usrSvc, svc: svc}
	canEdit := capabilityMiddleware(usrSvc, user.CapEditMarks)

	mg := g.Group("/marks", jwt)
	mg.GET("", api.query)
	mg.POST("", api.upsert, canEdit)
	mg.GET("/export", api.export, capabilityMiddleware(usrSvc, user.CapViewAllMarks))
	mg.PUT("/:id", api.upsert, canEdit)
	mg.DELETE("/:id", api.destroy, canEdit)

	g.GET("/performance", api.performance, jwt, capabilityMiddleware(usrSvc, user.CapViewPerformance))
}

func getParamID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// Handlers

func (api *markApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	marks, err := api.svc.List(ctx.Request().Context(), usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, marks)
}

// upsert serves both POST /marks and PUT /marks/:id.
func (api *markApi) upsert(ctx echo.Context) error {
	var body markData
	if err := ctx.Bind(&body); err != nil {
		return errors.Wrap(err, "binding to markData")
	}

	var id *int
	code := http.StatusCreated
	if ctx.Param("id") != "" {
		pid, err := getParamID(ctx)
		if err != nil {
			return err
		}
		id, code = &pid, http.StatusOK
	}
	if body.Marks == nil {
		return core.NewValidationError(mark.ErrInvalidMark, core.FieldError{Field: "marks", Error: marksRequiredText})
	}
	data := mark.UpsertMark{ID: id, StudentID: body.StudentID, Subject: body.Subject, Marks: *body.Marks}

	entry, err := api.svc.Upsert(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(code, entry)
}

func (api *markApi) destroy(ctx echo.Context) error {
	id, err := getParamID(ctx)
	if err != nil {
		return err
	}
	deleted, err := api.svc.Delete(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "deleting mark")
	}
	if !deleted {
		return mark.ErrNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *markApi) performance(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	perf, err := api.svc.Performance(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "computing performance")
	}
	return ctx.JSON(http.StatusOK, perf)
}

func (api *markApi) export(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	marks, err := api.svc.List(ctx.Request().Context(), usr)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err = exportsvc.WriteMarksXLSX(&buf, marks); err != nil {
		return errors.Wrap(err, "writing marks workbook")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+exportFilename+`"`)
	return ctx.Blob(http.StatusOK, exportsvc.ContentTypeXLSX, buf.Bytes())
}
