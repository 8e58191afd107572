package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ItalcolColombia/miit-api-sub000/internal/apierror"
	"github.com/ItalcolColombia/miit-api-sub000/internal/service"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds the JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails, in which
// case the caller must return without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(http.StatusBadRequest, "JSON inválido: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindQueryAndValidate is the query-string variant used by list endpoints.
func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(http.StatusBadRequest, "Parámetros inválidos: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var fields []apierror.FieldError
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields = append(fields, apierror.FieldError{Field: fe.Field(), Reason: fe.Tag()})
			}
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// esNoEncontrado reports whether err is the not-found sentinel. Some flows
// treat "nothing pending" as an empty set rather than an error.
func esNoEncontrado(err error) bool {
	return errors.Is(err, service.ErrNoEncontrado)
}

// respondError maps service sentinel errors to their HTTP status. Anything
// unrecognized is logged by the ErrorHandler middleware as a 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New(http.StatusNotFound, err.Error()))
	case errors.Is(err, service.ErrYaRegistrado):
		c.JSON(http.StatusConflict, apierror.New(http.StatusConflict, err.Error()))
	case errors.Is(err, service.ErrOperacionInvalida):
		c.JSON(http.StatusBadRequest, apierror.New(http.StatusBadRequest, err.Error()))
	case errors.Is(err, service.ErrEnvioExterno):
		c.JSON(http.StatusBadGateway, apierror.New(http.StatusBadGateway, err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError,
			apierror.New(http.StatusInternalServerError, "Error interno del servidor"))
	}
}
