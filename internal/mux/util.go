package mux

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"blackjack-server/pkg/blackjack"
	"blackjack-server/pkg/pitboss"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const maxRows = 100
const defaultRows = 25

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	// lets numeric tags like gt=0 work on money
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}

		return nil
	}, decimal.Decimal{})

	return v
}

// validationError turns the first failed validation into a message for the player
func validationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return blackjack.ValidationError(err.Error())
	}

	fe := fieldErrors[0]
	switch fe.Tag() {
	case "required":
		return blackjack.ValidationError(fmt.Sprintf("%s is required", fe.Field()))
	case "gt":
		return blackjack.ValidationError(fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
	case "max":
		return blackjack.ValidationError(fmt.Sprintf("%s cannot be longer than %s characters", fe.Field(), fe.Param()))
	case "oneof":
		return blackjack.ValidationError(fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", ")))
	}

	return blackjack.ValidationError(fmt.Sprintf("%s is invalid", fe.Field()))
}

func parsePaginationOptions(r *http.Request) (int64, int, error) {
	start := int64(0)
	rows := defaultRows

	if startStr := r.FormValue("start"); startStr != "" {
		val, err := strconv.ParseInt(startStr, 10, 64)
		if err != nil {
			return 0, 0, blackjack.ValidationError("start must be a number")
		}

		if val < 0 {
			return 0, 0, blackjack.ValidationError("start cannot be less than zero")
		}

		start = val
	}

	if rowsStr := r.FormValue("rows"); rowsStr != "" {
		val, err := strconv.Atoi(rowsStr)
		if err != nil {
			return 0, 0, blackjack.ValidationError("rows must be a number")
		}

		if val <= 0 {
			return 0, 0, blackjack.ValidationError("rows must be greater than zero")
		}

		if val > maxRows {
			return 0, 0, blackjack.ValidationError(fmt.Sprintf("rows cannot be greater than %d", maxRows))
		}

		rows = val
	}

	return start, rows, nil
}

// decodeRequest decodes and validates the JSON body into payload
// If false is returned, the error has been written to the response
func decodeRequest(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if ct := r.Header.Get("Content-Type"); ct != "application/json" && ct != "text/json" {
		writeJSONError(w, http.StatusUnsupportedMediaType, nil)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		writeError(w, blackjack.ValidationError("invalid JSON payload"))
		return false
	}

	if err := validate.Struct(payload); err != nil {
		writeError(w, validationError(err))
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("could not write JSON response")
	}
}

// writeError writes the result envelope for err
func writeError(w http.ResponseWriter, err error) {
	result, statusCode := pitboss.ResultFromError(err)
	if statusCode >= 500 {
		logrus.WithField("statusCode", statusCode).WithError(err).Error("request failed")
	}

	writeJSON(w, statusCode, result)
}

// writeJSONError writes a result envelope for a status that has no domain error
func writeJSONError(w http.ResponseWriter, statusCode int, err error) {
	msg := http.StatusText(statusCode)
	if statusCode < 500 && err != nil {
		msg = err.Error()
	}

	if statusCode >= 500 {
		logrus.WithField("statusCode", statusCode).Error(err)
	}

	kind := pitboss.KindWarning
	if statusCode >= 500 {
		kind = pitboss.KindError
	}

	writeJSON(w, statusCode, &pitboss.Result{
		Kind:    kind,
		Message: msg,
		Notify:  true,
	})
}
