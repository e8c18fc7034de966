package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dtroode/auth-service/internal/apierrors"
)

const maxBodySize = 1 << 20

const invalidValueMsg = "Invalid value"

// requiredMessages overrides the generic message for missing fields.
var requiredMessages = map[string]string{
	"email": "Email is required",
}

// Decoder parses JSON bodies and validates them with struct tags. Field paths
// in the error envelope use the json names.
type Decoder struct {
	validate *validator.Validate
}

func NewDecoder() *Decoder {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Decoder{validate: v}
}

// Decode reads r's body into dst and validates it.
func (d *Decoder) Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return apierrors.NewErrMalformedBody()
	}

	if t, ok := dst.(interface{ trim() }); ok {
		t.trim()
	}

	if err := d.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		entries := make([]apierrors.Entry, 0, len(verrs))
		for _, fe := range verrs {
			msg := invalidValueMsg
			if fe.Tag() == "required" {
				if m, ok := requiredMessages[fe.Field()]; ok {
					msg = m
				}
			}
			entries = append(entries, apierrors.FieldEntry(fe.Field(), msg))
		}
		return apierrors.NewErrValidation(entries...)
	}
	return nil
}

// idParam parses the {id} url parameter.
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierrors.NewErrInvalidURLParam()
	}
	return id, nil
}
