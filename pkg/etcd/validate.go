package etcd

import (
	"errors"
	"net"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// hostTag validates a host name or IP address. Host names follow RFC 1123
// except that labels may contain underscores, as container service names do.
const hostTag = "etcd_host"

const maxHostLength = 253

var hostLabel = regexp.MustCompile(`^[A-Za-z0-9_]([A-Za-z0-9_-]{0,61}[A-Za-z0-9_])?$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation(hostTag, func(fl validator.FieldLevel) bool {
		return validHost(fl.Field().String())
	})

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

func validHost(host string) bool {
	if net.ParseIP(host) != nil {
		return true
	}

	host = strings.TrimSuffix(host, ".")
	if host == "" || len(host) > maxHostLength {
		return false
	}

	for _, label := range strings.Split(host, ".") {
		if !hostLabel.MatchString(label) {
			return false
		}
	}

	return true
}

// FieldError represents a single invalid connection option.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
}

// FieldErrors collects every invalid connection option.
type FieldErrors []FieldError

// Error implements the error interface.
func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, f := range fe {
		parts[i] = f.Field + ": failed " + f.Tag
	}

	return "invalid connection options: " + strings.Join(parts, "; ")
}

// ValidateConnectionOptions checks host, port, and protocol.
func ValidateConnectionOptions(opts ConnectionOptions) error {
	err := validate.Struct(opts)
	if err == nil {
		return nil
	}

	var verrors validator.ValidationErrors
	if !errors.As(err, &verrors) {
		return err
	}

	fields := make(FieldErrors, 0, len(verrors))
	for _, verror := range verrors {
		fields = append(fields, FieldError{Field: verror.Field(), Tag: verror.Tag()})
	}

	return fields
}
