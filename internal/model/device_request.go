package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names (device_info.os_version) instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DeviceInfoPayload is the accepted shape of device_info. Required fields are
// pointers so that presence is checked, an empty string is still "present".
type DeviceInfoPayload struct {
	Manufacturer       *string `json:"manufacturer" validate:"required"`
	Model              *string `json:"model" validate:"required"`
	OSVersion          *string `json:"os_version" validate:"required"`
	ScreenSize         *string `json:"screen_size"`
	ScreenDensity      *int    `json:"screen_density"`
	DeviceLanguage     *string `json:"device_language"`
	NetworkType        *string `json:"network_type"`
	RAMTotal           *int64  `json:"ram_total"`
	StorageTotal       *int64  `json:"storage_total"`
	StorageFree        *int64  `json:"storage_free"`
	BatteryLevel       *int    `json:"battery_level"`
	IsRooted           *bool   `json:"is_rooted"`
	InstalledAppsCount *int    `json:"installed_apps_count"`
}

// StoreDeviceRequest is the body of POST /api/store-ids.
type StoreDeviceRequest struct {
	AndroidID       *string            `json:"android_id" validate:"required,min=1,max=191"`
	AdvertisingID   *string            `json:"advertising_id" validate:"required,max=191"`
	LimitAdTracking *bool              `json:"limit_ad_tracking" validate:"required"`
	DeviceInfo      *DeviceInfoPayload `json:"device_info" validate:"required"`
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned for malformed or incomplete input. It never
// reaches the store.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks presence and value constraints. Type mismatches are caught
// earlier, while decoding (see DecodeError).
func (r *StoreDeviceRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: tagMessage(fe),
		})
	}
	return out
}

// DecodeError turns a JSON decoding failure into a ValidationError.
func DecodeError(err error) *ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return &ValidationError{Fields: []FieldError{{
			Field:   field,
			Message: fmt.Sprintf("expected %s, got %s", typeName(typeErr.Type), typeErr.Value),
		}}}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ValidationError{Fields: []FieldError{{
			Field:   "body",
			Message: fmt.Sprintf("invalid JSON at offset %d: %s", syntaxErr.Offset, syntaxErr.Error()),
		}}}
	}

	return &ValidationError{Fields: []FieldError{{Field: "body", Message: err.Error()}}}
}

// ToRecord builds the values to persist. Call only after Validate succeeded.
func (r *StoreDeviceRequest) ToRecord() DeviceRecord {
	return DeviceRecord{
		AndroidID:       *r.AndroidID,
		AdvertisingID:   *r.AdvertisingID,
		LimitAdTracking: *r.LimitAdTracking,
		DeviceInfo:      datatypes.NewJSONType(r.DeviceInfo.ToDeviceInfo()),
	}
}

func (p *DeviceInfoPayload) ToDeviceInfo() DeviceInfo {
	return DeviceInfo{
		Manufacturer:       *p.Manufacturer,
		Model:              *p.Model,
		OSVersion:          *p.OSVersion,
		ScreenSize:         p.ScreenSize,
		ScreenDensity:      p.ScreenDensity,
		DeviceLanguage:     p.DeviceLanguage,
		NetworkType:        p.NetworkType,
		RAMTotal:           p.RAMTotal,
		StorageTotal:       p.StorageTotal,
		StorageFree:        p.StorageFree,
		BatteryLevel:       p.BatteryLevel,
		IsRooted:           p.IsRooted,
		InstalledAppsCount: p.InstalledAppsCount,
	}
}

// fieldPath drops the struct name: "StoreDeviceRequest.device_info.model" -> "device_info.model".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min":
		return "must not be empty"
	case "max":
		// matches the size:191 column, longer values would fail on MySQL
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Struct:
		return "object"
	default:
		return t.String()
	}
}
