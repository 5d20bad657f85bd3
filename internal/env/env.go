// Package env fills configuration structs from environment variables.
package env

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"
)

// Validator is implemented by config structs that need validation.
type Validator interface {
	Validate() error
}

// ErrInvalidValue is returned when an environment variable value cannot be parsed.
type ErrInvalidValue struct {
	Field  string
	EnvVar string
	Value  string
	Err    error
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("invalid value for %s=%q (field: %s): %v", e.EnvVar, e.Value, e.Field, e.Err)
}

func (e ErrInvalidValue) Unwrap() error {
	return e.Err
}

// ErrNotStructPointer is returned when Load is called with a non-pointer or non-struct argument.
type ErrNotStructPointer struct {
	Type string
}

func (e ErrNotStructPointer) Error() string {
	return fmt.Sprintf("env.Load: argument must be a pointer to struct, got %s", e.Type)
}

// ErrUnsupportedType is returned when a field has an unsupported type.
type ErrUnsupportedType struct {
	Kind string
}

func (e ErrUnsupportedType) Error() string {
	return fmt.Sprintf("unsupported type: %s", e.Kind)
}

var (
	durationType = reflect.TypeFor[time.Duration]()
	timeType     = reflect.TypeFor[time.Time]()
)

// Load populates the struct pointed to by v from the environment.
//
// Supported struct tags:
//   - env:"VAR_NAME" - maps field to environment variable VAR_NAME
//   - default:"value" - used when VAR_NAME is not set at all
//
// Fields may be strings, bools, signed or unsigned integers (range checked
// against the field size) and time.Duration. Nested structs are walked
// recursively and validated through Validator once their own fields parsed.
//
// Every bad variable is reported, joined into one error, so a broken
// deployment shows all of its mistakes at once. A variable that is set but
// empty is applied as-is: an empty string clears a string default, while an
// empty number or duration is an error.
func Load(v any) error {
	ptrVal := reflect.ValueOf(v)
	if ptrVal.Kind() != reflect.Pointer || ptrVal.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer{Type: fmt.Sprintf("%T", v)}
	}
	return load(ptrVal.Elem())
}

// load fills val and then validates it. Validation is skipped when a field
// failed to parse since the validator would only see zero values.
func load(val reflect.Value) error {
	var errs []error
	typ := val.Type()

	for i := range val.NumField() {
		field := val.Field(i)
		sf := typ.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != timeType {
			if err := load(field); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		if err := loadField(field, sf); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if val.CanAddr() {
		if validator, ok := val.Addr().Interface().(Validator); ok {
			return validator.Validate()
		}
	}
	return nil
}

func loadField(field reflect.Value, sf reflect.StructField) error {
	key := sf.Tag.Get("env")
	if key == "" {
		return nil
	}

	raw, ok := os.LookupEnv(key)
	if !ok {
		if raw, ok = sf.Tag.Lookup("default"); !ok {
			return nil
		}
	}

	if err := setField(field, raw); err != nil {
		return ErrInvalidValue{Field: sf.Name, EnvVar: key, Value: raw, Err: err}
	}
	return nil
}

func setField(field reflect.Value, value string) error {
	switch kind := field.Kind(); {
	case kind == reflect.String:
		field.SetString(value)

	case kind == reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case field.Type() == durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))

	case field.CanInt():
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)

	case field.CanUint():
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)

	default:
		return ErrUnsupportedType{Kind: kind.String()}
	}
	return nil
}
