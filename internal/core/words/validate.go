package words

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hay-kot/criterio"
)

// NewWord is the payload for creating a word.
type NewWord struct {
	UserID       string       `json:"user_id" validate:"required"`
	Word         string       `json:"word" validate:"required"`
	PartOfSpeech PartOfSpeech `json:"part_of_speech" validate:"required,pos"`
	Translation  string       `json:"translation" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("pos", func(fl validator.FieldLevel) bool {
		return PartOfSpeech(fl.Field().String()).Known()
	}); err != nil {
		panic(err)
	}

	return v
}

// Normalize trims every field and lower-cases the word.
func (n NewWord) Normalize() NewWord {
	return NewWord{
		UserID:       strings.TrimSpace(n.UserID),
		Word:         strings.ToLower(strings.TrimSpace(n.Word)),
		PartOfSpeech: PartOfSpeech(strings.ToLower(strings.TrimSpace(string(n.PartOfSpeech)))),
		Translation:  strings.TrimSpace(n.Translation),
	}
}

// Validate returns ErrNoUser when the user id is missing and
// criterio.FieldErrors for invalid fields.
func (n NewWord) Validate() error {
	if n.UserID == "" {
		return ErrNoUser
	}

	err := validate.Struct(n)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var errs criterio.FieldErrorsBuilder
	for _, fe := range verrs {
		errs = errs.Append(fe.Field(), errors.New(fieldMessage(fe)))
	}
	return errs.ToError()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "pos":
		return fmt.Sprintf("unknown part of speech %q", fe.Value())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
