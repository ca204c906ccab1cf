// Package form validates and normalizes the teacher add/edit form.
package form

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/vi"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	vi_translations "github.com/go-playground/validator/v10/translations/vi"

	"github.com/noah-isme/teacher-directory/internal/models"
)

// Mode distinguishes the add form from the edit form.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Subject is one option of the subject select.
type Subject struct {
	Value string
	Key   string
}

// Subjects lists the enumerated choices. Any other non-empty value is accepted as a free entry.
var Subjects = []Subject{
	{Value: "Mathematics", Key: "subjects.mathematics"},
	{Value: "English Literature", Key: "subjects.english"},
	{Value: "Physics", Key: "subjects.physics"},
	{Value: "Chemistry", Key: "subjects.chemistry"},
	{Value: "Biology", Key: "subjects.biology"},
	{Value: "Computer Science", Key: "subjects.computerScience"},
	{Value: "History", Key: "subjects.history"},
	{Value: "Geography", Key: "subjects.geography"},
	{Value: "Art", Key: "subjects.art"},
	{Value: "Music", Key: "subjects.music"},
	{Value: "Physical Education", Key: "subjects.physicalEducation"},
	{Value: "Other", Key: "subjects.other"},
}

// Translator resolves dictionary keys for the active language.
type Translator interface {
	T(key string) string
	Language() string
}

type fields struct {
	Name     string `json:"name" validate:"required,min=2"`
	Subject  string `json:"subject" validate:"required"`
	Location string `json:"location" validate:"required,min=2"`
	Rating   string `json:"rating" validate:"required,numeric,rating_min,rating_max"`
	Fee      string `json:"fee" validate:"required,numeric,fee_min"`
}

// tagSuffix maps a failed rule onto the dictionary key suffix, e.g. name+Min -> form.nameMin.
var tagSuffix = map[string]string{
	"required":   "Required",
	"min":        "Min",
	"numeric":    "Numeric",
	"rating_min": "Min",
	"rating_max": "Max",
	"fee_min":    "Min",
}

// Controller validates submissions. It is safe for concurrent use.
type Controller struct {
	validate *validator.Validate
	uni      *ut.UniversalTranslator
}

// New builds a Controller with the custom rules and fallback message catalogs registered.
func New() (*Controller, error) {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	rules := map[string]validator.Func{
		"rating_min": floatRule(func(f float64) bool { return f >= models.MinRating }),
		"rating_max": floatRule(func(f float64) bool { return f <= models.MaxRating }),
		"fee_min":    floatRule(func(f float64) bool { return f >= 0 }),
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, err
		}
	}

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, vi.New())
	enTrans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, enTrans); err != nil {
		return nil, err
	}
	viTrans, _ := uni.GetTranslator("vi")
	if err := vi_translations.RegisterDefaultTranslations(v, viTrans); err != nil {
		return nil, err
	}

	return &Controller{validate: v, uni: uni}, nil
}

// MustNew is like New but panics if the rules cannot be registered.
func MustNew() *Controller {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

func floatRule(ok func(float64) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		f, err := strconv.ParseFloat(strings.TrimSpace(fl.Field().String()), 64)
		return err == nil && ok(f)
	}
}

// Validate checks the raw fields. It returns nil when the form is valid.
func (c *Controller) Validate(in models.TeacherForm, tr Translator) models.FieldErrors {
	err := c.validate.Struct(fields{
		Name:     strings.TrimSpace(in.Name),
		Subject:  strings.TrimSpace(in.Subject),
		Location: strings.TrimSpace(in.Location),
		Rating:   strings.TrimSpace(in.Rating),
		Fee:      strings.TrimSpace(in.Fee),
	})
	if err == nil {
		return nil
	}

	out := models.FieldErrors{}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["form"] = err.Error()
		return out
	}
	for _, fe := range ve {
		out[fe.Field()] = c.message(fe, tr)
	}
	return out
}

func (c *Controller) message(fe validator.FieldError, tr Translator) string {
	if tr != nil {
		if suffix, ok := tagSuffix[fe.Tag()]; ok {
			key := "form." + fe.Field() + suffix
			if msg := tr.T(key); msg != key {
				return msg
			}
		}
	}
	lang := "en"
	if tr != nil {
		lang = tr.Language()
	}
	trans, _ := c.uni.GetTranslator(lang)
	return fe.Translate(trans)
}

// Submit clamps the rating as the input widget does, re-validates, and normalizes.
// The returned form carries the clamped values so a failed submission re-renders them.
func (c *Controller) Submit(in models.TeacherForm, tr Translator) (models.TeacherInput, models.TeacherForm, models.FieldErrors) {
	in.Rating = ClampRating(in.Rating)
	if errs := c.Validate(in, tr); errs != nil {
		return models.TeacherInput{}, in, errs
	}
	out, err := Normalize(in)
	if err != nil {
		return models.TeacherInput{}, in, models.FieldErrors{"form": err.Error()}
	}
	return out, in, nil
}

// ClampRating pins a numeric rating onto [1,5]. Non-numeric input is returned unchanged.
func ClampRating(raw string) string {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw
	}
	switch {
	case value > models.MaxRating:
		return strconv.FormatFloat(models.MaxRating, 'f', -1, 64)
	case value < models.MinRating:
		return strconv.FormatFloat(models.MinRating, 'f', -1, 64)
	}
	return raw
}

// Normalize converts validated raw fields into a record payload.
func Normalize(in models.TeacherForm) (models.TeacherInput, error) {
	rating, err := strconv.ParseFloat(strings.TrimSpace(in.Rating), 64)
	if err != nil {
		return models.TeacherInput{}, err
	}
	fee, err := strconv.ParseFloat(strings.TrimSpace(in.Fee), 64)
	if err != nil {
		return models.TeacherInput{}, err
	}
	return models.TeacherInput{
		Name:     strings.TrimSpace(in.Name),
		Subject:  strings.TrimSpace(in.Subject),
		Location: strings.TrimSpace(in.Location),
		Rating:   models.Rating(rating),
		Fee:      models.NewFee(fee),
	}, nil
}

// Prefill loads a record into the edit form. A fee that does not follow "$X.XX/hour" pre-fills empty.
func Prefill(t models.Teacher) models.TeacherForm {
	rating := ""
	if t.Rating != 0 {
		rating = t.Rating.String()
	}
	return models.TeacherForm{
		Name:     t.Name,
		Subject:  t.Subject,
		Location: t.Location,
		Rating:   rating,
		Fee:      t.Fee.FormValue(),
	}
}

// IsListedSubject reports whether value is one of the enumerated choices.
func IsListedSubject(value string) bool {
	for _, s := range Subjects {
		if s.Value == value {
			return true
		}
	}
	return false
}
