package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/abstract-tutoring/card-crafter/models"
)

var validate = validator.New()

// Submission is one post of the create form, before it becomes a FlashcardGroup.
type Submission struct {
	Group       string      `validate:"required"`
	Description string
	Image       string
	Terms       []TermInput
}

type TermInput struct {
	Term       string `validate:"required"`
	Definition string `validate:"required"`
	Image      string
}

// FieldErrors maps a form field key ("group", "description", "term-0",
// "definition-0", ...) to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Has(key string) bool {
	_, ok := fe[key]
	return ok
}

func (fe FieldErrors) Get(key string) string {
	return fe[key]
}

// ValidateSubmission checks the required fields. The description is only
// required when the group does not exist yet, since merges keep the old one.
func ValidateSubmission(sub Submission, existing bool) FieldErrors {
	errs := FieldErrors{}

	collect(errs, validate.Struct(sub), func(field string) string {
		if field == "Group" {
			return "group"
		}
		return ""
	})

	if !existing && sub.Description == "" {
		errs["description"] = "Description is required"
	}

	for i, t := range sub.Terms {
		collect(errs, validate.Struct(t), func(field string) string {
			switch field {
			case "Term":
				return fmt.Sprintf("term-%d", i)
			case "Definition":
				return fmt.Sprintf("definition-%d", i)
			}
			return ""
		})
	}

	return errs
}

func collect(errs FieldErrors, err error, key func(field string) string) {
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["form"] = err.Error()
		return
	}
	for _, fe := range verrs {
		k := key(fe.Field())
		if k == "" {
			continue
		}
		errs[k] = fe.Field() + " is required"
	}
}

// ToGroup converts a validated submission into the stored shape.
func (s Submission) ToGroup() models.FlashcardGroup {
	g := models.FlashcardGroup{
		Group:       s.Group,
		Description: s.Description,
		Image:       s.Image,
		Terms:       make([]models.Term, 0, len(s.Terms)),
	}
	for _, t := range s.Terms {
		g.Terms = append(g.Terms, models.Term{Term: t.Term, Definition: t.Definition, Image: t.Image})
	}
	return g
}
