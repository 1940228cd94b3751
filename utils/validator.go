package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"portail-citoyen-backend/models"

	"github.com/go-playground/validator/v10"
)

var phoneRegex = regexp.MustCompile(`^(\+33|0)[1-9](\d{2}){4}$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator retourne l'instance partagée de go-playground/validator,
// configurée avec les noms JSON et la règle "telephone".
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("telephone", func(fl validator.FieldLevel) bool {
			return IsPhone(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// IsPhone valide un numéro de téléphone français (espaces, points et tirets tolérés)
func IsPhone(phone string) bool {
	phone = strings.NewReplacer(" ", "", ".", "", "-", "").Replace(strings.TrimSpace(phone))
	return phoneRegex.MatchString(phone)
}

// ValidateStruct valide une requête et retourne les erreurs par champ, en français.
// Une slice vide signifie que la requête est valide.
func ValidateStruct(s interface{}) []models.FieldError {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []models.FieldError{{Champ: "", Message: err.Error()}}
	}

	out := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, models.FieldError{Champ: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	isText := fe.Kind() == reflect.String
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Le champ %s est requis", field)
	case "email":
		return "Format d'email invalide"
	case "telephone":
		return "Format de téléphone invalide"
	case "url":
		return fmt.Sprintf("Le champ %s doit être une URL valide", field)
	case "oneof":
		return fmt.Sprintf("Le champ %s doit valoir l'une des valeurs : %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "eqfield":
		if field == "confirmation" {
			return "Les mots de passe ne correspondent pas"
		}
		return fmt.Sprintf("Le champ %s doit être identique à %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("Le champ %s doit être une date au format AAAA-MM-JJ", field)
	case "numeric":
		return fmt.Sprintf("Le champ %s doit être numérique", field)
	case "len":
		return fmt.Sprintf("Le champ %s doit contenir exactement %s caractères", field, fe.Param())
	case "min":
		switch {
		case isText:
			return fmt.Sprintf("Le champ %s doit contenir au moins %s caractères", field, fe.Param())
		case isList:
			return fmt.Sprintf("Le champ %s doit contenir au moins %s éléments", field, fe.Param())
		}
		return fmt.Sprintf("Le champ %s doit être supérieur ou égal à %s", field, fe.Param())
	case "max":
		switch {
		case isText:
			return fmt.Sprintf("Le champ %s doit contenir au plus %s caractères", field, fe.Param())
		case isList:
			return fmt.Sprintf("Le champ %s doit contenir au plus %s éléments", field, fe.Param())
		}
		return fmt.Sprintf("Le champ %s doit être inférieur ou égal à %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("Le champ %s doit être supérieur à %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("Le champ %s doit être supérieur ou égal à %s", field, fe.Param())
	}
	return fmt.Sprintf("Le champ %s est invalide", field)
}
