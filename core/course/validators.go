package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
)

var (
	oneCorrectTag  = "onecorrect"
	oneCorrectText = "exactly one answer must be correct"
)

// InitValidators registers the course validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(quizStructValidation, QuizInput{})
	core.RegisterCustomTranslation(validate, translator, oneCorrectTag, oneCorrectText)
}

func quizStructValidation(sl validator.StructLevel) {
	in, ok := sl.Current().Interface().(QuizInput)
	if !ok || len(in.Answers) == 0 {
		return
	}
	var correct int
	for _, a := range in.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		sl.ReportError(in.Answers, "answers", "Answers", oneCorrectTag, "")
	}
}
