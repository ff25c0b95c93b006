package core

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lessonPayload struct {
	Title    string   `json:"title" validate:"required,max=5"`
	URL      string   `json:"url" validate:"omitempty,url"`
	Duration int      `json:"duration_seconds" validate:"gte=0"`
	Answers  []string `json:"answers" validate:"min=2"`
	Pwd      string   `json:"password"`
	Confirm  string   `json:"password_confirm" validate:"required_with=Pwd,eqfield=Pwd"`
}

func TestTranslateFieldErrors(t *testing.T) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	InitValidators(validate, translator)

	tests := []struct {
		name    string
		payload lessonPayload
		want    map[string]string
	}{
		{
			name:    "missing title",
			payload: lessonPayload{Answers: []string{"a", "b"}},
			want:    map[string]string{"title": requiredText},
		},
		{
			name:    "bounds",
			payload: lessonPayload{Title: "too long", Duration: -1, Answers: []string{"a"}},
			want: map[string]string{
				"title":            "title must be at most 5 characters long",
				"duration_seconds": "duration_seconds must be 0 or greater",
				"answers":          "at least 2 answers are required",
			},
		},
		{
			name:    "bad url",
			payload: lessonPayload{Title: "ok", URL: "not a url", Answers: []string{"a", "b"}},
			want:    map[string]string{"url": "url must be a valid URL"},
		},
		{
			name:    "password confirmation",
			payload: lessonPayload{Title: "ok", Answers: []string{"a", "b"}, Pwd: "x"},
			want:    map[string]string{"password_confirm": requiredText},
		},
		{
			name:    "password mismatch",
			payload: lessonPayload{Title: "ok", Answers: []string{"a", "b"}, Pwd: "x", Confirm: "y"},
			want:    map[string]string{"password_confirm": "passwords do not match"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.payload)
			require.Error(t, err)
			var vErrs validator.ValidationErrors
			require.True(t, errors.As(err, &vErrs))
			assert.Equal(t, tt.want, TranslateFieldErrors(vErrs, translator))
		})
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validate.Struct(lessonPayload{Title: "ok", Answers: []string{"a", "b"}}))
	})
}
