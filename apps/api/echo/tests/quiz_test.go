package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/quiz"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
	testutil "github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/tests"
)

func Test_quizApi_submit(t *testing.T) {
	app := setup(t)
	jane := app.createUser(t, "Jane Doe", "jane@example.com", user.RoleUser)
	crs := testutil.CreateCourse(t, app.courseRepo, "Data Analytics")
	week := testutil.CreateWeek(t, app.courseRepo, crs.ID, "Week 1", true)
	mod := testutil.CreateModule(t, app.courseRepo, week.ID, "Excel basics")
	q1 := testutil.CreateQuiz(t, app.courseRepo, mod.ID, "2 + 2?", 1, "3", "4")
	q2 := testutil.CreateQuiz(t, app.courseRepo, mod.ID, "Capital of France?", 0, "Paris", "Lyon")

	janeToken := app.token(t, jane)
	path := "/v1/quizzes/" + q1.ID + "/answers"

	runHTTPTests(t, app, []httpTest{
		{
			name:     "anonymous",
			method:   http.MethodPost,
			path:     path,
			body:     marchallObj(t, quiz.SubmitInput{AnswerID: q1.Answers[1].ID}),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "missing answer",
			method:   http.MethodPost,
			path:     path,
			body:     []byte(`{}`),
			token:    janeToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"answer_id": "this field is required"}`),
		},
		{
			name:     "answer of another quiz",
			method:   http.MethodPost,
			path:     path,
			body:     marchallObj(t, quiz.SubmitInput{AnswerID: q2.Answers[0].ID}),
			token:    janeToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"answer_id": "answer does not belong to this quiz"}`),
		},
		{
			name:     "unknown quiz",
			method:   http.MethodPost,
			path:     "/v1/quizzes/nope/answers",
			body:     marchallObj(t, quiz.SubmitInput{AnswerID: q1.Answers[1].ID}),
			token:    janeToken,
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "quiz not found"}`),
		},
		{
			name:     "correct answer",
			method:   http.MethodPost,
			path:     path,
			body:     marchallObj(t, quiz.SubmitInput{AnswerID: q1.Answers[1].ID}),
			token:    janeToken,
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, quiz.Result{
				QuizID:        q1.ID,
				AnswerID:      q1.Answers[1].ID,
				Correct:       true,
				PointsAwarded: 1,
				TotalPoints:   1,
			}),
		},
		{
			name:     "second attempt",
			method:   http.MethodPost,
			path:     path,
			body:     marchallObj(t, quiz.SubmitInput{AnswerID: q1.Answers[0].ID}),
			token:    janeToken,
			wantCode: http.StatusForbidden,
			wantData: []byte(`{"error": "you have already answered this quiz"}`),
		},
		{
			name:     "wrong answer",
			method:   http.MethodPost,
			path:     "/v1/quizzes/" + q2.ID + "/answers",
			body:     marchallObj(t, quiz.SubmitInput{AnswerID: q2.Answers[1].ID}),
			token:    janeToken,
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, quiz.Result{QuizID: q2.ID, AnswerID: q2.Answers[1].ID}),
		},
	})

	ctx := context.Background()
	points, err := app.quizRepo.Points(ctx, jane.ID, q1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, points)
	points, err = app.quizRepo.Points(ctx, jane.ID, q2.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, points)
}

func Test_quizApi_submitForUser(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "Ann Admin", "admin@example.com", user.RoleAdmin)
	editor := app.createUser(t, "Ed Itor", "ed@example.com", user.RoleCourseAdmin)
	jane := app.createUser(t, "Jane Doe", "jane@example.com", user.RoleUser)
	crs := testutil.CreateCourse(t, app.courseRepo, "Data Analytics")
	week := testutil.CreateWeek(t, app.courseRepo, crs.ID, "Week 1", true)
	mod := testutil.CreateModule(t, app.courseRepo, week.ID, "Excel basics")
	q := testutil.CreateQuiz(t, app.courseRepo, mod.ID, "2 + 2?", 1, "3", "4")

	adminToken := app.token(t, admin)
	path := "/v1/admin/quizzes/" + q.ID + "/answers"
	body := marchallObj(t, quiz.SubmitForUserInput{UserID: jane.ID, AnswerID: q.Answers[1].ID})

	runHTTPTests(t, app, []httpTest{
		{
			name:     "learner",
			method:   http.MethodPost,
			path:     path,
			body:     body,
			token:    app.token(t, jane),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "course admin",
			method:   http.MethodPost,
			path:     path,
			body:     body,
			token:    app.token(t, editor),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "unknown user",
			method:   http.MethodPost,
			path:     path,
			body:     marchallObj(t, quiz.SubmitForUserInput{UserID: "ghost", AnswerID: q.Answers[1].ID}),
			token:    adminToken,
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "user not found"}`),
		},
		{
			name:     "correct answer",
			method:   http.MethodPost,
			path:     path,
			body:     body,
			token:    adminToken,
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, quiz.Result{
				QuizID:        q.ID,
				AnswerID:      q.Answers[1].ID,
				Correct:       true,
				PointsAwarded: 10,
				TotalPoints:   10,
			}),
		},
		{
			name:     "user already answered",
			method:   http.MethodPost,
			path:     path,
			body:     body,
			token:    adminToken,
			wantCode: http.StatusForbidden,
			wantData: []byte(`{"error": "you have already answered this quiz"}`),
		},
		{
			name:     "self-serve after admin submission",
			method:   http.MethodPost,
			path:     "/v1/quizzes/" + q.ID + "/answers",
			body:     marchallObj(t, quiz.SubmitInput{AnswerID: q.Answers[1].ID}),
			token:    app.token(t, jane),
			wantCode: http.StatusForbidden,
		},
	})

	points, err := app.quizRepo.Points(context.Background(), jane.ID, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, points)
}
