package gormdb

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/course"
)

type courseRepository struct {
	transactor
	db *gorm.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *gorm.DB) *courseRepository {
	return &courseRepository{transactor: transactor{db: db}, db: db}
}

// Courses

func boilCourse(c course.Course) *courseRow {
	return &courseRow{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Image:       null.NewString(c.Image, c.Image != ""),
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
}

func unboilCourse(row *courseRow) course.Course {
	return course.Course{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Image:       row.Image.String,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

func (repo courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	c.ID = newID()
	row := boilCourse(c)
	if err := conn(ctx, repo.db).Create(row).Error; err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return unboilCourse(row), nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	row := boilCourse(c)
	res := conn(ctx, repo.db).Model(row).Select("*").Omit("id", "created_at").Updates(row)
	if err := checkAffected(res, course.ErrCourseNotFound, "updating course"); err != nil {
		return course.Course{}, err
	}
	return unboilCourse(row), nil
}

func (repo courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := conn(ctx, repo.db).Where("id = ?", id).Take(&row).Error; err != nil {
		return course.Course{}, trapNotFound(err, course.ErrCourseNotFound, "finding course")
	}
	return unboilCourse(&row), nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter, ordering []core.DBOrdering) ([]course.Course, error) {
	q := conn(ctx, repo.db).Model(&courseRow{})
	if filter != nil && filter.Search != "" {
		val := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", val, val)
	}

	var rows []courseRow
	if err := q.Order(orderClause(ordering, "created_at DESC, id")).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for i := range rows {
		courses = append(courses, unboilCourse(&rows[i]))
	}
	return courses, nil
}

func (repo courseRepository) DeleteCourse(ctx context.Context, id string) error {
	res := conn(ctx, repo.db).Where("id = ?", id).Delete(&courseRow{})
	return checkAffected(res, course.ErrCourseNotFound, "deleting course")
}

// Weeks

func boilWeek(w course.Week) *weekRow {
	return &weekRow{
		ID:          w.ID,
		CourseID:    w.CourseID,
		Title:       w.Title,
		IsPublished: w.IsPublished,
		CreatedAt:   w.CreatedAt.UTC(),
		UpdatedAt:   w.UpdatedAt.UTC(),
	}
}

func unboilWeek(row *weekRow) course.Week {
	return course.Week{
		ID:          row.ID,
		CourseID:    row.CourseID,
		Title:       row.Title,
		IsPublished: row.IsPublished,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

func (repo courseRepository) CreateWeek(ctx context.Context, w course.Week) (course.Week, error) {
	w.ID = newID()
	row := boilWeek(w)
	if err := conn(ctx, repo.db).Create(row).Error; err != nil {
		return course.Week{}, errors.Wrap(err, "inserting course week")
	}
	return unboilWeek(row), nil
}

func (repo courseRepository) UpdateWeek(ctx context.Context, w course.Week) (course.Week, error) {
	row := boilWeek(w)
	res := conn(ctx, repo.db).Model(row).Select("*").Omit("id", "course_id", "created_at").Updates(row)
	if err := checkAffected(res, course.ErrWeekNotFound, "updating course week"); err != nil {
		return course.Week{}, err
	}
	return unboilWeek(row), nil
}

func (repo courseRepository) GetWeek(ctx context.Context, id string) (course.Week, error) {
	var row weekRow
	if err := conn(ctx, repo.db).Where("id = ?", id).Take(&row).Error; err != nil {
		return course.Week{}, trapNotFound(err, course.ErrWeekNotFound, "finding course week")
	}
	return unboilWeek(&row), nil
}

func (repo courseRepository) QueryWeeks(ctx context.Context, courseID string, publishedOnly bool) ([]course.Week, error) {
	q := conn(ctx, repo.db).Where("course_id = ?", courseID)
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	var rows []weekRow
	if err := q.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying course weeks")
	}
	weeks := make([]course.Week, 0, len(rows))
	for i := range rows {
		weeks = append(weeks, unboilWeek(&rows[i]))
	}
	return weeks, nil
}

func (repo courseRepository) OldestUnpublishedWeek(ctx context.Context, courseID string) (course.Week, error) {
	var row weekRow
	err := conn(ctx, repo.db).
		Where("course_id = ? AND is_published = ?", courseID, false).
		Order("created_at, id").
		Take(&row).Error
	if err != nil {
		return course.Week{}, trapNotFound(err, course.ErrWeekNotFound, "finding oldest unpublished week")
	}
	return unboilWeek(&row), nil
}

func (repo courseRepository) DeleteWeek(ctx context.Context, id string) error {
	res := conn(ctx, repo.db).Where("id = ?", id).Delete(&weekRow{})
	return checkAffected(res, course.ErrWeekNotFound, "deleting course week")
}

// Modules

func boilModule(m course.Module) *moduleRow {
	return &moduleRow{
		ID:           m.ID,
		CourseWeekID: m.CourseWeekID,
		Title:        m.Title,
		Description:  m.Description,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func unboilModule(row *moduleRow) course.Module {
	return course.Module{
		ID:           row.ID,
		CourseWeekID: row.CourseWeekID,
		Title:        row.Title,
		Description:  row.Description,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

func (repo courseRepository) CreateModule(ctx context.Context, m course.Module) (course.Module, error) {
	m.ID = newID()
	row := boilModule(m)
	if err := conn(ctx, repo.db).Create(row).Error; err != nil {
		return course.Module{}, errors.Wrap(err, "inserting module")
	}
	return unboilModule(row), nil
}

func (repo courseRepository) UpdateModule(ctx context.Context, m course.Module) (course.Module, error) {
	row := boilModule(m)
	res := conn(ctx, repo.db).Model(row).Select("*").Omit("id", "course_week_id", "created_at").Updates(row)
	if err := checkAffected(res, course.ErrModuleNotFound, "updating module"); err != nil {
		return course.Module{}, err
	}
	return unboilModule(row), nil
}

func (repo courseRepository) GetModule(ctx context.Context, id string) (course.Module, error) {
	var row moduleRow
	if err := conn(ctx, repo.db).Where("id = ?", id).Take(&row).Error; err != nil {
		return course.Module{}, trapNotFound(err, course.ErrModuleNotFound, "finding module")
	}
	return unboilModule(&row), nil
}

func (repo courseRepository) QueryModules(ctx context.Context, weekID string) ([]course.Module, error) {
	var rows []moduleRow
	if err := conn(ctx, repo.db).Where("course_week_id = ?", weekID).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying modules")
	}
	modules := make([]course.Module, 0, len(rows))
	for i := range rows {
		modules = append(modules, unboilModule(&rows[i]))
	}
	return modules, nil
}

func (repo courseRepository) DeleteModule(ctx context.Context, id string) error {
	res := conn(ctx, repo.db).Where("id = ?", id).Delete(&moduleRow{})
	return checkAffected(res, course.ErrModuleNotFound, "deleting module")
}

// Videos

func boilVideo(v course.Video) *videoRow {
	return &videoRow{
		ID:              v.ID,
		ModuleID:        v.ModuleID,
		Title:           v.Title,
		URL:             v.URL,
		DurationSeconds: v.DurationSeconds,
		CreatedAt:       v.CreatedAt.UTC(),
		UpdatedAt:       v.UpdatedAt.UTC(),
	}
}

func unboilVideo(row *videoRow) course.Video {
	return course.Video{
		ID:              row.ID,
		ModuleID:        row.ModuleID,
		Title:           row.Title,
		URL:             row.URL,
		DurationSeconds: row.DurationSeconds,
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}
}

func (repo courseRepository) CreateVideo(ctx context.Context, v course.Video) (course.Video, error) {
	v.ID = newID()
	row := boilVideo(v)
	if err := conn(ctx, repo.db).Create(row).Error; err != nil {
		return course.Video{}, errors.Wrap(err, "inserting video")
	}
	return unboilVideo(row), nil
}

func (repo courseRepository) UpdateVideo(ctx context.Context, v course.Video) (course.Video, error) {
	row := boilVideo(v)
	res := conn(ctx, repo.db).Model(row).Select("*").Omit("id", "module_id", "created_at").Updates(row)
	if err := checkAffected(res, course.ErrVideoNotFound, "updating video"); err != nil {
		return course.Video{}, err
	}
	return unboilVideo(row), nil
}

func (repo courseRepository) GetVideo(ctx context.Context, id string) (course.Video, error) {
	var row videoRow
	if err := conn(ctx, repo.db).Where("id = ?", id).Take(&row).Error; err != nil {
		return course.Video{}, trapNotFound(err, course.ErrVideoNotFound, "finding video")
	}
	return unboilVideo(&row), nil
}

func (repo courseRepository) QueryVideos(ctx context.Context, moduleID string) ([]course.Video, error) {
	var rows []videoRow
	if err := conn(ctx, repo.db).Where("module_id = ?", moduleID).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying videos")
	}
	videos := make([]course.Video, 0, len(rows))
	for i := range rows {
		videos = append(videos, unboilVideo(&rows[i]))
	}
	return videos, nil
}

func (repo courseRepository) VideoCourseID(ctx context.Context, videoID string) (string, error) {
	var courseIDs []string
	err := conn(ctx, repo.db).
		Table("videos AS v").
		Joins("JOIN modules m ON m.id = v.module_id").
		Joins("JOIN course_weeks w ON w.id = m.course_week_id").
		Where("v.id = ?", videoID).
		Limit(1).
		Pluck("w.course_id", &courseIDs).Error
	if err != nil {
		return "", errors.Wrap(err, "finding video course")
	}
	if len(courseIDs) == 0 {
		return "", course.ErrVideoNotFound
	}
	return courseIDs[0], nil
}

func (repo courseRepository) DeleteVideo(ctx context.Context, id string) error {
	res := conn(ctx, repo.db).Where("id = ?", id).Delete(&videoRow{})
	return checkAffected(res, course.ErrVideoNotFound, "deleting video")
}

// Quizzes

func boilQuiz(q course.Quiz) (*quizRow, []quizAnswerRow) {
	row := &quizRow{
		ID:        q.ID,
		ModuleID:  q.ModuleID,
		Question:  q.Question,
		CreatedAt: q.CreatedAt.UTC(),
		UpdatedAt: q.UpdatedAt.UTC(),
	}
	answers := make([]quizAnswerRow, 0, len(q.Answers))
	for i, a := range q.Answers {
		answers = append(answers, quizAnswerRow{
			ID:        a.ID,
			QuizID:    q.ID,
			Text:      a.Text,
			IsCorrect: a.IsCorrect,
			Position:  i,
		})
	}
	return row, answers
}

func unboilQuiz(row *quizRow, answers []quizAnswerRow) course.Quiz {
	q := course.Quiz{
		ID:        row.ID,
		ModuleID:  row.ModuleID,
		Question:  row.Question,
		Answers:   make([]course.Answer, 0, len(answers)),
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	for _, a := range answers {
		q.Answers = append(q.Answers, course.Answer{
			ID:        a.ID,
			QuizID:    a.QuizID,
			Text:      a.Text,
			IsCorrect: a.IsCorrect,
		})
	}
	return q
}

func assignAnswerIDs(q *course.Quiz) {
	for i := range q.Answers {
		q.Answers[i].ID = newID()
		q.Answers[i].QuizID = q.ID
	}
}

// CreateQuiz must run within a transaction: the quiz & its answers are inserted separately.
func (repo courseRepository) CreateQuiz(ctx context.Context, q course.Quiz) (course.Quiz, error) {
	q.ID = newID()
	assignAnswerIDs(&q)
	row, answers := boilQuiz(q)

	db := conn(ctx, repo.db)
	if err := db.Create(row).Error; err != nil {
		return course.Quiz{}, errors.Wrap(err, "inserting quiz")
	}
	if len(answers) > 0 {
		if err := db.Create(&answers).Error; err != nil {
			return course.Quiz{}, errors.Wrap(err, "inserting quiz answers")
		}
	}
	return unboilQuiz(row, answers), nil
}

// UpdateQuiz replaces the answers of the quiz. Like CreateQuiz it must run within a transaction.
func (repo courseRepository) UpdateQuiz(ctx context.Context, q course.Quiz) (course.Quiz, error) {
	assignAnswerIDs(&q)
	row, answers := boilQuiz(q)

	db := conn(ctx, repo.db)
	res := db.Model(row).Select("question", "updated_at").Updates(row)
	if err := checkAffected(res, course.ErrQuizNotFound, "updating quiz"); err != nil {
		return course.Quiz{}, err
	}
	if err := db.Where("quiz_id = ?", q.ID).Delete(&quizAnswerRow{}).Error; err != nil {
		return course.Quiz{}, errors.Wrap(err, "deleting quiz answers")
	}
	if len(answers) > 0 {
		if err := db.Create(&answers).Error; err != nil {
			return course.Quiz{}, errors.Wrap(err, "inserting quiz answers")
		}
	}
	return repo.GetQuiz(ctx, q.ID)
}

func (repo courseRepository) GetQuiz(ctx context.Context, id string) (course.Quiz, error) {
	db := conn(ctx, repo.db)
	var row quizRow
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		return course.Quiz{}, trapNotFound(err, course.ErrQuizNotFound, "finding quiz")
	}
	var answers []quizAnswerRow
	if err := db.Where("quiz_id = ?", id).Order("position, id").Find(&answers).Error; err != nil {
		return course.Quiz{}, errors.Wrap(err, "finding quiz answers")
	}
	return unboilQuiz(&row, answers), nil
}

func (repo courseRepository) QueryQuizzes(ctx context.Context, moduleID string) ([]course.Quiz, error) {
	db := conn(ctx, repo.db)
	var rows []quizRow
	if err := db.Where("module_id = ?", moduleID).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying quizzes")
	}
	quizzes := make([]course.Quiz, 0, len(rows))
	if len(rows) == 0 {
		return quizzes, nil
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	var answers []quizAnswerRow
	if err := db.Where("quiz_id IN ?", ids).Order("quiz_id, position, id").Find(&answers).Error; err != nil {
		return nil, errors.Wrap(err, "querying quiz answers")
	}
	byQuiz := make(map[string][]quizAnswerRow, len(rows))
	for _, a := range answers {
		byQuiz[a.QuizID] = append(byQuiz[a.QuizID], a)
	}
	for i := range rows {
		quizzes = append(quizzes, unboilQuiz(&rows[i], byQuiz[rows[i].ID]))
	}
	return quizzes, nil
}

func (repo courseRepository) QuizHasSubmissions(ctx context.Context, quizID string) (bool, error) {
	var count int64
	if err := conn(ctx, repo.db).Model(&userQuizAnswerRow{}).Where("quiz_id = ?", quizID).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "counting quiz submissions")
	}
	return count > 0, nil
}

func (repo courseRepository) DeleteQuiz(ctx context.Context, id string) error {
	res := conn(ctx, repo.db).Where("id = ?", id).Delete(&quizRow{})
	return checkAffected(res, course.ErrQuizNotFound, "deleting quiz")
}
