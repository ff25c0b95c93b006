package gormdb

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/storage/database"
)

type userRepository struct {
	db *gorm.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (repo userRepository) boil(usr user.User) *userRow {
	return &userRow{
		ID:               usr.ID,
		Name:             usr.Name,
		Email:            usr.Email,
		Image:            null.NewString(usr.Image, usr.Image != ""),
		Role:             usr.Role,
		IsActive:         usr.Active(),
		PasswordHash:     null.NewBytes(usr.PasswordHash, len(usr.PasswordHash) > 0),
		CompletedCourses: nonNil(usr.CompletedCourses),
		OngoingCourses:   nonNil(usr.OngoingCourses),
		CreatedAt:        usr.CreatedAt.UTC(),
		UpdatedAt:        usr.UpdatedAt.UTC(),
		LastLogin:        null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) unboil(row *userRow) user.User {
	if row == nil {
		return user.User{}
	}
	usr := user.User{
		ID:               row.ID,
		Name:             row.Name,
		Email:            row.Email,
		Image:            row.Image.String,
		Role:             row.Role,
		CompletedCourses: nonNil(row.CompletedCourses),
		OngoingCourses:   nonNil(row.OngoingCourses),
		PasswordHash:     row.PasswordHash.Bytes,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
	if row.LastLogin.Valid {
		usr.LastLogin = row.LastLogin.Time.UTC()
	}
	usr.SetActive(row.IsActive)
	return usr
}

func (repo userRepository) unboilSlice(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for i := range rows {
		users = append(users, repo.unboil(&rows[i]))
	}
	return users
}

// trapWriteErr maps the email unique constraint violation to a validation error
func (repo userRepository) trapWriteErr(err error, msg string) error {
	if database.IsUniqueViolation(err) {
		return core.NewValidationError(user.ErrEmailExists, core.FieldError{Field: "email", Error: user.ErrEmailExists.Error()})
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...string) error {
	q := conn(ctx, repo.db).Model(&userRow{}).Where("email = ?", strings.ToLower(email))
	if len(excludedIDs) > 0 {
		q = q.Where("id NOT IN ?", excludedIDs)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = newID()
	row := repo.boil(usr)
	if err := conn(ctx, repo.db).Create(row).Error; err != nil {
		return user.User{}, repo.trapWriteErr(err, "inserting user")
	}
	return repo.unboil(row), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	q := conn(ctx, repo.db).Model(&userRow{})

	if filter != nil {
		// users with Name or Email matching the search keyword
		if filter.Search != "" {
			val := "%" + strings.ToLower(filter.Search) + "%"
			q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", val, val)
		}
		if len(filter.Roles) > 0 {
			q = q.Where("role IN ?", filter.Roles)
		}
		if active := filter.Active(); active != nil {
			q = q.Where("is_active = ?", *active)
		}
	}

	var rows []userRow
	if err := q.Order(orderClause(ordering, "created_at DESC, id")).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.unboilSlice(rows), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var row userRow
	if err := conn(ctx, repo.db).Where("id = ?", id).Take(&row).Error; err != nil {
		return user.User{}, trapNotFound(err, user.ErrNotFound, "finding user by ID")
	}
	return repo.unboil(&row), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	if err := conn(ctx, repo.db).Where("email = ?", strings.ToLower(email)).Take(&row).Error; err != nil {
		return user.User{}, trapNotFound(err, user.ErrNotFound, "finding user by email")
	}
	return repo.unboil(&row), nil
}

func (repo userRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]user.User, error) {
	if len(ids) == 0 {
		return []user.User{}, nil
	}
	var rows []userRow
	if err := conn(ctx, repo.db).Where("id IN ?", ids).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "finding users by IDs")
	}
	return repo.unboilSlice(rows), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := repo.boil(usr)
	res := conn(ctx, repo.db).Model(row).Select("*").Omit("id", "created_at", "completed_courses", "ongoing_courses").Updates(row)
	if res.Error != nil {
		return user.User{}, repo.trapWriteErr(res.Error, "updating user")
	}
	if res.RowsAffected == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.unboil(row), nil
}

func (repo userRepository) UpdateCourses(ctx context.Context, id string, update func(usr *user.User) bool) (user.User, error) {
	var usr user.User
	err := transactor{db: repo.db}.WithinTx(ctx, func(ctx context.Context) error {
		var row userRow
		err := conn(ctx, repo.db).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&row).Error
		if err != nil {
			return trapNotFound(err, user.ErrNotFound, "locking user")
		}
		usr = repo.unboil(&row)
		if !update(&usr) {
			return nil
		}
		upd := repo.boil(usr)
		err = conn(ctx, repo.db).Model(upd).Select("completed_courses", "ongoing_courses", "updated_at").Updates(upd).Error
		return errors.Wrap(err, "updating user courses")
	})
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := conn(ctx, repo.db).Where("id IN ?", ids).Delete(&userRow{}).Error; err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
