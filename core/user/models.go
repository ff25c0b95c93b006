package user

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
)

// Roles
const (
	RoleAdmin       = "ADMIN"
	RoleCourseAdmin = "COURSE_ADMIN"
	RoleUser        = "USER"
)

var (
	AllRoles = []string{RoleAdmin, RoleCourseAdmin, RoleUser}

	rolePriorities = map[string]int{
		RoleAdmin:       30,
		RoleCourseAdmin: 20,
		RoleUser:        10,
	}

	Roles = []Role{
		{Name: "User", Value: RoleUser},
		{Name: "Course Admin", Value: RoleCourseAdmin},
		{Name: "Admin", Value: RoleAdmin},
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

func IsValidRole(role string) bool {
	_, ok := rolePriorities[role]
	return ok
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Image            string    `json:"image"`
	Role             string    `json:"role"`
	IsActive         *bool     `json:"is_active"`
	CompletedCourses []string  `json:"completed_courses"`
	OngoingCourses   []string  `json:"ongoing_courses"`
	PasswordHash     []byte    `json:"-"`
	CreatedAt        time.Time `json:"created_at"` // UTC
	UpdatedAt        time.Time `json:"updated_at"` // UTC
	LastLogin        time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) SetActive(active bool) {
	u.IsActive = &active
}

func (u User) Active() bool {
	return u.IsActive == nil || *u.IsActive
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManageCourses reports whether the user may write course content and cohorts.
func (u User) CanManageCourses() bool {
	return u.Role == RoleAdmin || u.Role == RoleCourseAdmin
}

func (u User) HasCompletedCourse(courseID string) bool {
	return core.ContainsString(u.CompletedCourses, courseID)
}

// Summary is the public projection of a User embedded in other resources.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Image: u.Image}
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Image           string `json:"image" validate:"omitempty,url"`
	Role            string `json:"role" validate:"omitempty,role"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Image = core.CleanString(nu.Image)
	nu.Role = core.CleanString(nu.Role)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string `json:"name"`
	Email           string `json:"email" validate:"omitempty,email"`
	Image           string `json:"image" validate:"omitempty,url"`
	Role            string `json:"role" validate:"omitempty,role"`
	IsActive        *bool  `json:"is_active"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc Service) error {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if img := core.CleanString(uu.Image); img != "" {
		uu.Image = img
	} else {
		uu.Image = origUsr.Image
	}

	if role := core.CleanString(uu.Role); role != "" {
		uu.Role = role
	} else {
		uu.Role = origUsr.Role
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uu.Email, origUsr)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

type QueryFilter struct {
	Search   string   `query:"search"`
	Roles    []string `query:"role"`
	IsActive string   `query:"is_active"`

	isActive *bool
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	if b, err := strconv.ParseBool(core.CleanString(qf.IsActive)); err == nil {
		qf.isActive = &b
	}
}

// Active returns the parsed `is_active` filter; nil means no filtering.
func (qf *QueryFilter) Active() *bool { return qf.isActive }

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && len(qf.Roles) == 0 && qf.isActive == nil
}
