package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")

	errInvalidValue = "invalid value"
)

type (
	Repository interface {
		// CheckEmailUniqueness returns ErrEmailExists when another user (not in excludedIDs) has the email.
		CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name or User.Email.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetUsersByIDs(ctx context.Context, ids []string) ([]User, error)
		// UpdateUser saves every field but the course lists, which only UpdateCourses writes.
		UpdateUser(ctx context.Context, usr User) (User, error)
		// UpdateCourses locks the user for the duration of update & saves the course lists when it returns true.
		UpdateCourses(ctx context.Context, id string, update func(usr *User) bool) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		CheckUniqueness(ctx context.Context, email string, exclUsers ...User) error
		Create(ctx context.Context, nu NewUser) (User, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Update(ctx context.Context, id string, uu UpdateUser) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		Delete(ctx context.Context, ids ...string) error
		StartCourse(ctx context.Context, userID, courseID string) (User, error)
		CompleteCourse(ctx context.Context, userID, courseID string) (User, error)
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, data ResetUserPassword) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{repo: repo, mailSvc: mailSvc, conf: conf}
}

func (svc *service) CheckUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	ids := make([]string, 0, len(exclUsers))
	for _, u := range exclUsers {
		ids = append(ids, u.ID)
	}
	if err := svc.repo.CheckEmailUniqueness(ctx, email, ids...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	role := nu.Role
	if role == "" {
		role = RoleUser
	}
	usr := User{
		Name:             nu.Name,
		Email:            nu.Email,
		Image:            nu.Image,
		Role:             role,
		CompletedCourses: []string{},
		OngoingCourses:   []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	usr.SetActive(true)
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	ordering = core.AllowedOrderings(ordering, "name", "email", "role", "created_at", "last_login")
	return svc.repo.QueryUsers(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.Name = uu.Name
	usr.Email = uu.Email
	usr.Image = uu.Image
	usr.Role = uu.Role
	if uu.IsActive != nil {
		usr.SetActive(*uu.IsActive)
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

// StartCourse adds courseID to the user's ongoing courses unless it is already ongoing or completed.
func (svc *service) StartCourse(ctx context.Context, userID, courseID string) (User, error) {
	return svc.repo.UpdateCourses(ctx, userID, func(usr *User) bool {
		if usr.HasCompletedCourse(courseID) || core.ContainsString(usr.OngoingCourses, courseID) {
			return false
		}
		usr.OngoingCourses = append(usr.OngoingCourses, courseID)
		usr.UpdatedAt = time.Now().UTC()
		return true
	})
}

// CompleteCourse moves courseID from the user's ongoing courses to the completed ones.
func (svc *service) CompleteCourse(ctx context.Context, userID, courseID string) (User, error) {
	return svc.repo.UpdateCourses(ctx, userID, func(usr *User) bool {
		usr.OngoingCourses = core.RemoveString(usr.OngoingCourses, courseID)
		if !usr.HasCompletedCourse(courseID) {
			usr.CompletedCourses = append(usr.CompletedCourses, courseID)
		}
		usr.UpdatedAt = time.Now().UTC()
		return true
	})
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.Active() {
		return ErrNotFound
	}
	msg, err := svc.passwordResetMessage(usr)
	if err != nil {
		return err
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

func (svc *service) passwordResetMessage(usr User) (*core.EmailMessage, error) {
	token, err := MakeToken(usr, svc.conf)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "making password reset token")
	}
	return &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: struct {
			Name  string
			UID   string
			Token string
		}{
			Name:  usr.Name,
			UID:   EncodeUID(usr),
			Token: token,
		},
	}, nil
}

func (svc *service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	invalidUID := core.NewValidationError(
		fmt.Errorf("invalid uid"),
		core.FieldError{Field: "uid", Error: errInvalidValue},
	)

	uid, err := decodeUID(data.UID)
	if err != nil {
		return invalidUID
	}
	usr, err := svc.repo.GetUserByID(ctx, uid)
	if err != nil {
		if core.IsNotFound(err) {
			return invalidUID
		}
		return pkgerrors.Wrap(err, "finding user by uid")
	}

	if err := verifyToken(usr, data.Token, svc.conf); err != nil {
		if err == errInvalidToken || err == errTokenExpired {
			return core.NewValidationError(err, core.FieldError{Field: "token", Error: errInvalidValue})
		}
		return err
	}

	if err := usr.SetPassword(data.Password); err != nil {
		return pkgerrors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return pkgerrors.Wrap(err, "updating user")
}
