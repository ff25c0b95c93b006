package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
)

func (cli *commandLine) addUserCmd() *cobra.Command {
	var name, email, role string
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user, or update the user with the same email. The password is prompted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if core.CleanString(email) == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := cli.promptPassword(cmd)
			if err != nil {
				return err
			}
			usr, err := cli.addUser(cmd.Context(), name, email, role, pwd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "user %s (%s) saved\n", usr.Email, usr.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "The user's name")
	cmd.Flags().StringVar(&email, "email", "", "The user's email")
	cmd.Flags().StringVar(&role, "role", user.RoleAdmin, "One of ADMIN, COURSE_ADMIN, USER")
	return cmd
}

// addUser updates or creates an active user.User
func (cli *commandLine) addUser(ctx context.Context, name, email, role, pwd string) (user.User, error) {
	email = core.CleanString(email, true /* lower */)
	role = core.CleanString(role)
	if !user.IsValidRole(role) {
		return user.User{}, fmt.Errorf("invalid role %q", role)
	}

	now := time.Now().UTC()
	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	isNew := err == user.ErrNotFound
	if err != nil && !isNew {
		return user.User{}, err
	}
	if isNew {
		usr = user.User{
			Email:            email,
			CompletedCourses: []string{},
			OngoingCourses:   []string{},
			CreatedAt:        now,
		}
	}
	if name = core.CleanString(name); name != "" {
		usr.Name = name
	}
	if usr.Name == "" {
		usr.Name = email
	}
	usr.Role = role
	usr.UpdatedAt = now
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return user.User{}, err
	}

	if isNew {
		return cli.usrRepo.CreateUser(ctx, usr)
	}
	return cli.usrRepo.UpdateUser(ctx, usr)
}
