package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
)

func (cli *commandLine) completeCourseCmd() *cobra.Command {
	var email, courseID string
	cmd := &cobra.Command{
		Use:   "complete-course",
		Short: "Mark a course as completed for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, courseID = core.CleanString(email, true /* lower */), core.CleanString(courseID)
			if email == "" || courseID == "" {
				_ = cmd.Usage()
				return errHelp
			}

			ctx := cmd.Context()
			usr, err := cli.usrSvc.GetByEmail(ctx, email)
			if err != nil {
				return err
			}
			if _, err := cli.courseSvc.GetCourse(ctx, courseID); err != nil {
				return err
			}
			if _, err := cli.usrSvc.CompleteCourse(ctx, usr.ID, courseID); err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "course %s completed for %s\n", courseID, usr.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "The user's email")
	cmd.Flags().StringVar(&courseID, "course", "", "The course ID")
	return cmd
}

func (cli *commandLine) publishWeeksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish-weeks",
		Short: "Publish the oldest unpublished week of every cohort's course now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := cli.publisher.AutoPublish(cmd.Context())
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cli.out)
			defer enc.Close()
			return enc.Encode(report)
		},
	}
}
