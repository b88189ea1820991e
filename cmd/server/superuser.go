package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simp-lee/flyingpig/internal/app"
	"github.com/simp-lee/flyingpig/internal/domain"
)

const superuserPasswordEnv = "APP_SUPERUSER_PASSWORD"

func createSuperuserCmd(load loadFunc) *cobra.Command {
	var in app.SuperuserInput
	var userType string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a staff superuser",
		Long: `Create an active staff superuser that can use the admin site.

The password is read from --password or, when that is empty, from the
` + superuserPasswordEnv + ` environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.UserType = domain.UserType(userType)
			if in.Password == "" {
				in.Password = os.Getenv(superuserPasswordEnv)
			}
			if in.Password == "" {
				return errors.New("a password is required")
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			db, log, release, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer release()

			acct, err := app.CreateSuperuser(cmd.Context(), db, in, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s superuser %q (id %d)\n", in.UserType, acct.UserID, acct.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&userType, "type", string(domain.UserTypeBusiness), "user type: business or freelancer")
	f.StringVar(&in.UserID, "user-id", "", "login id")
	f.StringVar(&in.Email, "email", "", "email address")
	f.StringVar(&in.Password, "password", "", "password")
	f.StringVar(&in.FirstName, "first-name", "Admin", "first name")
	f.StringVar(&in.LastName, "last-name", "User", "last name")
	f.StringVar(&in.Company, "company", "", "company, required for business users")
	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
