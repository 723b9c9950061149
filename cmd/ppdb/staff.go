package main

import (
	"fmt"

	"github.com/mehmetcc/ppdb/internal/audit"
	"github.com/mehmetcc/ppdb/internal/auth"
	"github.com/mehmetcc/ppdb/internal/person"
	"github.com/mehmetcc/ppdb/internal/role"
	"github.com/spf13/cobra"
)

func staffCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage dashboard accounts",
	}

	var (
		in      auth.StaffInput
		rawRole string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an admin or committee account",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := role.Parse(rawRole)
			if err != nil {
				return err
			}
			in.Role = r

			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			codec, err := e.codec()
			if err != nil {
				return err
			}
			db, err := e.database(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer db.Close()

			_, staff := e.audiences()
			svc := auth.NewAuthenticationService(
				person.NewPersonRepo(db, e.logger),
				audit.NewLoginRepo(db, e.logger),
				codec,
				[]auth.AudiencePolicy{{Audience: staff, TTL: e.config.JWTConfig.StaffTTL}},
				e.logger,
			)
			pid, err := svc.CreateStaff(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pid)
			return nil
		},
	}
	add.Flags().StringVar(&in.Email, "email", "", "login email")
	add.Flags().StringVar(&in.Name, "name", "", "display name")
	add.Flags().StringVar(&in.Password, "password", "", "initial password")
	add.Flags().StringVar(&rawRole, "role", string(role.Committee), "admin or committee")
	_ = add.MarkFlagRequired("email")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("password")

	cmd.AddCommand(add)
	return cmd
}
