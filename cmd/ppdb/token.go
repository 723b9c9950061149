package main

import (
	"fmt"
	"time"

	"github.com/mehmetcc/ppdb/internal/role"
	"github.com/mehmetcc/ppdb/internal/session"
	"github.com/mehmetcc/ppdb/internal/token"
	"github.com/spf13/cobra"
)

func tokenCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign and inspect session tokens",
	}
	cmd.AddCommand(tokenSignCmd(opts), tokenVerifyCmd(opts))
	return cmd
}

func tokenSignCmd(opts *rootOptions) *cobra.Command {
	var (
		sub      token.Subject
		rawRole  string
		audience string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Mint a session token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			r, err := role.Parse(rawRole)
			if err != nil {
				return err
			}
			sub.Role = r

			codec, err := e.codec()
			if err != nil {
				return err
			}
			tok, exp, err := codec.Issue(sub, audience, ttl)
			if err != nil {
				return err
			}

			name := e.config.CookieConfig.ApplicantName
			if audience == session.StaffAudience {
				name = e.config.CookieConfig.StaffName
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", name, tok)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&sub.ID, "sub", "", "subject (person public id)")
	cmd.Flags().StringVar(&sub.Name, "name", "", "display name claim")
	cmd.Flags().StringVar(&sub.Email, "email", "", "email claim")
	cmd.Flags().StringVar(&sub.Gender, "gender", "", "gender claim (L or P)")
	cmd.Flags().StringVar(&rawRole, "role", string(role.Applicant), "applicant, admin or committee")
	cmd.Flags().StringVar(&audience, "audience", session.ApplicantAudience, "applicant or staff")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("sub")

	return cmd
}

func tokenVerifyCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a token against both audiences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			codec, err := e.codec()
			if err != nil {
				return err
			}
			claims, err := codec.Verify(args[0], session.ApplicantAudience, session.StaffAudience)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sub:      %s\n", claims.Subject)
			fmt.Fprintf(out, "role:     %s\n", claims.Role)
			fmt.Fprintf(out, "audience: %s\n", claims.AudienceName())
			if claims.ExpiresAt != nil {
				fmt.Fprintf(out, "expires:  %s\n", claims.ExpiresAt.Time.Format(time.RFC3339))
			}
			return nil
		},
	}
	return cmd
}
