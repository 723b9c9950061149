package main

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mehmetcc/ppdb/internal/guard"
	"github.com/mehmetcc/ppdb/internal/role"
	"github.com/mehmetcc/ppdb/internal/session"
	"github.com/spf13/cobra"
)

type printNavigator struct {
	out io.Writer
}

func (p printNavigator) Redirect(path string) {
	fmt.Fprintf(p.out, "redirect: %s\n", path)
}

func checkCmd(opts *rootOptions) *cobra.Command {
	var (
		baseURL  string
		value    string
		audience string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the client guard against a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			g := e.config.GuardConfig
			allowed := role.Applicants
			paths := guard.Paths{Login: g.LoginPath, Unauthorized: g.UnauthorizedPath}
			cookieName := e.config.CookieConfig.ApplicantName
			switch audience {
			case session.ApplicantAudience:
			case session.StaffAudience:
				allowed = role.Staff
				paths.Login = g.DashboardLoginPath
				cookieName = e.config.CookieConfig.StaffName
			default:
				return fmt.Errorf("unknown audience %q", audience)
			}

			checker := &guard.HTTPChecker{
				BaseURL: baseURL,
				Client:  &http.Client{Timeout: timeout},
			}
			if value != "" {
				checker.Cookie = &http.Cookie{Name: cookieName, Value: value}
			}

			gd := guard.New(checker, printNavigator{out: cmd.OutOrStdout()}, allowed, paths, e.logger)
			state, err := gd.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "state: %s\n", state)
			if u := gd.User(); u != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "user: %s (%s)\n", u.Email, u.Role)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	cmd.Flags().StringVar(&value, "cookie", "", "session cookie value")
	cmd.Flags().StringVar(&audience, "audience", session.StaffAudience, "applicant or staff")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "verify request timeout")

	return cmd
}
