package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jrsteele09/localchef-bazaar/identity"
	"github.com/jrsteele09/localchef-bazaar/sessions"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(o *rootOptions) *cobra.Command {
	var (
		email     string
		password  string
		federated bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the marketplace",
		Long: `Sign in with email and password, or with --federated through the
identity provider's sign-in page. The password is read from BAZAAR_PASSWORD
or prompted for when not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := o.appFor(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, err := app.auth(ctx)
			if err != nil {
				return err
			}
			stop := svc.Start(ctx)
			defer stop()

			var session sessions.Session
			if federated {
				login := svc.BeginFederated()
				fmt.Fprintf(cmd.ErrOrStderr(), "Open this URL to sign in:\n\n  %s\n\nPaste the code you were given: ", login.URL)
				code, err := readLine(cmd)
				if err != nil {
					return err
				}
				session, err = svc.CompleteFederated(ctx, login, login.State, code)
				if err != nil {
					return err
				}
			} else {
				if email == "" {
					return fmt.Errorf("--email is required")
				}
				if password == "" {
					if password, err = readPassword(cmd); err != nil {
						return err
					}
				}
				if session, err = svc.SignIn(ctx, email, password); err != nil {
					return err
				}
			}

			if o.settings.Output == outputJSON {
				return printJSON(cmd.OutOrStdout(), whoami(session))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", session.DisplayName(), session.Email())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", os.Getenv("BAZAAR_PASSWORD"), "Account password")
	cmd.Flags().BoolVar(&federated, "federated", false, "Sign in through the identity provider's sign-in page")
	return cmd
}

func readLine(cmd *cobra.Command) (string, error) {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" && err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return line, nil
}

func readPassword(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(data), nil
	}
	return readLine(cmd)
}

func newLogoutCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := o.appFor(cmd)
			if err != nil {
				return err
			}
			svc, err := app.auth(cmd.Context())
			if err != nil {
				// The saved session is all there is to forget without a provider
				log.Err(err).Msg("identity provider unavailable, clearing local session only")
				app.store.Clear()
			} else if err := svc.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

type whoamiView struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	Address     string    `json:"address,omitempty"`
	TokenExpiry time.Time `json:"tokenExpiry,omitempty"`
}

func whoami(s sessions.Session) whoamiView {
	v := whoamiView{
		ID:          s.Principal.ID,
		Email:       s.Email(),
		DisplayName: s.DisplayName(),
		Role:        string(s.Role()),
		Status:      string(s.Profile.EffectiveStatus()),
		TokenExpiry: s.TokenExpiry,
	}
	if s.Profile != nil {
		v.Address = s.Profile.Address
	}
	if v.TokenExpiry.IsZero() {
		if claims, err := identity.ParseTokenClaims(s.Token); err == nil {
			v.TokenExpiry = claims.Expiry()
		}
	}
	return v
}

func newWhoamiCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := o.appFor(cmd)
			if err != nil {
				return err
			}
			session, err := app.session()
			if err != nil {
				return err
			}
			v := whoami(*session)
			if o.settings.Output == outputJSON {
				return printJSON(cmd.OutOrStdout(), v)
			}

			expiry := "unknown"
			if !v.TokenExpiry.IsZero() {
				expiry = v.TokenExpiry.Local().Format(time.RFC1123)
				if session.TokenExpired(time.Now()) {
					expiry += " (expired, run 'bazaar login')"
				}
			}
			role := v.Role
			if role == "" {
				role = "unknown"
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Name:    %s\n", v.DisplayName)
			fmt.Fprintf(w, "Email:   %s\n", v.Email)
			fmt.Fprintf(w, "Role:    %s\n", role)
			fmt.Fprintf(w, "Status:  %s\n", v.Status)
			if v.Address != "" {
				fmt.Fprintf(w, "Address: %s\n", v.Address)
			}
			fmt.Fprintf(w, "Expires: %s\n", expiry)
			return nil
		},
	}
}

func newMenuCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "List the dashboard sections available to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := o.appFor(cmd)
			if err != nil {
				return err
			}
			session, err := app.session()
			if err != nil {
				return err
			}
			entries := app.caps.Menu(session)
			return render(cmd, o.settings.Output, entries, []string{"section", "route"}, func() [][]string {
				rows := make([][]string, len(entries))
				for i, e := range entries {
					rows[i] = []string{e.Label, e.Route}
				}
				return rows
			})
		},
	}
}
