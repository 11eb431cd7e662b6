package cmds

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-go-golems/confab/pkg/auth"
	"github.com/go-go-golems/confab/pkg/settings"
	"github.com/go-go-golems/confab/pkg/store"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tcnksm/go-input"
)

type credentials struct {
	name     string
	email    string
	password string
}

// prompt asks for the fields not given as flags. The password is masked
// when in is a terminal.
func (c *credentials) prompt(in io.Reader, out io.Writer, withName bool) error {
	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	ui := &input.UI{
		Reader: in,
		Writer: out,
	}

	ask := func(label string, dst *string, mask bool) error {
		if *dst != "" {
			return nil
		}
		answer, err := ui.Ask(label, &input.Options{
			Required:  true,
			Loop:      interactive,
			Mask:      mask && interactive,
			HideOrder: true,
		})
		if err != nil {
			return errors.Wrapf(err, "read %s", strings.ToLower(label))
		}
		*dst = strings.TrimSpace(answer)
		return nil
	}
	if withName {
		if err := ask("Name", &c.name, false); err != nil {
			return err
		}
	}
	if err := ask("Email", &c.email, false); err != nil {
		return err
	}
	return ask("Password", &c.password, true)
}

func addCredentialFlags(cmd *cobra.Command, c *credentials, withName bool) {
	if withName {
		cmd.Flags().StringVar(&c.name, "name", "", "Display name")
	}
	cmd.Flags().StringVar(&c.email, "email", "", "Email address")
	cmd.Flags().StringVar(&c.password, "password", "", "Password (prompted when omitted)")
}

func newAuthClient(s *settings.Settings) *auth.Client {
	return auth.NewClient(s.APIURL, &http.Client{Timeout: s.Timeout})
}

// saveUser stores u as the signed-in user in the configured store.
func saveUser(cmd *cobra.Command, s *settings.Settings, u auth.User) error {
	st, err := openStore(s)
	if err != nil {
		return err
	}
	defer func(st store.Store) {
		_ = st.Close()
	}(st)
	if err := auth.NewHolder(st).Save(cmd.Context(), u); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", u.Name, u.Email)
	return nil
}

func NewLoginCommand() *cobra.Command {
	c := &credentials{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in against the backend and remember the user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.prompt(cmd.InOrStdin(), cmd.OutOrStdout(), false); err != nil {
				return err
			}
			s := settings.Get()
			u, err := newAuthClient(s).Login(cmd.Context(), c.email, c.password)
			if err != nil {
				return err
			}
			return saveUser(cmd, s, u)
		},
	}
	addCredentialFlags(cmd, c, false)
	return cmd
}

func NewSignupCommand() *cobra.Command {
	c := &credentials{}
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account on the backend and remember the user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.prompt(cmd.InOrStdin(), cmd.OutOrStdout(), true); err != nil {
				return err
			}
			s := settings.Get()
			u, err := newAuthClient(s).Signup(cmd.Context(), c.name, c.email, c.password)
			if err != nil {
				return err
			}
			return saveUser(cmd, s, u)
		},
	}
	addCredentialFlags(cmd, c, true)
	return cmd
}

func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in user and remove the local history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			if err := deps.Manager.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out. Local history was removed.")
			return nil
		},
	}
}
