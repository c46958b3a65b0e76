package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/config"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/session"
	"github.com/matzehuels/lineage/pkg/store"
)

// loginCommand creates the login command.
func (c *CLI) loginCommand() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a local session",
		Long: `Start a session for the local account.

The session decides which family tree the other commands read and write.
A new account starts with a small sample tree.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ss, closeFn, err := sessionStore(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			if existing, _ := ss.GetSession(ctx); existing != nil {
				printInfo("Already logged in as %s", existing.User.Name)
				printDetail("Run '%s logout' first to switch accounts", appName)
				return nil
			}

			user := session.LocalUser()
			if name != "" {
				user.Name = name
			}
			if email != "" {
				user.Email = email
			}
			sess, err := session.New(user, cfg.Session.TTL)
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}
			if err := ss.SaveSession(ctx, sess); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			c.Logger.Debug("session saved", "user", user.ID, "expires", sess.ExpiresAt)
			printSuccess("Logged in as %s", user.Name)
			printKeyValue("Expires", sess.ExpiresAt.Format("Jan 2, 2006"))
			printNextStep("List your family tree", appName+" list")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

// logoutCommand creates the logout command.
func (c *CLI) logoutCommand() *cobra.Command {
	var purge bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "End the local session",
		Long: `End the local session. The family tree stays in storage and is
loaded again on the next login unless --purge is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if purge {
				if err := c.purgeTree(ctx, cfg); err != nil {
					return err
				}
			}

			ss, closeFn, err := sessionStore(cfg)
			if err != nil {
				return err
			}
			defer closeFn()
			if err := ss.DeleteSession(ctx); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			printSuccess("Logged out")
			return nil
		},
	}

	cmd.Flags().BoolVar(&purge, "purge", false, "delete the stored family tree as well")
	return cmd
}

// purgeTree deletes every stored person of the logged-in user.
func (c *CLI) purgeTree(ctx context.Context, cfg config.Config) error {
	sess, err := currentSession(ctx, cfg)
	if err != nil {
		return err
	}
	backend, err := openBackend(ctx, cfg, sess.UserID())
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "open %s storage", cfg.Storage.Backend)
	}
	st, err := store.New(sess, backend, store.WithLogger(c.Logger))
	if err != nil {
		backend.Close()
		return err
	}
	defer st.Close()

	if err := backend.Clear(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "clear %s", backend.Name())
	}
	st.Reset()
	printInfo("Deleted stored family tree")
	return nil
}

// whoamiCommand creates the whoami command.
func (c *CLI) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			sess, err := currentSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			printSuccess("Session")
			printKeyValue("Name", sess.User.Name)
			if sess.User.Email != "" {
				printKeyValue("Email", sess.User.Email)
			}
			printKeyValue("User ID", sess.User.ID)
			printKeyValue("Storage", cfg.Storage.Backend)
			printKeyValue("Logged in", sess.CreatedAt.Format("Jan 2, 2006"))
			printKeyValue("Expires", sess.ExpiresAt.Format("Jan 2, 2006"))
			return nil
		},
	}
}
