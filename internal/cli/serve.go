package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/api"
	"github.com/matzehuels/lineage/pkg/session"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noAuth, noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the family tree over HTTP",
		Long: `Serve the family tree of the logged-in user as a JSON API.

With --no-auth the built-in local account is used without a login.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			sess := session.MockLocal()
			if !noAuth {
				if sess, err = currentSession(ctx, cfg); err != nil {
					return err
				}
			}
			st, err := c.loadStore(ctx, cfg, sess)
			if err != nil {
				return err
			}
			defer st.Close()

			ex, closeFn, err := c.newExtractor(ctx, cfg, sess.UserID(), noCache)
			if err != nil {
				return err
			}
			defer closeFn()

			printInfo("Serving %s's family tree", sess.User.Name)
			printKeyValue("Address", StyleLink.Render("http://"+displayAddr(addr)))
			printKeyValue("Storage", st.Backend().Name())
			if !cfg.AI.Enabled() {
				printDetail("AI features disabled (set ai.api_key or OPENAI_API_KEY)")
			}

			return api.New(st, ex, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noAuth, "no-auth", false, "serve the local account without a login")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the AI response cache")
	return cmd
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
