// Package cli implements the lineage command-line interface.
//
// Commands manage a family tree stored for the logged-in user: listing and
// editing people, importing and exporting GEDCOM files, generating
// biographies and serving the HTTP API. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
//   - login, logout, whoami: manage the local session
//   - list, show, browse, tree: inspect the family tree
//   - add, edit, bio: change people (add --from-text and bio use the AI service)
//   - export, import: GEDCOM and JSON transfer
//   - serve: run the HTTP API
//   - config, cache: manage settings and the AI response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Lineage keeps a family tree and exchanges it as GEDCOM",
		Long:         `Lineage is a CLI tool for recording people and their relationships, keeping parents, children and spouses consistent, and exchanging the tree with other genealogy software as GEDCOM 5.5.1.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/lineage/config.toml)")

	root.AddGroup(
		&cobra.Group{ID: "tree", Title: "Family Tree:"},
		&cobra.Group{ID: "transfer", Title: "Import & Export:"},
		&cobra.Group{ID: "account", Title: "Account:"},
	)

	for _, cmd := range []*cobra.Command{
		c.listCommand(), c.showCommand(), c.addCommand(), c.editCommand(),
		c.treeCommand(), c.browseCommand(), c.bioCommand(),
	} {
		cmd.GroupID = "tree"
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{c.exportCommand(), c.importCommand()} {
		cmd.GroupID = "transfer"
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{c.loginCommand(), c.logoutCommand(), c.whoamiCommand()} {
		cmd.GroupID = "account"
		root.AddCommand(cmd)
	}

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
