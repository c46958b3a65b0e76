package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/store"
)

// extractTimeout bounds one AI request including retries.
const extractTimeout = 2 * time.Minute

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List people in the family tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer c.closeStore(ctx, st)

			t, err := st.Snapshot()
			if err != nil {
				return err
			}
			people := t.Search(search)
			if len(people) == 0 {
				printInfo("No matching people")
				return nil
			}
			fmt.Println(peopleTable(people))
			printDetail("%d of %d people", len(people), t.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by name")
	return cmd
}

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one person with their relatives",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: c.completePersonIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer c.closeStore(ctx, st)

			p, err := st.Get(args[0])
			if err != nil {
				return err
			}
			t, _ := st.Snapshot()
			printPerson(p, t)
			return nil
		},
	}
}

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the family tree interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer c.closeStore(ctx, st)

			t, err := st.Snapshot()
			if err != nil {
				return err
			}
			result, err := tea.NewProgram(NewPeopleListModel(t), tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			if m, ok := result.(PeopleListModel); ok && m.Selected != nil {
				printPerson(*m.Selected, t)
			}
			return nil
		},
	}
}

// personFlags holds the editable fields shared by add and edit.
type personFlags struct {
	first, last, gender string
	born, birthPlace    string
	died, deathPlace    string
	bio, photo          string
}

func (f *personFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.first, "first", "", "first name")
	cmd.Flags().StringVar(&f.last, "last", "", "last name")
	cmd.Flags().StringVar(&f.gender, "gender", "", "gender: Male, Female or Other")
	cmd.Flags().StringVar(&f.born, "born", "", "birth date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.birthPlace, "birth-place", "", "place of birth")
	cmd.Flags().StringVar(&f.died, "died", "", "death date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.deathPlace, "death-place", "", "place of death")
	cmd.Flags().StringVar(&f.bio, "bio", "", "biography")
}

func (f *personFlags) partial() family.Partial {
	return family.Partial{
		FirstName:  f.first,
		LastName:   f.last,
		Gender:     family.ParseGender(f.gender),
		BirthDate:  f.born,
		BirthPlace: f.birthPlace,
		DeathDate:  f.died,
		DeathPlace: f.deathPlace,
		Bio:        f.bio,
	}
}

// applyTo copies every flag the user set onto p.
func (f *personFlags) applyTo(cmd *cobra.Command, p *family.Person) {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("first", &p.FirstName, f.first)
	set("last", &p.LastName, f.last)
	set("born", &p.BirthDate, f.born)
	set("birth-place", &p.BirthPlace, f.birthPlace)
	set("died", &p.DeathDate, f.died)
	set("death-place", &p.DeathPlace, f.deathPlace)
	set("bio", &p.Bio, f.bio)
	set("photo", &p.Photo, f.photo)
	if cmd.Flags().Changed("gender") {
		p.Gender = family.ParseGender(f.gender)
	}
}

// addCommand creates the add command.
func (c *CLI) addCommand() *cobra.Command {
	var (
		fields   personFlags
		fromText string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a person to the family tree",
		Long: `Add a person from flags, or let the AI service read a short description:

  lineage add --first Ada --last Lovelace --gender Female --born 1815-12-10
  lineage add --from-text "Ada Lovelace, born 10 December 1815 in London"

Missing names become "Unknown" and a missing gender becomes Other.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, cfg, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer c.closeStore(ctx, st)

			partial := fields.partial()
			if fromText != "" {
				ex, closeFn, err := c.newExtractor(ctx, cfg, st.Session().UserID(), noCache)
				if err != nil {
					return err
				}
				defer closeFn()

				p, err := runWithSpinner(ctx, "Reading description...", func(ctx context.Context) (*family.Partial, error) {
					return ex.Extract(ctx, fromText)
				})
				if err != nil {
					return err
				}
				partial = *p
			}

			saved, err := st.Create(ctx, partial)
			if err != nil {
				return err
			}
			t, _ := st.Snapshot()
			printSuccess("Added %s", saved.FullName())
			printPerson(saved, t)
			printNextStep("Link relatives", fmt.Sprintf("%s edit %s --father <id>", appName, saved.ID))
			return nil
		},
	}

	fields.register(cmd)
	cmd.Flags().StringVar(&fromText, "from-text", "", "describe the person in plain text instead of using flags")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the AI response cache")
	cmd.MarkFlagsMutuallyExclusive("from-text", "first")
	cmd.MarkFlagsMutuallyExclusive("from-text", "last")
	return cmd
}

// editCommand creates the edit command.
func (c *CLI) editCommand() *cobra.Command {
	var (
		fields         personFlags
		father, mother string
		addSpouses     []string
		removeSpouses  []string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a person and their relationships",
		Long: `Change the fields given as flags. Relationship changes are mirrored on
the relatives: setting --father also lists the person as the father's
child, and --spouse links both partners. Pass an empty value to
--father or --mother to clear it.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completePersonIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer c.closeStore(ctx, st)

			p, err := st.Get(args[0])
			if err != nil {
				return err
			}
			fields.applyTo(cmd, &p)
			if cmd.Flags().Changed("father") {
				p.FatherID = father
			}
			if cmd.Flags().Changed("mother") {
				p.MotherID = mother
			}
			if err := checkRelatives(st, p.ID, append([]string{father, mother}, addSpouses...)); err != nil {
				return err
			}
			for _, id := range addSpouses {
				if !p.HasSpouse(id) {
					p.SpouseIDs = append(p.SpouseIDs, id)
				}
			}
			p.SpouseIDs = slices.DeleteFunc(p.SpouseIDs, func(id string) bool {
				return slices.Contains(removeSpouses, id)
			})

			saved, err := st.Apply(ctx, p)
			if err != nil {
				return err
			}
			t, _ := st.Snapshot()
			printSuccess("Saved %s", saved.FullName())
			printPerson(saved, t)
			return nil
		},
	}

	fields.register(cmd)
	cmd.Flags().StringVar(&fields.photo, "photo", "", "photo URL or data URL")
	cmd.Flags().StringVar(&father, "father", "", "ID of the father")
	cmd.Flags().StringVar(&mother, "mother", "", "ID of the mother")
	cmd.Flags().StringSliceVar(&addSpouses, "spouse", nil, "ID of a spouse to link (repeatable)")
	cmd.Flags().StringSliceVar(&removeSpouses, "no-spouse", nil, "ID of a spouse to unlink (repeatable)")
	c.completePersonFlags(cmd, "father", "mother", "spouse", "no-spouse")
	return cmd
}

// checkRelatives verifies that every referenced relative exists and is not
// the person being edited.
func checkRelatives(st *store.Store, self string, ids []string) error {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if id == self {
			return errors.New(errors.ErrCodeInvalidInput, "a person cannot be their own relative")
		}
		if _, err := st.Get(id); err != nil {
			return err
		}
	}
	return nil
}

// treeCommand creates the tree command.
func (c *CLI) treeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree [root-id]",
		Short: "Print descendants as an outline",
		Long: `Print the descendants of a person (default: the tree root) as an
outline. Spouses are shown next to each person.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completePersonIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer c.closeStore(ctx, st)

			t, err := st.Snapshot()
			if err != nil {
				return err
			}
			var root string
			if len(args) == 1 {
				root = args[0]
			}
			node, err := family.BuildHierarchy(t, root)
			if err != nil {
				return errors.Wrap(errors.ErrCodePersonNotFound, err, "build tree")
			}
			fmt.Print(renderOutline(node))
			printDetail("%d people", node.Count())
			return nil
		},
	}
}

// renderOutline draws a hierarchy with box-drawing branches.
func renderOutline(root *family.Node) string {
	var b strings.Builder
	var walk func(n *family.Node, prefix string, last bool)
	walk = func(n *family.Node, prefix string, last bool) {
		branch, next := "├── ", "│   "
		if last {
			branch, next = "└── ", "    "
		}
		if n == root {
			branch, next = "", ""
		}
		b.WriteString(StyleDim.Render(prefix+branch) + outlineLabel(n) + "\n")
		for i, child := range n.Children {
			walk(child, prefix+next, i == len(n.Children)-1)
		}
	}
	walk(root, "", true)
	return b.String()
}

func outlineLabel(n *family.Node) string {
	label := StyleValue.Render(n.Person.FullName())
	if s := lifespan(n.Person); s != "" {
		label += StyleDim.Render(" (" + s + ")")
	}
	if len(n.Spouses) > 0 {
		names := make([]string, len(n.Spouses))
		for i, s := range n.Spouses {
			names[i] = s.FullName()
		}
		label += StyleHighlight.Render(" ⚭ " + strings.Join(names, ", "))
	}
	return label
}

// bioCommand creates the bio command.
func (c *CLI) bioCommand() *cobra.Command {
	var save, noCache bool

	cmd := &cobra.Command{
		Use:   "bio <id>",
		Short: "Write a short biography with the AI service",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: c.completePersonIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, cfg, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer c.closeStore(ctx, st)

			p, err := st.Get(args[0])
			if err != nil {
				return err
			}
			ex, closeFn, err := c.newExtractor(ctx, cfg, st.Session().UserID(), noCache)
			if err != nil {
				return err
			}
			defer closeFn()

			bio, err := runWithSpinner(ctx, "Writing biography of "+p.FullName()+"...", func(ctx context.Context) (string, error) {
				return ex.Biography(ctx, p)
			})
			if err != nil {
				return err
			}
			fmt.Println(bio)

			if save {
				p.Bio = bio
				if _, err := st.Apply(ctx, p); err != nil {
					return err
				}
				printSuccess("Saved biography")
			} else {
				printNextStep("Keep it", fmt.Sprintf("%s bio %s --save", appName, p.ID))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "store the biography on the person")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the AI response cache")
	return cmd
}

// runWithSpinner runs fn under a timeout while showing a spinner.
func runWithSpinner[T any](ctx context.Context, message string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	spinner := newSpinnerWithContext(ctx, message)
	spinner.Start()
	v, err := fn(ctx)
	if err != nil {
		spinner.StopWithError(errors.UserMessage(err))
		return v, err
	}
	spinner.Stop()
	return v, nil
}
