package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/api"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/gedcom"
	treeio "github.com/matzehuels/lineage/pkg/io"
	"github.com/matzehuels/lineage/pkg/observability"
)

// Transfer formats.
const (
	formatGedcom = "gedcom"
	formatJSON   = "json"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the family tree as GEDCOM or JSON",
		Long: `Export the family tree as GEDCOM 5.5.1 (default) or JSON.

Without -o the file is named family_tree_<date>.ged in the current
directory. Use -o - to write to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != formatGedcom && format != formatJSON {
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (use gedcom or json)", format)
			}

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
			data, err := encodeTree(cmd, t, format)
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if output == "" {
				output = api.ExportFilename(time.Now())
				if format == formatJSON {
					output = strings.TrimSuffix(output, ".ged") + ".json"
				}
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Exported %d people", t.Len())
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (- for stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", formatGedcom, "output format: gedcom or json")
	return cmd
}

// encodeTree serializes t and reports the conversion to the codec hooks.
func encodeTree(cmd *cobra.Command, t family.Tree, format string) ([]byte, error) {
	ctx := cmd.Context()
	start := time.Now()
	if format == formatJSON {
		var buf bytes.Buffer
		if err := treeio.WriteJSON(t, &buf); err != nil {
			return nil, err
		}
		observability.Codec().OnEncode(ctx, formatJSON, t.Len(), 0, time.Since(start))
		return buf.Bytes(), nil
	}

	data, report := gedcom.EncodeReport(t)
	observability.Codec().OnEncode(ctx, formatGedcom, report.Individuals, report.Families, time.Since(start))
	logger := loggerFromContext(ctx)
	for _, d := range report.Dropped {
		logger.Debug("skipped dangling reference", "person", d.PersonID, "field", d.Field, "target", d.TargetID)
	}
	return data, nil
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var format string
	var lenient, replace bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import people from a GEDCOM or JSON file",
		Long: `Import people from a GEDCOM 5.5.1 or JSON file. The format is taken from
the file extension unless --format is given.

Imported people get fresh IDs and are added to the existing tree. Use
--replace to delete the existing tree first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if format == "" {
				format = formatGedcom
				if strings.EqualFold(filepath.Ext(path), ".json") {
					format = formatJSON
				}
			}

			f, err := os.Open(path)
			if os.IsNotExist(err) {
				return errors.New(errors.ErrCodeFileNotFound, "file not found: %s", path)
			} else if err != nil {
				return err
			}
			defer f.Close()

			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))
			t, warnings, err := decodeTree(cmd, f, strings.ToLower(format), lenient)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				printWarning("%v", w)
			}

			st, _, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer c.closeStore(ctx, st)

			imported, err := st.Import(ctx, t, replace)
			if err != nil {
				return err
			}
			prog.done("import finished", "file", filepath.Base(path), "people", imported.Len())
			printSuccess("Imported %d people", imported.Len())
			if root, ok := imported.Get(imported.RootID); ok {
				printKeyValue("Root", personRef(root))
			}
			printNextStep("See the result", appName+" tree")
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "input format: gedcom or json (default: from extension)")
	cmd.Flags().BoolVar(&lenient, "lenient", false, "skip families that reference unknown individuals")
	cmd.Flags().BoolVar(&replace, "replace", false, "delete the existing tree first")
	return cmd
}

// decodeTree parses r and reports the conversion to the codec hooks.
func decodeTree(cmd *cobra.Command, r io.Reader, format string, lenient bool) (family.Tree, []error, error) {
	start := time.Now()
	var (
		t        family.Tree
		warnings []error
		err      error
	)
	switch {
	case format == formatJSON:
		t, err = treeio.ReadJSON(r)
	case format != formatGedcom:
		return family.Tree{}, nil, errors.New(errors.ErrCodeInvalidInput, "unknown format %q (use gedcom or json)", format)
	case lenient:
		t, warnings, err = gedcom.DecodeLenient(r)
	default:
		t, err = gedcom.Decode(r)
	}
	observability.Codec().OnDecode(cmd.Context(), format, t.Len(), time.Since(start), err)
	return t, warnings, err
}
