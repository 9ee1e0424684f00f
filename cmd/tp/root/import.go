package root

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkhrrs89/TaskPoints/internal/ui"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a document (bare JSON or export archive)",
		Long:  "Import replaces the stored document wholesale. The file is validated first; an invalid document leaves the stored data untouched.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("input file is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.Import(ctx, data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconBox, "Imported"))
			fmt.Fprintln(out, ui.LabelValue("Tasks", len(res.State.Tasks)))
			fmt.Fprintln(out, ui.LabelValue("Completions", len(res.State.Completions)))
			fmt.Fprintln(out, ui.LabelValue("Images", res.Images))
			return nil
		},
	}

	return cmd
}
