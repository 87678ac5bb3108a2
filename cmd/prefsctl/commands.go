package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/goliatone/go-prefs/pkg/controls"
	"github.com/goliatone/go-prefs/pkg/markup"
	"github.com/goliatone/go-prefs/schema/openapi"
	"github.com/spf13/cobra"
)

func newListCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List settings with their current value and choices",
		Args:  cobra.NoArgs,
		RunE: withSession(o, func(ctx context.Context, cmd *cobra.Command, s *session, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVALUE\tCONTROL\tCHOICES")
			for _, setting := range s.engine.Settings() {
				value, err := s.engine.Get(ctx, setting.Name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", setting.Name, value, setting.Control(), strings.Join(setting.Keys(), ","))
			}
			return w.Flush()
		}),
	}
}

func newGetCmd(o *rootOptions) *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Print the current value of a setting",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(o, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			if trace {
				t, err := s.engine.Trace(ctx, args[0])
				if err != nil {
					return err
				}
				payload, err := t.ToJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return nil
			}
			value, err := s.engine.Get(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "explain which source the value comes from")
	return cmd
}

func newSetCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set NAME VALUE",
		Short: "Select a choice",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(o, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			if err := s.engine.Set(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", args[0], args[1])
			return nil
		}),
	}
}

func newCycleCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cycle NAME",
		Short: "Advance a setting to its next choice",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(o, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			next, err := s.engine.NextOption(ctx, args[0], "")
			if err != nil {
				return err
			}
			if err := s.engine.Set(ctx, args[0], next.Key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", args[0], next.Key)
			return nil
		}),
	}
}

func newResetCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset NAME",
		Short: "Restore the declared default of a setting",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(o, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			if err := s.engine.Reset(ctx, args[0]); err != nil {
				return err
			}
			value, err := s.engine.Default(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", args[0], value)
			return nil
		}),
	}
}

func newRenderCmd(o *rootOptions) *cobra.Command {
	var class string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the control surface as HTML",
		Args:  cobra.NoArgs,
		RunE: withSession(o, func(ctx context.Context, cmd *cobra.Command, s *session, _ []string) error {
			view := controls.NewView(s.engine)
			html, err := markup.Render(ctx, view.Render(ctx), markup.WithClass(class))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), html)
			return nil
		}),
	}
	cmd.Flags().StringVar(&class, "class", "prefs", "class of the surface wrapper")
	return cmd
}

func newSchemaCmd(o *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print a machine readable description of the settings",
		Args:  cobra.NoArgs,
		RunE: withSession(o, func(_ context.Context, cmd *cobra.Command, s *session, _ []string) error {
			var doc any
			switch format {
			case "descriptors":
				schema, err := s.engine.Schema()
				if err != nil {
					return err
				}
				doc = schema.Document
			case "openapi":
				schema, err := openapi.NewGenerator().Generate(s.registry)
				if err != nil {
					return err
				}
				doc = schema.Document
			default:
				return fmt.Errorf("unknown schema format %q", format)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		}),
	}
	cmd.Flags().StringVar(&format, "format", "descriptors", "descriptors or openapi")
	return cmd
}
