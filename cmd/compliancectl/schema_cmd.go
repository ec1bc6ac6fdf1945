package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/complyhub/compliance-management-api/internal/schema"
)

const (
	kindForm      = "form"
	kindChecklist = "checklist"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Validate, normalize and scaffold form and checklist schemas",
	}
	cmd.AddCommand(newSchemaValidateCmd())
	cmd.AddCommand(newSchemaNormalizeCmd())
	cmd.AddCommand(newSchemaNewFormCmd())
	return cmd
}

func newSchemaValidateCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a schema document against the editor rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var problems schema.ValidationErrors
			switch kind {
			case kindForm:
				s, err := schema.ParseForm(raw)
				if err != nil {
					return err
				}
				problems = schema.ValidateForm(*s)
			case kindChecklist:
				s, err := schema.ParseChecklist(raw)
				if err != nil {
					return err
				}
				problems = schema.ValidateChecklist(*s)
			default:
				return fmt.Errorf("unknown kind %q, expected %s or %s", kind, kindForm, kindChecklist)
			}

			out := cmd.OutOrStdout()
			if len(problems) == 0 {
				fmt.Fprintf(out, "%s: ok\n", args[0])
				return nil
			}
			for _, p := range problems {
				fmt.Fprintf(out, "%s: %s: %s\n", args[0], p.Path, p.Message)
			}
			return fmt.Errorf("%d problem(s) found", len(problems))
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", kindForm, "document kind: form or checklist")
	return cmd
}

func newSchemaNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <file>",
		Short: "Rewrite a legacy flat checklist into the sectioned layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			s, err := schema.ParseChecklist(raw)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), s)
		},
	}
}

func newSchemaNewFormCmd() *cobra.Command {
	var (
		title       string
		description string
		fields      []string
	)
	cmd := &cobra.Command{
		Use:   "new-form",
		Short: "Scaffold a form schema",
		Example: `  compliancectl schema new-form --title "Access review" \
    --field "radio:Is MFA enforced?:Yes,No" --field "email:Owner"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := schema.NewFormBuilder(title, description)
			for i, spec := range fields {
				update, fieldType, err := parseFieldSpec(spec)
				if err != nil {
					return fmt.Errorf("--field %d: %w", i+1, err)
				}
				b.AddField(fieldType)
				if err := b.UpdateField(len(b.Fields())-1, update); err != nil {
					return err
				}
			}
			if problems := b.Validate(); len(problems) > 0 {
				return problems
			}
			return writeJSON(cmd.OutOrStdout(), b.Schema())
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "form title")
	cmd.Flags().StringVar(&description, "description", "", "form description")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "field as type:label[:option,option...]; repeatable")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

// parseFieldSpec reads type:label[:options]. A trailing "*" on the label marks the field required.
func parseFieldSpec(spec string) (schema.FieldUpdate, schema.FieldType, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) < 2 {
		return schema.FieldUpdate{}, "", fmt.Errorf("expected type:label, got %q", spec)
	}
	fieldType := schema.FieldType(strings.TrimSpace(parts[0]))
	if !fieldType.IsValid() {
		return schema.FieldUpdate{}, "", fmt.Errorf("unknown field type %q", parts[0])
	}

	label := strings.TrimSpace(parts[1])
	required := strings.HasSuffix(label, "*")
	label = strings.TrimSpace(strings.TrimSuffix(label, "*"))
	update := schema.FieldUpdate{Label: &label, Required: &required}

	if len(parts) == 3 {
		var options []string
		for _, o := range strings.Split(parts[2], ",") {
			if o = strings.TrimSpace(o); o != "" {
				options = append(options, o)
			}
		}
		update.Options = &options
	}
	return update, fieldType, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
