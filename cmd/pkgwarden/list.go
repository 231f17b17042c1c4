// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pkgwarden/pkgwarden/internal/allowlist"
	"github.com/pkgwarden/pkgwarden/internal/config"
	"github.com/pkgwarden/pkgwarden/internal/installer"
)

// Output formats of the list command.
const (
	listFormatTable = "table"
	listFormatYAML  = "yaml"
	listFormatJSON  = "json"
	listFormatTOML  = "toml"
)

// ErrInvalidListFormat is returned for an unknown --format value.
var ErrInvalidListFormat = errors.New("invalid output format")

type (
	// listing is the structured form of the list output.
	listing struct {
		Backends []backendListing `json:"backends" yaml:"backends" toml:"backends"`
	}

	backendListing struct {
		Type string `json:"type" yaml:"type" toml:"type"`
		// Enforced is false when the backend block opts out of the allow-list.
		Enforced bool              `json:"enforced" yaml:"enforced" toml:"enforced"`
		Packages []allowlist.Entry `json:"packages" yaml:"packages" toml:"packages"`
	}
)

func newListCommand(app *App) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the allowed packages of every backend",
		Example: `  pkgwarden list
  pkgwarden list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch format {
			case listFormatTable, listFormatYAML, listFormatJSON, listFormatTOML:
			default:
				err := fmt.Errorf("%w %q (valid: table, yaml, json, toml)", ErrInvalidListFormat, format)
				return describe("list", "packages", err)
			}

			s, err := app.prepare(cmd.Context())
			if err != nil {
				return describe("list", "packages", err)
			}
			return writeListing(app.stdout, buildListing(s.document), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", listFormatTable, "output format (table, yaml, json, toml)")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{listFormatTable, listFormatYAML, listFormatJSON, listFormatTOML}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func buildListing(doc *config.Document) listing {
	var l listing
	for _, t := range installer.Types() {
		list, enforced := doc.Backend(t.String()).Allowlist()
		l.Backends = append(l.Backends, backendListing{
			Type:     t.String(),
			Enforced: enforced,
			Packages: list.Entries(),
		})
	}
	return l
}

func writeListing(w io.Writer, l listing, format string) error {
	switch format {
	case listFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(l); err != nil {
			return err
		}
		return enc.Close()
	case listFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	case listFormatTOML:
		return toml.NewEncoder(w).Encode(l)
	default:
		_, err := io.WriteString(w, renderListing(l))
		return err
	}
}

func renderListing(l listing) string {
	var b strings.Builder
	counts := make([]string, 0, len(l.Backends))
	for i, backend := range l.Backends {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(TitleStyle.Render(strings.ToUpper(backend.Type)+" packages") + "\n")
		counts = append(counts, fmt.Sprintf("%d %s", len(backend.Packages), backend.Type))

		switch {
		case !backend.Enforced:
			b.WriteString(hintStyle.Render("  allow-list not enforced; any package may be installed") + "\n")
		case len(backend.Packages) == 0:
			b.WriteString(WarningStyle.Render("  no allowed packages configured") + "\n")
		default:
			b.WriteString(packageTable(backend.Packages) + "\n")
		}
	}
	b.WriteString("\n" + SubtitleStyle.Render("Total packages: "+strings.Join(counts, ", ")) + "\n")
	return b.String()
}

func packageTable(entries []allowlist.Entry) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("PACKAGE", "ALLOWED VERSIONS").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	for _, e := range entries {
		versions := strings.Join(e.Versions, ", ")
		if versions == "" {
			versions = "(none)"
		}
		t.Row(e.Package, versions)
	}
	return t.String()
}
