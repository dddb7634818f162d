package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/etcdv2-client/internal/constants"
)

// outputFormat returns the requested format. Without one, a terminal gets a
// table and a pipe gets plain text.
func outputFormat() string {
	format := viper.GetString("output")
	if format != "" {
		return format
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		return constants.FormatTable
	}

	return constants.FormatPlain
}

// renderer writes one value in each supported format.
type renderer struct {
	value interface{}
	table func(*tablewriter.Table) error
	plain func(io.Writer) error
}

func (r renderer) render(w io.Writer) error {
	switch format := outputFormat(); format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(r.value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(constants.JSONIndentSize)

		err := encoder.Encode(r.value)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		return encoder.Close()
	case constants.FormatTable:
		table := tablewriter.NewWriter(w)

		err := r.table(table)
		if err != nil {
			return err
		}

		err = table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	case constants.FormatPlain:
		return r.plain(w)
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownOutputFormat, format)
	}
}
