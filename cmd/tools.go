package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var errToolFailed = errors.New("tool call failed")

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tool registry as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		container, err := bootstrap()
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{"tools": container.Manager().Definitions()})
	},
}

var callCmd = &cobra.Command{
	Use:   "call <tool> [json-arguments]",
	Short: "Invoke one tool and print its envelope",
	Long: `Invoke one tool and print the resulting envelope as JSON.
Arguments default to {}; pass "-" to read them from stdin.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCall,
}

func runCall(cmd *cobra.Command, args []string) error {
	container, err := bootstrap()
	if err != nil {
		return err
	}

	payload, err := callPayload(cmd.InOrStdin(), args[1:])
	if err != nil {
		return err
	}
	env := container.Manager().InvokeJSON(cmd.Context(), args[0], payload)
	if err := writeJSON(cmd.OutOrStdout(), env); err != nil {
		return err
	}
	if !env.OK() {
		return fmt.Errorf("%w: %s", errToolFailed, env.ErrorType())
	}
	return nil
}

func callPayload(stdin io.Reader, rest []string) (json.RawMessage, error) {
	if len(rest) == 0 {
		return nil, nil
	}
	if strings.TrimSpace(rest[0]) == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read arguments: %w", err)
		}
		return data, nil
	}
	return json.RawMessage(rest[0]), nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
