package commands

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/actions"
)

// maxRequestSize bounds one NDJSON request line.
const maxRequestSize = 4 << 20

var (
	toolSchema  bool
	toolRequest string
)

var toolCmd = &cobra.Command{
	Use:     "tool",
	GroupID: "session",
	Short:   "Run one JSON action request",
	Long: `Read one action request as JSON from --request or standard input, run it
and print the JSON response. Failures are reported inside the response, the
command itself only fails when the request cannot be read.

Request fields: action, id, title, status, body, steps, step_text, step_id,
force.`,
	Example: `  echo '{"action":"list"}' | planbook tool
  planbook tool --request '{"action":"create","title":"Fix login","steps":["Reproduce"]}'
  planbook tool --schema`,
	Args: cobra.NoArgs,
	RunE: runTool,
}

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: "session",
	Short:   "Answer newline-delimited JSON requests on stdin",
	Long: `Read one JSON action request per line from standard input and write one
JSON response per line to standard output until input ends. Session state
such as the active plan is kept for the whole run.

A request may carry a "session" field. When it names a different session the
run switches to it before the action; planning mode and the active plan are
kept across the switch.`,
	Example: `  planbook serve < requests.ndjson
  echo '{"action":"execute","id":"1a2b3c4d","session":"review"}' | planbook serve`,
	Args:    cobra.NoArgs,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(toolCmd, serveCmd)

	toolCmd.Flags().BoolVar(&toolSchema, "schema", false, "Print the tool name, description and parameter schema")
	toolCmd.Flags().StringVar(&toolRequest, "request", "", "Request JSON (default: read standard input)")
}

func runTool(cmd *cobra.Command, _ []string) error {
	if toolSchema {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"name":        actions.ToolName,
			"description": actions.ToolDescription,
			"parameters":  actions.ToolSchema(),
		})
	}

	raw := []byte(toolRequest)
	if toolRequest == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read request: %w", err)
		}
		raw = data
	}

	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		_, err := fmt.Fprintf(a.out, "%s\n", a.eng.HandleToolCall(ctx, a.caller(), raw))
		return err
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Buffer(make([]byte, 64*1024), maxRequestSize)

		w := bufio.NewWriter(a.out)
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 || strings.HasPrefix(string(line), "#") {
				continue
			}

			a.switchSession(ctx, line)
			_, _ = w.Write(a.eng.HandleToolCall(ctx, a.caller(), line))
			_ = w.WriteByte('\n')
			if err := w.Flush(); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read requests: %w", err)
		}
		return nil
	})
}

// switchSession adopts the session named by a request line, if any.
func (a *app) switchSession(ctx context.Context, line []byte) {
	var envelope struct {
		Session string `json:"session"`
	}
	if err := json.Unmarshal(line, &envelope); err != nil {
		return
	}
	id := strings.TrimSpace(envelope.Session)
	if id == "" || id == a.coord.SessionID() {
		return
	}
	a.coord.SwitchSession(ctx, id)
}
