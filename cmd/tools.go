package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"fleet-relay/internal/common/errors"
	"fleet-relay/internal/tools"
)

// toolsCmd 工具相关命令
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "查看和调用内置工具",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出工具清单",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listTools(cmd.OutOrStdout())
	},
}

var toolsCallCmd = &cobra.Command{
	Use:   "call [tool_name] [arguments_json]",
	Short: "对数据存储执行一次工具调用",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		arguments := "{}"
		if len(args) > 1 {
			arguments = args[1]
		}
		return callTool(cmd.Context(), cmd.OutOrStdout(), args[0], arguments)
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.AddCommand(toolsListCmd)
	toolsCmd.AddCommand(toolsCallCmd)
}

func listTools(out io.Writer) error {
	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff00")).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).PaddingLeft(2)

	for _, def := range tools.Manifest() {
		schema, err := json.Marshal(def.Parameters)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, nameStyle.Render(def.Name))
		fmt.Fprintln(out, descStyle.Render(def.Description))
		fmt.Fprintln(out, descStyle.Render(string(schema)))
	}
	return nil
}

func callTool(ctx context.Context, out io.Writer, name, arguments string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	manager, err := newToolManager(store)
	if err != nil {
		return err
	}

	result := manager.Execute(ctx, tools.ToolCall{ID: "cli", Name: name, Arguments: arguments})
	if result.Error != "" {
		return errors.NewToolErrorWithDetails(result.Error, name)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result.Output, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(result.Output)
	}
	fmt.Fprintln(out, pretty.String())
	return nil
}
