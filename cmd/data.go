package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fleet-relay/internal/common/errors"
)

// dataCmd 输出数据存储中的静态数据
var dataCmd = &cobra.Command{
	Use:       "data [datacenters|signals|demands]",
	Short:     "以 JSON 输出数据存储内容",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"datacenters", "signals", "demands"},
	RunE: func(cmd *cobra.Command, args []string) error {
		table := "datacenters"
		if len(args) == 1 {
			table = args[0]
		}
		return dumpData(cmd.Context(), cmd.OutOrStdout(), table)
	},
}

func init() {
	rootCmd.AddCommand(dataCmd)
}

func dumpData(ctx context.Context, out io.Writer, table string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	var rows any
	switch table {
	case "datacenters":
		rows, err = store.Datacenters(ctx)
	case "signals":
		rows, err = store.Signals(ctx)
	case "demands":
		rows, err = store.Demands(ctx)
	default:
		return errors.NewErrorWithDetails(errors.ErrCodeInvalidParam, "未知的数据表", table)
	}
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}
