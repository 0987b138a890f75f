package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"fleet-relay/internal/relay"
)

var (
	askRaw      bool
	askMarkdown bool
)

// askCmd 在进程内执行一次对话
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "提问一次并输出回答",
	Long:  "在进程内执行一次完整的对话中继，包括工具调用和后续回答",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runAsk(ctx, cmd.OutOrStdout(), strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askRaw, "raw", false, "直接输出数据流协议行")
	askCmd.Flags().BoolVar(&askMarkdown, "markdown", false, "回答结束后按 Markdown 渲染")
}

func runAsk(ctx context.Context, out io.Writer, question string) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	manager, err := newToolManager(store)
	if err != nil {
		return err
	}

	messages := []relay.Message{{Role: "user", Content: question}}
	r := newRelay(manager)

	if askRaw {
		return r.Handle(ctx, messages, relay.NewWriterSink(out))
	}

	printer := newAnswerPrinter(out, askMarkdown)
	if err := r.Handle(ctx, messages, relay.FuncSink(printer.handle)); err != nil {
		return err
	}
	return printer.finish()
}

// answerPrinter 把中继事件渲染成终端输出
type answerPrinter struct {
	out      io.Writer
	markdown bool
	answer   strings.Builder

	toolStyle  lipgloss.Style
	textStyle  lipgloss.Style
	errorStyle lipgloss.Style
	dimStyle   lipgloss.Style
}

func newAnswerPrinter(out io.Writer, markdown bool) *answerPrinter {
	return &answerPrinter{
		out:        out,
		markdown:   markdown,
		toolStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ffff00")).Bold(true),
		textStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")),
		errorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555")).Bold(true),
		dimStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
}

func (p *answerPrinter) handle(ev relay.Event) error {
	switch e := ev.(type) {
	case relay.TextDelta:
		p.answer.WriteString(e.Text)
		if !p.markdown {
			fmt.Fprint(p.out, p.textStyle.Render(e.Text))
		}
	case relay.ToolInvocation:
		fmt.Fprintln(p.out, p.toolStyle.Render("⚙ "+e.ToolName)+" "+p.dimStyle.Render(string(e.Args)))
		if e.Error != "" {
			fmt.Fprintln(p.out, p.errorStyle.Render("  ✗ "+e.Error))
		} else {
			fmt.Fprintln(p.out, p.dimStyle.Render("  → "+truncate(string(e.Result), 200)))
		}
	case relay.StreamError:
		fmt.Fprintln(p.out)
		fmt.Fprintln(p.out, p.errorStyle.Render("流中断: "+e.Message))
	case relay.Finish:
		if !p.markdown {
			fmt.Fprintln(p.out)
		}
	}
	return nil
}

// finish Markdown 模式下在结束时统一渲染回答
func (p *answerPrinter) finish() error {
	if !p.markdown {
		return nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Fprintln(p.out, p.answer.String())
		return nil
	}
	rendered, err := renderer.Render(p.answer.String())
	if err != nil {
		fmt.Fprintln(p.out, p.answer.String())
		return nil
	}
	fmt.Fprint(p.out, rendered)
	return nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
