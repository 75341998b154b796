package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vbonduro/nutribot/internal/chat"
	"github.com/vbonduro/nutribot/internal/logging"
	"github.com/vbonduro/nutribot/internal/recommend"
)

var askDelay time.Duration

var askCmd = &cobra.Command{
	Use:   "ask [text...]",
	Short: "Ask for a snack recommendation",
	Long: `Ask one question and print the answer, for example:

  nutribot ask 70kg craving nachos want to lose weight

With no arguments ask reads questions from stdin, one per line, until EOF.
Type "help" for examples.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().DurationVar(&askDelay, "delay", -1, "Thinking delay before each answer (default $THINK_DELAY)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	delay := cfg.ThinkDelay
	if askDelay >= 0 {
		delay = askDelay
	}

	s := &askSession{
		out:    cmd.OutOrStdout(),
		sink:   chat.NewChanSink(8),
		you:    color.New(color.FgCyan, color.Bold).SprintFunc(),
		bot:    color.New(color.FgGreen, color.Bold).SprintFunc(),
		muted:  color.New(color.Faint).SprintFunc(),
		logger: logging.NewWithWriter(cmd.ErrOrStderr(), "warn", "text"),
	}
	s.presenter = chat.NewPresenter(recommend.New(cat), s.sink,
		chat.WithDelay(delay),
		chat.WithLogger(s.logger),
	)

	if len(args) > 0 {
		s.ask(strings.Join(args, " "))
		return nil
	}
	return s.repl(cmd.InOrStdin())
}

type askSession struct {
	out       io.Writer
	presenter *chat.Presenter
	sink      *chat.ChanSink
	you, bot  func(a ...any) string
	muted     func(a ...any) string
	logger    *slog.Logger
}

// ask submits one line and prints every turn until the final one.
func (s *askSession) ask(line string) {
	if !s.presenter.Submit(line) {
		return
	}
	for m := range s.sink.C() {
		s.print(m)
		if m.Final() {
			return
		}
	}
}

func (s *askSession) print(m chat.Message) {
	text := chat.PlainText(m.HTML)
	switch {
	case m.Role == chat.RoleUser:
		fmt.Fprintf(s.out, "%s %s\n", s.you("you>"), text)
	case m.Kind == chat.KindPlaceholder:
		fmt.Fprintf(s.out, "%s %s\n", s.bot("bot>"), s.muted(text))
	default:
		fmt.Fprintf(s.out, "%s %s\n", s.bot("bot>"), indent(text))
	}
}

func (s *askSession) repl(in io.Reader) error {
	fmt.Fprintln(s.out, s.muted(`Tell me your weight, goal and craving. Type "help" for examples, Ctrl-D to quit.`))
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		s.ask(sc.Text())
	}
	return sc.Err()
}

// indent aligns continuation lines under the first one.
func indent(text string) string {
	return strings.ReplaceAll(text, "\n", "\n     ")
}
