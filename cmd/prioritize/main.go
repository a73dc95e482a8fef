package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mikey/linkedin-prioritizer/internal/classifier"
	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/mikey/linkedin-prioritizer/internal/di"
)

var (
	flags   = &di.CLIFlags{}
	format  string
	explain bool
)

var rootCmd = &cobra.Command{
	Use:   "prioritize [file]",
	Short: "Classify LinkedIn conversations by priority",
	Long: `Reads scraped conversations as JSON (an array, or an object with a "messages" field)
from a file or stdin and prints the categorization.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runPrioritize,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flags.Method, "method", "rule", "classification method (rule, ai)")
	f.StringVar(&flags.Mode, "mode", "", "bucket mode (multi, binary)")
	f.StringSliceVar(&flags.Contacts, "contact", nil, "important contact, may be repeated")
	f.StringVar(&flags.Provider, "provider", "", "delegate provider (endpoint, openai, gemini, bedrock)")
	f.StringVar(&flags.URL, "url", "", "classification service URL for the endpoint provider")
	f.StringVar(&flags.Delay, "delay", "", "delay between delegated requests")
	f.IntVar(&flags.MaxPreviewSize, "max-preview-size", 0, "maximum preview size sent to the delegate")
	f.BoolVar(&flags.Verbose, "verbose", false, "enable verbose logging")
	f.BoolVar(&flags.JSONLog, "json-log", false, "output logs in JSON format")
	f.StringVar(&flags.ConfigFile, "config", "", "path to config file (overrides command line flags)")
	f.StringVarP(&format, "output", "o", "yaml", "output format (yaml, json)")
	f.BoolVar(&explain, "explain", false, "include the rule score breakdown of every message")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runPrioritize(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer file.Close()
		in = file
	}

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return container.Invoke(func(logger *zap.Logger, rules *classifier.Classifier, delegation *di.Delegation) error {
		defer logger.Sync()
		defer func() {
			if closer, ok := delegation.Client.(io.Closer); ok {
				_ = closer.Close()
			}
		}()

		messages, err := readMessages(in)
		if err != nil {
			return err
		}

		var batch core.BatchClassifier = rules
		method := core.ParseMethod(flags.Method)
		if method == core.MethodAI && delegation.Classifier != nil {
			batch = delegation.Classifier
		} else {
			method = core.MethodRule
		}

		report, err := classify(ctx, batch, rules, method, messages, explain)
		if err != nil {
			return err
		}
		return writeReport(cmd.OutOrStdout(), report, format)
	})
}

// report is the printed result of one run
type report struct {
	Method      core.Method                 `json:"method" yaml:"method"`
	Categorized core.Categorization         `json:"categorized" yaml:"categorized"`
	Messages    []reportMessage             `json:"messages" yaml:"messages"`
	Scores      map[string]classifier.Score `json:"scores,omitempty" yaml:"scores,omitempty"`
}

type reportMessage struct {
	ID       string        `json:"id" yaml:"id"`
	Sender   string        `json:"sender" yaml:"sender"`
	Preview  string        `json:"preview" yaml:"preview"`
	Priority core.Priority `json:"priority" yaml:"priority"`
	Keywords []string      `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

func readMessages(r io.Reader) ([]core.Message, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("no messages in input")
	}

	var messages []core.Message
	if strings.HasPrefix(trimmed, "{") {
		var wrapped struct {
			Messages []core.Message `json:"messages"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to parse input: %w", err)
		}
		messages = wrapped.Messages
	} else if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}
	return messages, nil
}

func classify(
	ctx context.Context,
	batch core.BatchClassifier,
	rules *classifier.Classifier,
	method core.Method,
	messages []core.Message,
	withScores bool,
) (*report, error) {
	ptrs := make([]*core.Message, len(messages))
	for i := range messages {
		messages[i].Priority = core.PriorityUnassigned
		messages[i].EnsureID(core.DefaultIdentityLength)
		ptrs[i] = &messages[i]
	}

	categorized, err := batch.Analyze(ctx, ptrs)
	if err != nil {
		return nil, err
	}

	r := &report{Method: method, Categorized: categorized}
	for _, m := range messages {
		r.Messages = append(r.Messages, reportMessage{
			ID:       m.ID,
			Sender:   m.Sender,
			Preview:  m.Preview,
			Priority: m.Priority,
			Keywords: m.Keywords,
		})
	}
	if withScores {
		r.Scores = make(map[string]classifier.Score, len(messages))
		for i := range messages {
			r.Scores[messages[i].ID] = rules.Explain(&messages[i])
		}
	}
	return r, nil
}

func writeReport(w io.Writer, r *report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
