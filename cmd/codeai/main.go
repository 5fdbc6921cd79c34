package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/efebarandurmaz/codeai/internal/catalog"
	"github.com/efebarandurmaz/codeai/internal/config"
	"github.com/efebarandurmaz/codeai/internal/normalize"
	"github.com/efebarandurmaz/codeai/internal/observability"
	"github.com/efebarandurmaz/codeai/internal/prompt"
	"github.com/efebarandurmaz/codeai/internal/server"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "codeai",
		Short:        "Normalize model responses into description, body and conclusion",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			observability.InitLogging(observability.LogConfig{Level: cfg.Log.Level, Format: cfg.Log.Format})
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "configs/codeai.yaml", "Config file path")

	rootCmd.AddCommand(
		a.normalizeCmd(),
		a.segmentCmd(),
		a.formatCmd(),
		a.promptCmd(),
		a.suggestCmd(),
		a.serveCmd(),
	)
	return rootCmd
}

func (a *app) catalog() *catalog.Catalog {
	return catalog.New(a.cfg.Catalog.Languages, a.cfg.Catalog.StoryForms, a.cfg.Catalog.BaseURL)
}

// readInput reads the file named by args[0], or stdin when absent or "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}

// extractField pulls the raw response out of an upstream JSON body.
func extractField(input, path string) (string, error) {
	if !gjson.Valid(input) {
		return "", errors.New("input is not valid JSON")
	}
	res := gjson.Get(input, path)
	if !res.Exists() {
		return "", fmt.Errorf("field %q not found in input", path)
	}
	return res.String(), nil
}

func writeJSONTo(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func printResult(w io.Writer, res normalize.ParsedResult) {
	fmt.Fprintf(w, "Description:\n%s\n\nBody:\n%s\n\nConclusion:\n%s\n", res.Description, res.Body, res.Conclusion)
}

func (a *app) normalizeCmd() *cobra.Command {
	var (
		jsonOut        bool
		field          string
		stripReasoning bool
		blocks         bool
	)
	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Normalize a raw model response",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if field != "" {
				if input, err = extractField(input, field); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()

			if blocks {
				found := normalize.FencedBlocks(input)
				if jsonOut {
					if found == nil {
						found = []normalize.CodeBlock{}
					}
					return writeJSONTo(out, found)
				}
				for i, b := range found {
					lang := b.Language
					if lang == "" {
						lang = "text"
					}
					fmt.Fprintf(out, "--- block %d (%s)\n%s\n", i+1, lang, b.Code)
				}
				return nil
			}

			opts := normalize.Options{
				MinSubstantialLength: a.cfg.Normalize.MinSubstantialLength,
				StripReasoning:       stripReasoning || a.cfg.Normalize.StripReasoning,
			}
			result := normalize.NewParser(opts).Normalize(input)
			slog.Debug("Normalized response", "source", result.Source, "input_bytes", len(input))

			if jsonOut {
				return writeJSONTo(out, struct {
					normalize.ParsedResult
					Source normalize.Source `json:"source"`
				}{result.Result, result.Source})
			}
			printResult(out, result.Result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&field, "field", "", "gjson path of the raw response inside a JSON input (e.g. code)")
	cmd.Flags().BoolVar(&stripReasoning, "strip-reasoning", false, "Remove <think> blocks before parsing")
	cmd.Flags().BoolVar(&blocks, "blocks", false, "List fenced code blocks instead of normalizing")
	return cmd
}

func (a *app) segmentCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "segment [file]",
		Short: "Split markup into prose and the first <code> region",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			res := normalize.Segment(input)
			if jsonOut {
				return writeJSONTo(cmd.OutOrStdout(), res)
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func (a *app) formatCmd() *cobra.Command {
	var paragraphs bool
	cmd := &cobra.Command{
		Use:   "format [file]",
		Short: "Render a document or story as paragraphs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if paragraphs {
				fmt.Fprintln(out, strings.Join(normalize.Paragraphs(input), "\n\n"))
				return nil
			}
			fmt.Fprintln(out, normalize.FormatDocument(input))
			return nil
		},
	}
	cmd.Flags().BoolVar(&paragraphs, "paragraphs", false, "Print plain paragraphs instead of HTML")
	return cmd
}

func (a *app) promptCmd() *cobra.Command {
	var (
		req  prompt.Request
		curl bool
	)
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Build a generation prompt",
	}
	cmd.PersistentFlags().BoolVar(&curl, "curl", false, "Also print a curl command for the upstream endpoint")

	run := func(kind prompt.Kind) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			c := a.catalog()
			if err := c.CheckRequest(kind, req); err != nil {
				return err
			}
			text, err := prompt.Build(kind, req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, text)
			if !curl {
				return nil
			}
			command, err := catalog.CurlCommand(c.Endpoint(kind), prompt.Payload(kind, req))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%s\n", command)
			return nil
		}
	}

	codeCmd := &cobra.Command{
		Use:   "code",
		Short: "Prompt for a code example",
		RunE:  run(prompt.KindCode),
	}
	codeCmd.Flags().StringVar(&req.Language, "language", "Python", "Programming language")
	codeCmd.Flags().StringVar(&req.Question, "question", "", "What the code should do")

	documentCmd := &cobra.Command{
		Use:   "document",
		Short: "Prompt for an informational document",
		RunE:  run(prompt.KindDocument),
	}
	documentCmd.Flags().StringVar(&req.DocumentTopic, "topic", "", "Document topic")
	documentCmd.Flags().IntVar(&req.WordCount, "words", 500, "Approximate word count")

	storyCmd := &cobra.Command{
		Use:   "story",
		Short: "Prompt for a story",
		RunE:  run(prompt.KindStory),
	}
	storyCmd.Flags().StringVar(&req.StoryTitle, "title", "", "Story title")
	storyCmd.Flags().StringVar(&req.StoryForm, "form", "Short Story", "Story form")

	cmd.AddCommand(codeCmd, documentCmd, storyCmd)
	return cmd
}

func (a *app) suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <language>",
		Short: "Suggest the canonical spelling of a programming language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.catalog().SuggestLanguage(args[0]))
			return nil
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := a.cfg

	tp, err := observability.InitTracing(ctx, &observability.TracingConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Tracing.Environment,
		OTLPEndpoint:   cfg.Tracing.Endpoint,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	shutdown := server.NewShutdownHandler(&server.ShutdownConfig{
		Timeout: cfg.Server.ShutdownTimeout,
		Signals: server.DefaultShutdownConfig().Signals,
	})
	shutdown.Register(server.TracingShutdownHook(tp.Shutdown))
	shutdown.Start()

	srv := server.New(server.Options{
		Config: cfg.Server,
		Normalize: normalize.Options{
			MinSubstantialLength: cfg.Normalize.MinSubstantialLength,
			StripReasoning:       cfg.Normalize.StripReasoning,
		},
		Catalog: a.catalog(),
		Metrics: observability.Default(),
		Version: version,
	})

	if err := srv.ListenAndServe(shutdown); err != nil {
		shutdown.Shutdown()
		shutdown.Wait()
		return err
	}
	shutdown.Wait()
	slog.Info("codeai stopped")
	return nil
}
