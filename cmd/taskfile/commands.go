package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"taskfile/internal/config"
	"taskfile/internal/export"
	"taskfile/internal/server"
	"taskfile/internal/taskfile"
	"taskfile/pkg/bodykind"
	"taskfile/pkg/markdown"
	"taskfile/pkg/task"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (a *app) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Parse and validate task files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				if _, _, err := a.readTask(path); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d task files invalid", failed, len(args))
			}
			return nil
		},
	}
}

func (a *app) newFmtCmd() *cobra.Command {
	var write, showDiff bool

	cmd := &cobra.Command{
		Use:   "fmt FILE...",
		Short: "Print or rewrite task files in canonical form",
		Long: `Print the canonical rendering of each task file.

With -w the files are rewritten in place. A file that changed on disk after
it was read is left alone and reported as a conflict.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				sess, t, err := a.readTask(path)
				if err != nil {
					return err
				}

				if !write {
					data, diff, err := sess.Format(t)
					if err != nil {
						return err
					}
					if showDiff {
						fmt.Fprintln(out, diff)
					} else if _, err := out.Write(data); err != nil {
						return err
					}
					continue
				}

				res, err := sess.Save(t)
				if errors.Is(err, taskfile.ErrConflict) && res != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "External changes to %s:\n%s\n", path, res.ExternalDiff)
				}
				if err != nil {
					return err
				}
				if showDiff && res.Changed {
					fmt.Fprintln(out, res.ProposedDiff)
				}
				slog.Debug("Formatted task file", "path", path, "changed", res.Changed, "checksum", res.NewChecksum)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the file")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Print a diff instead of the formatted task")
	return cmd
}

func (a *app) newShowCmd() *cobra.Command {
	var html bool

	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print a task's header and body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, t, err := a.readTask(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if html {
				_, err := fmt.Fprintln(out, markdown.RenderTask(t))
				return err
			}
			return printTask(out, t)
		},
	}

	cmd.Flags().BoolVar(&html, "html", false, "Render the task as sanitized HTML")
	return cmd
}

func printTask(w io.Writer, t *task.Task) error {
	kind, reason := bodykind.Detect(t.Body)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Title:      %s\n", t.Title)
	fmt.Fprintf(&buf, "Authors:    %s\n", strings.Join(t.Authors, ", "))
	fmt.Fprintf(&buf, "Time Frame: %s\n", t.TimeFrame)
	switch kind {
	case bodykind.KindNone:
		buf.WriteString("Body:       none\n")
	default:
		fmt.Fprintf(&buf, "Body:       %s, %d bytes (%s)\n", kind, len(t.Body), reason)
	}
	if kind == bodykind.KindText || kind == bodykind.KindMarkdown {
		buf.WriteByte('\n')
		buf.Write(t.Body)
		if !bytes.HasSuffix(t.Body, []byte("\n")) {
			buf.WriteByte('\n')
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (a *app) newNewCmd() *cobra.Command {
	var (
		title   string
		authors []string
		on      string
		after   string
		until   string
		from    string
		to      string
		output  string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a task",
		Long: `Create a task from flags. The body is read from stdin; an empty stdin
creates a task without a body.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := timeFrameFromFlags(on, after, until, from, to)
			if err != nil {
				return err
			}

			body, err := readBody(cmd)
			if err != nil {
				return err
			}

			t := &task.Task{
				Title:     title,
				Authors:   authors,
				TimeFrame: tf,
				Body:      body,
			}
			if err := t.Validate(); err != nil {
				return err
			}

			if output == "" {
				return task.Write(cmd.OutOrStdout(), t)
			}

			sess, err := taskfile.Load(output)
			if err != nil {
				return err
			}
			if sess.Exists && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", output)
			}
			if _, err := sess.Save(t); err != nil {
				return err
			}
			slog.Info("Created task", "path", output, "title", t.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Task title")
	cmd.Flags().StringArrayVarP(&authors, "author", "a", nil, "Author, repeat for several")
	cmd.Flags().StringVar(&on, "on", "", `Point in time, "HH:MM YYYY-MM-DD"`)
	cmd.Flags().StringVar(&after, "after", "", "Start of an open-ended interval")
	cmd.Flags().StringVar(&until, "until", "", "Deadline")
	cmd.Flags().StringVar(&from, "from", "", "Start of an interval, requires --to")
	cmd.Flags().StringVar(&to, "to", "", "End of an interval")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing output file")

	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	cmd.MarkFlagsOneRequired("on", "after", "until", "from")
	cmd.MarkFlagsMutuallyExclusive("on", "after", "until", "from")
	cmd.MarkFlagsRequiredTogether("from", "to")
	return cmd
}

func timeFrameFromFlags(on, after, until, from, to string) (task.TimeFrame, error) {
	parse := func(flag, value string) (task.Timestamp, error) {
		ts, err := task.ParseTimestamp(value)
		if err != nil {
			return task.Timestamp{}, fmt.Errorf("--%s: %w", flag, err)
		}
		return ts, nil
	}

	switch {
	case on != "":
		ts, err := parse("on", on)
		return task.OnTime(ts), err
	case after != "":
		ts, err := parse("after", after)
		return task.AfterTime(ts), err
	case until != "":
		ts, err := parse("until", until)
		return task.UntilTime(ts), err
	case from != "":
		start, err := parse("from", from)
		if err != nil {
			return task.TimeFrame{}, err
		}
		end, err := parse("to", to)
		if err != nil {
			return task.TimeFrame{}, err
		}
		return task.Between(start, end)
	}
	return task.TimeFrame{}, errors.New("one of --on, --after, --until or --from is required")
}

// readBody reads the body from stdin. Empty input means no body.
func readBody(cmd *cobra.Command) ([]byte, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Enter the task body, finish with Ctrl-D (empty for none):")
	}
	body, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(body) == 0 {
		return nil, nil
	}
	return body, nil
}

func (a *app) newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export a task as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(a.cfg.ExportFormat)
			if err != nil {
				return err
			}
			_, t, err := a.readTask(args[0])
			if err != nil {
				return err
			}
			return export.Encode(cmd.OutOrStdout(), t, format)
		},
	}

	cmd.Flags().String("format", config.DefaultConfig().ExportFormat, "Output format: json or yaml")
	return cmd
}

func (a *app) newImportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "import [FILE]",
		Short: "Convert a JSON or YAML export back into a task",
		Long: `Read an exported document from FILE, or stdin if FILE is omitted or "-",
and print it as a task.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(a.cfg.ExportFormat)
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			t, err := export.Decode(in, format)
			if err != nil {
				return err
			}

			if output == "" {
				return task.Write(cmd.OutOrStdout(), t)
			}
			sess, err := taskfile.Load(output)
			if err != nil {
				return err
			}
			_, err = sess.Save(t)
			return err
		},
	}

	cmd.Flags().String("format", config.DefaultConfig().ExportFormat, "Input format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func (a *app) newServeCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Browse a directory of task files over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.Run(a.cfg)
		},
	}

	cmd.Flags().StringP("dir", "d", defaults.Dir, "Directory containing .task files")
	cmd.Flags().StringP("port", "p", defaults.Port, "Port to listen on")
	return cmd
}
