package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-gum/xmltree"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xmltree",
		Short: "Scan the children of an xml documents root element",
		Long: `xmltree reads an xml document and prints the children of its root element.

The keyvalue command prints one line per child element, holding the name of the
child and its text content separated by a tab. The elements command prints the
names of the child elements only.

Names are printed in clark notation, "{namespace}local". If a namespace is given
using --namespace, children in that namespace are printed by their local name.

Pass "-" as file to read the document from stdin.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log scanner activity to stderr")

	keyValueCmd := &cobra.Command{
		Use:   "keyvalue <file>",
		Short: "Print the children of the root element with their text content",
		Args:  cobra.ExactArgs(1),
		RunE:  scanCommand(printKeyValues),
	}

	elementsCmd := &cobra.Command{
		Use:   "elements <file>",
		Short: "Print the names of the children of the root element",
		Args:  cobra.ExactArgs(1),
		RunE:  scanCommand(printElements),
	}

	addScanFlags(keyValueCmd.Flags())
	addScanFlags(elementsCmd.Flags())

	rootCmd.AddCommand(keyValueCmd, elementsCmd)

	return rootCmd
}

func addScanFlags(flags *pflag.FlagSet) {
	flags.StringP("namespace", "n", "", "print children in this namespace by their local name")
}

type scanFunc func(out io.Writer, r *xmltree.Reader, namespace []string) error

type cobraFunc func(cmd *cobra.Command, args []string) error

func scanCommand(scan scanFunc) cobraFunc {
	return func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()

		var namespace []string
		if value, ok := getParamB(flags, "namespace"); ok {
			namespace = append(namespace, value)
		}

		input, err := openInput(cmd, args[0])
		if err != nil {
			return err
		}

		defer input.Close()

		r := xmltree.NewReader(input)

		if verbose, _ := flags.GetBool("verbose"); verbose {
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})
			r = r.WithSlogHandler(handler)
		}

		if err := r.MoveToElement(); err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		return scan(cmd.OutOrStdout(), r, namespace)
	}
}

func printKeyValues(out io.Writer, r *xmltree.Reader, namespace []string) error {
	values, err := xmltree.KeyValue(r, namespace...)
	if err != nil {
		return err
	}

	for el := values.Front(); el != nil; el = el.Next() {
		if _, err := fmt.Fprintf(out, "%s\t%s\n", el.Key, describe(el.Value)); err != nil {
			return err
		}
	}

	return nil
}

func printElements(out io.Writer, r *xmltree.Reader, namespace []string) error {
	names, err := xmltree.ElementList(r, namespace...)
	if err != nil {
		return err
	}

	for _, name := range names {
		if _, err := fmt.Fprintln(out, name); err != nil {
			return err
		}
	}

	return nil
}

func describe(value any) string {
	switch value := value.(type) {
	case nil:
		return ""
	case string:
		return value
	case []xmltree.Node:
		return fmt.Sprintf("<%d elements>", len(value))
	default:
		return fmt.Sprint(value)
	}
}

func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}

	return os.Open(path)
}

// getParamB returns the value of a flag and whether it was set explicitly.
func getParamB(flags *pflag.FlagSet, key string) (string, bool) {
	value, _ := flags.GetString(key)
	return value, flags.Changed(key)
}
