// -- cmd/scan.go --
package cmd

import (
	"fmt"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/xkilldash9x/focuskit/internal/focus"
	"github.com/xkilldash9x/focuskit/internal/observability"
	"github.com/xkilldash9x/focuskit/internal/page"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// scanReport is the JSON shape emitted by the scan command.
type scanReport struct {
	File      string   `json:"file"`
	Container string   `json:"container"`
	Focusable []string `json:"focusable"`
	Tabbable  []string `json:"tabbable"`
}

func newScanCommand() *cobra.Command {
	var (
		containerID string
		selectors   []string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "scan <file.html>",
		Short: "Print the focusable and tabbable order of a container.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, container, err := loadContainer(args[0], containerID)
			if err != nil {
				return err
			}

			opts := focus.ScanOptions{
				SkipHidden:      cfg.Probe.Navigator.SkipHidden,
				SkipDisabled:    cfg.Probe.Navigator.SkipDisabled,
				CustomSelectors: append(cfg.Probe.Navigator.CustomSelectors, selectors...),
			}

			report := scanReport{
				File:      args[0],
				Container: nodeLabel(container),
				Focusable: labelAll(focus.Focusable(doc, container, opts)),
				Tabbable:  labelAll(focus.Tabbable(doc, container, opts)),
			}
			observability.GetLogger().Debug("scan complete",
				zap.Int("focusable", len(report.Focusable)),
				zap.Int("tabbable", len(report.Tabbable)))

			if asJSON {
				out, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding report: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "container: %s\n", report.Container)
			fmt.Fprintln(cmd.OutOrStdout(), "tab order:")
			for i, label := range report.Tabbable {
				fmt.Fprintf(cmd.OutOrStdout(), "  %2d. %s\n", i+1, label)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&containerID, "container", "", "id of the container element (default: body)")
	cmd.Flags().StringArrayVar(&selectors, "selector", nil, "additional XPath selectors to include")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the report as JSON")
	return cmd
}

// loadContainer parses the document and resolves the scan root.
func loadContainer(path, containerID string) (*page.Document, *html.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	doc, err := page.Load(f)
	if err != nil {
		return nil, nil, err
	}

	container := doc.Body()
	if containerID != "" {
		container = doc.ElementByID(containerID)
		if container == nil {
			return nil, nil, fmt.Errorf("no element with id %q in %s", containerID, path)
		}
	}
	if container == nil {
		return nil, nil, fmt.Errorf("document %s has no body", path)
	}
	return doc, container, nil
}

// nodeLabel renders a node as tag#id, tag.class, or tag[text] for human and
// JSON output.
func nodeLabel(n *html.Node) string {
	if n == nil {
		return "<none>"
	}
	var sb strings.Builder
	sb.WriteString(n.Data)
	if id, ok := page.Attr(n, "id"); ok && id != "" {
		sb.WriteString("#" + id)
		return sb.String()
	}
	if class, ok := page.Attr(n, "class"); ok && class != "" {
		sb.WriteString("." + strings.Fields(class)[0])
		return sb.String()
	}
	if text := firstText(n); text != "" {
		fmt.Fprintf(&sb, "[%s]", text)
	}
	return sb.String()
}

func labelAll(nodes []*html.Node) []string {
	labels := make([]string, len(nodes))
	for i, n := range nodes {
		labels[i] = nodeLabel(n)
	}
	return labels
}

func firstText(n *html.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text := strings.TrimSpace(c.Data)
			if text == "" {
				continue
			}
			if len(text) > 24 {
				text = text[:24] + "..."
			}
			return text
		}
	}
	return ""
}
