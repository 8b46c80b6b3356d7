// -- cmd/tab.go --
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xkilldash9x/focuskit/internal/focus"
	"github.com/xkilldash9x/focuskit/internal/observability"
	"github.com/xkilldash9x/focuskit/internal/page"
	"go.uber.org/zap"
)

// tabReport is the JSON shape emitted by the tab command.
type tabReport struct {
	File        string      `json:"file"`
	Container   string      `json:"container"`
	Transitions []tabStep   `json:"transitions"`
	History     []histEntry `json:"history"`
	RestoredTo  string      `json:"restored_to,omitempty"`
}

type tabStep struct {
	Press   int    `json:"press"`
	Focused string `json:"focused"`
}

type histEntry struct {
	Node   string `json:"node"`
	Reason string `json:"reason"`
}

func newTabCommand() *cobra.Command {
	var (
		containerID string
		presses     int
		shift       bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "tab <file.html>",
		Short: "Activate a focus trap on a container and simulate Tab presses.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, container, err := loadContainer(args[0], containerID)
			if err != nil {
				return err
			}

			logger := observability.GetLogger()
			tracker := focus.NewHistoryTracker(doc, logger)
			defer tracker.Close()
			act := focus.NewActuator(doc, tracker, logger)

			trapCfg := focus.TrapConfig{
				Enabled:                 cfg.Probe.Trap.Enabled,
				RestoreFocus:            cfg.Probe.Trap.RestoreFocus,
				AutoFocus:               cfg.Probe.Trap.AutoFocus,
				PreventScroll:           cfg.Probe.Trap.PreventScroll,
				AllowOutsideClick:       cfg.Probe.Trap.AllowOutsideClick,
				EscapeDeactivates:       cfg.Probe.Trap.EscapeDeactivates,
				ClickOutsideDeactivates: cfg.Probe.Trap.ClickOutsideDeactivates,
				ReturnFocusOnDeactivate: cfg.Probe.Trap.ReturnFocusOnDeactivate,
			}

			trap := focus.NewTrap(doc, container, trapCfg, act, logger)
			trap.Activate()
			doc.FlushFrames() // run the deferred autofocus
			if !trap.IsActive() {
				return fmt.Errorf("trap failed to activate on %s", nodeLabel(container))
			}
			logger.Debug("trap active", zap.String("container", nodeLabel(container)))

			report := tabReport{
				File:      args[0],
				Container: nodeLabel(container),
			}
			for i := 1; i <= presses; i++ {
				doc.DispatchKeyDown(&page.KeyboardEvent{Key: page.KeyTab, Shift: shift})
				report.Transitions = append(report.Transitions, tabStep{
					Press:   i,
					Focused: nodeLabel(doc.ActiveElement()),
				})
			}

			trap.Deactivate()
			doc.FlushFrames() // run the deferred restore
			if restored := doc.ActiveElement(); restored != nil {
				report.RestoredTo = nodeLabel(restored)
			}
			for _, e := range tracker.History() {
				report.History = append(report.History, histEntry{
					Node:   nodeLabel(e.Node),
					Reason: string(e.Reason),
				})
			}

			return writeTabReport(cmd, report, asJSON)
		},
	}

	cmd.Flags().StringVar(&containerID, "container", "", "id of the container element (default: body)")
	cmd.Flags().IntVar(&presses, "presses", 5, "number of Tab presses to simulate")
	cmd.Flags().BoolVar(&shift, "shift", false, "simulate Shift+Tab (backward cycling)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the report as JSON")
	return cmd
}

func writeTabReport(cmd *cobra.Command, report tabReport, asJSON bool) error {
	if asJSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "container: %s\n", report.Container)
	for _, step := range report.Transitions {
		fmt.Fprintf(cmd.OutOrStdout(), "  tab %2d -> %s\n", step.Press, step.Focused)
	}
	if report.RestoredTo != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "restored -> %s\n", report.RestoredTo)
	}
	return nil
}
