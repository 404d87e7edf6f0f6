package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fleetdeck/fleetdeck/internal/engine"
	"github.com/fleetdeck/fleetdeck/internal/orchestration"
	"github.com/fleetdeck/fleetdeck/internal/telemetry"
	"github.com/fleetdeck/fleetdeck/models"
)

var (
	outputFormat   string
	targetServices []string
)

var stacksCmd = &cobra.Command{
	Use:   "stacks",
	Short: "Inspect and operate container stacks",
	Long: `Inspect the stacks derived from the containers on the engine socket
and drive lifecycle actions against them.

Containers sharing a Compose project label form one stack; containers
without project labels appear as single-service stacks.

Examples:
  # List every observed stack
  fleetdeck stacks list

  # Show one stack with its services
  fleetdeck stacks status web-shop

  # Restart only the api service of a stack
  fleetdeck stacks restart web-shop --service api`,
}

// newOrchestrator dials the configured engine socket and wraps it in the
// orchestration facade. The caller closes the returned client.
func newOrchestrator() (*orchestration.Orchestrator, *engine.Client, error) {
	eng, err := engine.New(cfg.Engine.Socket, cfg.Engine.RequestTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize engine client: %w", err)
	}
	return orchestration.New(eng, telemetry.Log{}), eng, nil
}

var stacksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all observed stacks",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, eng, err := newOrchestrator()
		if err != nil {
			return err
		}
		defer eng.Close()

		stacks, err := orch.ListStacks(cmd.Context())
		if err != nil {
			return describeError(err)
		}

		if len(stacks) == 0 {
			fmt.Println("No stacks found.")
			return nil
		}

		switch outputFormat {
		case "json":
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(stacks)
		case "yaml":
			return yaml.NewEncoder(os.Stdout).Encode(stacks)
		}

		// Table format
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSERVICES\tOWNERSHIP")
		for _, st := range stacks {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				st.ID,
				st.Name,
				st.Status,
				len(st.Services),
				st.Ownership.Kind,
			)
		}
		w.Flush()

		return nil
	},
}

var stacksStatusCmd = &cobra.Command{
	Use:   "status <stack-id>",
	Short: "Show detailed status of a stack",
	Long:  "Show detailed status information including per-service state and ports.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, eng, err := newOrchestrator()
		if err != nil {
			return err
		}
		defer eng.Close()

		st, err := orch.GetStack(cmd.Context(), args[0])
		if err != nil {
			return describeError(err)
		}

		switch outputFormat {
		case "json":
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(st)
		case "yaml":
			return yaml.NewEncoder(os.Stdout).Encode(st)
		}

		fmt.Printf("Stack Information:\n")
		fmt.Printf("  ID:        %s\n", st.ID)
		fmt.Printf("  Name:      %s\n", st.Name)
		fmt.Printf("  Status:    %s\n", st.Status)
		fmt.Printf("  Ownership: %s\n", st.Ownership.Kind)
		if st.Path != "" {
			fmt.Printf("  Path:      %s\n", st.Path)
		}
		fmt.Printf("  Observed:  %s\n", st.ObservedAt.Format("2006-01-02 15:04:05"))

		fmt.Printf("\nServices:\n")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tIMAGE\tREPLICAS\tSTATE\tPORTS")
		for _, svc := range st.Services {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				svc.Name,
				svc.Image,
				svc.Replicas,
				svc.State,
				strings.Join(svc.Ports, ", "),
			)
		}
		w.Flush()

		return nil
	},
}

// newActionCommand builds one lifecycle subcommand; up, down, restart and
// pull only differ in the dispatched action.
func newActionCommand(action models.Action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <stack-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, eng, err := newOrchestrator()
			if err != nil {
				return err
			}
			defer eng.Close()

			outcome, err := orch.PerformAction(cmd.Context(), args[0], models.ActionRequest{
				Action:   action,
				Services: targetServices,
			})
			if err != nil {
				return describeError(err)
			}

			fmt.Printf("%s: %s\n", outcome.Stack.Name, outcome.Description)
			fmt.Printf("Stack status: %s\n", outcome.Stack.Status)
			return nil
		},
	}
}

// describeError rewrites the well-known domain errors into operator-facing
// messages; everything else passes through.
func describeError(err error) error {
	if errors.Is(err, orchestration.ErrStackNotFound) {
		return fmt.Errorf("stack not found (check 'fleetdeck stacks list' for known stacks)")
	}
	if engine.IsUnavailable(err) {
		return fmt.Errorf("container engine unavailable at %s: %w", cfg.Engine.Socket, err)
	}
	return err
}

func init() {
	stacksListCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	stacksStatusCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, json, yaml)")

	stacksCmd.AddCommand(stacksListCmd)
	stacksCmd.AddCommand(stacksStatusCmd)

	for _, sub := range []*cobra.Command{
		newActionCommand(models.ActionUp, "Start every container of a stack"),
		newActionCommand(models.ActionDown, "Stop every container of a stack"),
		newActionCommand(models.ActionRestart, "Restart every container of a stack"),
		newActionCommand(models.ActionPull, "Pull the current image of every service"),
	} {
		sub.Flags().StringSliceVar(&targetServices, "service", nil, "limit the action to named services (repeatable)")
		stacksCmd.AddCommand(sub)
	}
}
