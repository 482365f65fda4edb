package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/troop78/troophub/internal/archivesync"
	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/policy"
	"github.com/troop78/troophub/internal/roster"
	"github.com/troop78/troophub/internal/search"
	"github.com/troop78/troophub/internal/viewas"
)

// resolveViewer turns --as into a viewer. A member id switches to that member; a role switches to
// the first member holding it unless a patrol is given, as the role switcher does.
func resolveViewer(app *App, as, patrol string) (policy.Viewer, error) {
	if as == "" {
		return policy.Guest, nil
	}
	repo := viewas.NewRepository(app.store)
	if m, err := repo.GetByID(app.ctx, as); err == nil {
		return policy.ViewerFor(*m), nil
	}
	role := models.Role(strings.ToLower(as))
	if !role.Valid() {
		return policy.Viewer{}, fmt.Errorf("--as %q is neither a member id nor a role", as)
	}
	v := policy.Viewer{Role: role, Patrol: patrol}
	if role != models.RoleGuest && patrol == "" {
		if m := repo.FirstWithRole(app.ctx, role); m != nil {
			v = policy.ViewerFor(*m)
		}
	}
	return v, nil
}

func policyCmd(app *App) *cobra.Command {
	var as, patrol string
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Print the capability table, or one viewer's capability summary with --as",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if as != "" {
				v, err := resolveViewer(app, as, patrol)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(policy.Capabilities(v))
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			printf(tw, "CAPABILITY\tROLES\n")
			for _, c := range policy.AllCapabilities {
				roles := make([]string, 0, len(models.Roles))
				for _, r := range policy.HoldersOf(c) {
					roles = append(roles, string(r))
				}
				if c == policy.ViewPhone {
					roles = append(roles, string(models.RolePatrolLeader)+" (own patrol)")
				}
				printf(tw, "%s\t%s\n", c, strings.Join(roles, ", "))
			}
			printf(tw, "\npolicy version %d\n", policy.PolicyVersion)
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "Member id or role to evaluate")
	cmd.Flags().StringVar(&patrol, "patrol", "", "Patrol of the viewer when --as is a role")
	return cmd
}

func rosterCmd(app *App) *cobra.Command {
	var as, patrol, query string
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "List the roster as a viewer sees it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := resolveViewer(app, as, patrol)
			if err != nil {
				return err
			}
			scope, ok := policy.RosterScope(v)
			if !ok {
				return fmt.Errorf("%s may not open the roster", v.Role.Label())
			}
			members, _ := roster.NewRepository(app.store).List(app.ctx, scope, roster.Filter{Query: query})
			app.logger.Info("roster listed", zap.String("role", string(v.Role)), zap.Int("count", len(members)))

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			printf(tw, "ID\tNAME\tPATROL\tRANK\tPHONE\tADDRESS\tMEDICAL\n")
			for _, m := range members {
				mv := policy.Project(v, m)
				printf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", mv.ID, mv.Name, mv.Patrol, mv.Rank, mv.Phone, mv.Address, mv.MedicalStatus)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&as, "as", string(models.RoleScoutmaster), "Member id or role to view as")
	cmd.Flags().StringVar(&patrol, "patrol", "", "Patrol of the viewer when --as is a role")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Filter by name, email or rank")
	return cmd
}

func searchCmd(app *App) *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search members, trips, photos and newsletters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := resolveViewer(app, as, "")
			if err != nil {
				return err
			}
			res := search.NewRepository(app.store).Search(app.ctx, v, args[0])

			out := cmd.OutOrStdout()
			printf(out, "%d results for %q\n", res.Total, res.Query)
			for _, m := range res.Members {
				printf(out, "  member      %s (%s)\n", m.Name, m.Patrol)
			}
			for _, t := range res.Trips {
				printf(out, "  trip        %s\n", t.Name)
			}
			for _, p := range res.Photos {
				printf(out, "  photo       %s\n", p.Event)
			}
			for _, n := range res.Newsletters {
				printf(out, "  newsletter  %s\n", n.Title)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "Member id or role to search as (default guest)")
	return cmd
}

func syncCmd(app *App) *cobra.Command {
	var speed float64
	var quiet bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Play the archive sync script in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if speed < 0 {
				return fmt.Errorf("speed must not be negative")
			}
			out := cmd.OutOrStdout()
			phase := ""
			seq := archivesync.NewSequencer(archivesync.DefaultScript(archivesync.DefaultFiles), speed)
			err := seq.Run(cmd.Context(), func(ev models.SyncEvent) {
				if ev.Phase != phase {
					phase = ev.Phase
					printf(out, "== %s (%.0f%%)\n", phase, ev.Progress)
				}
				if ev.Line != nil && !quiet {
					printf(out, "%s\n", ev.Line.Message)
				}
				if ev.Done {
					printf(out, "done: %d files processed\n", ev.FilesProcessed)
				}
			})
			if err != nil {
				app.logger.Warn("sync interrupted", zap.Error(err))
			}
			return err
		},
	}
	cmd.Flags().Float64Var(&speed, "speed", 1, "Delay multiplier; 0 plays instantly")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Print phases only")
	return cmd
}
