package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Harshitk-cp/mentora/internal/config"
	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/Harshitk-cp/mentora/internal/model"
	"github.com/Harshitk-cp/mentora/internal/service"
	"github.com/Harshitk-cp/mentora/internal/store"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every subcommand shares once the root command has run.
type app struct {
	cfg *config.CLI
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "mentora",
		Short:         "Wellbeing predictions from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			home, _ := os.UserHomeDir()
			c, err := config.LoadCLI(config.DefaultCLIDirs(home)...)
			if err != nil {
				return eris.Wrap(err, "load config")
			}
			if dir, _ := cmd.Flags().GetString("artifacts"); dir != "" {
				c.ArtifactsDir = dir
			}
			if path, _ := cmd.Flags().GetString("history-db"); path != "" {
				c.History.Path = path
			}
			a.cfg = c

			if err := config.InitLogger(c.Log); err != nil {
				return eris.Wrap(err, "init logger")
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}
	root.PersistentFlags().String("artifacts", "", "artifact bundle directory (overrides artifacts_dir)")
	root.PersistentFlags().String("history-db", "", "SQLite history file (overrides history.path)")

	root.AddCommand(
		newPredictCmd(a),
		newHistoryCmd(a),
		newSchemaCmd(),
		newTipsCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var serviceAliases = map[string]domain.ServiceName{
	"stress":           domain.ServiceStress,
	"academic":         domain.ServiceAcademic,
	"mental":           domain.ServiceMental,
	"mental_health":    domain.ServiceMental,
	"mobile":           domain.ServiceMobile,
	"mobile_addiction": domain.ServiceMobile,
}

func lookup(name string, variant service.Variant) (*service.Definition, error) {
	svc, ok := serviceAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown service %q (want stress, academic, mental_health or mobile_addiction)", name)
	}
	def, ok := service.Lookup(svc, variant)
	if !ok {
		return nil, fmt.Errorf("service %s has no %s variant", svc, variant)
	}
	return def, nil
}

func (a *app) pipeline(def *service.Definition) (*service.Pipeline, error) {
	b, err := model.LoadFile(filepath.Join(a.cfg.ArtifactsDir, def.Bundle+".yaml"))
	if err != nil {
		return nil, err
	}
	pipe, err := service.NewPipeline(def, b)
	if err != nil {
		return nil, eris.Wrap(err, "bind artifact bundle")
	}
	zap.L().Debug("artifact bundle loaded", zap.String("bundle", b.Name), zap.String("version", b.Version))
	return pipe, nil
}

func (a *app) openHistory(ctx context.Context) (*store.SQLiteHistory, error) {
	h, err := store.NewSQLite(a.cfg.History.Path)
	if err != nil {
		return nil, err
	}
	if err := h.Migrate(ctx); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}
