package cmd

import (
	"context"
	"fmt"
	"net/http"
	"syscall"
	"time"

	"github.com/omnivector/jobbergate-agent/agent"
	"github.com/omnivector/jobbergate-agent/config"
	"github.com/omnivector/jobbergate-agent/jobbergate"
	"github.com/omnivector/jobbergate-agent/logger"
	"github.com/omnivector/jobbergate-agent/slurm"
	"github.com/omnivector/jobbergate-agent/util"
	"github.com/omnivector/jobbergate-agent/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newStartCommand() *cobra.Command {
	var configFile string
	flagConf := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the agent reconciliation loops.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := config.DefaultConfig()
			if err := config.ParseFile(configFile, &conf); err != nil {
				return err
			}
			// Explicitly-set flags win over the config file.
			applyFlagOverrides(cmd.Flags(), &conf, flagConf)
			return Start(context.Background(), conf)
		},
	}

	cmd.Flags().AddFlagSet(startFlags(&flagConf, &configFile))
	return cmd
}

// startFlags returns the flag set for the "start" command, bound to a
// staging config.
func startFlags(conf *config.Config, configFile *string) *pflag.FlagSet {
	f := pflag.NewFlagSet("start", pflag.ContinueOnError)
	f.StringVarP(configFile, "config", "c", "", "Config file path")
	f.StringVar(&conf.API.Address, "api-address", conf.API.Address, "Remote job API address")
	f.StringVar(&conf.API.Token, "token", conf.API.Token, "Remote job API bearer token")
	f.StringVar(&conf.Logger.Level, "log-level", conf.Logger.Level, "Logging level (debug, info, warn, error)")
	f.StringVar(&conf.Agent.WorkDir, "work-dir", conf.Agent.WorkDir, "Default job working directory")
	f.StringVar(&conf.Agent.MetricsAddress, "metrics-address", conf.Agent.MetricsAddress, "Serve prometheus metrics on this address")
	f.Var(&conf.Agent.SubmissionInterval, "submission-interval", "Submission reconciler polling interval")
	f.Var(&conf.Agent.StatusInterval, "status-interval", "Status reconciler polling interval")
	return f
}

func applyFlagOverrides(f *pflag.FlagSet, conf *config.Config, flagConf config.Config) {
	if f.Changed("api-address") {
		conf.API.Address = flagConf.API.Address
	}
	if f.Changed("token") {
		conf.API.Token = flagConf.API.Token
	}
	if f.Changed("log-level") {
		conf.Logger.Level = flagConf.Logger.Level
	}
	if f.Changed("work-dir") {
		conf.Agent.WorkDir = flagConf.Agent.WorkDir
	}
	if f.Changed("metrics-address") {
		conf.Agent.MetricsAddress = flagConf.Agent.MetricsAddress
	}
	if f.Changed("submission-interval") {
		conf.Agent.SubmissionInterval = flagConf.Agent.SubmissionInterval
	}
	if f.Changed("status-interval") {
		conf.Agent.StatusInterval = flagConf.Agent.StatusInterval
	}
}

// Start runs the agent until the context is canceled or a shutdown
// signal arrives.
func Start(pctx context.Context, conf config.Config) error {
	log := logger.NewLogger("agent", conf.Logger)
	log.Info("starting agent", version.LogFields()...)

	// Log the active config at debug, with credentials blanked.
	redacted := conf
	redacted.API.Token = ""
	if b, err := config.ToYaml(redacted); err == nil {
		log.Debug("configuration", "config", string(b))
	}

	client, err := jobbergate.NewClient(conf.API, log.Sub("api"))
	if err != nil {
		return fmt.Errorf("setting up API client: %v", err)
	}
	sc := slurm.NewCLI(conf.Slurm, log.Sub("slurm"))
	a := agent.New(conf, client, sc, log)

	ctx := util.SignalContext(pctx, syscall.SIGINT, syscall.SIGTERM)

	if conf.Agent.MetricsAddress != "" {
		srv := metricsServer(conf.Agent.MetricsAddress)
		go func() {
			log.Info("serving metrics", "address", conf.Agent.MetricsAddress)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server failed", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			srv.Shutdown(sctx)
		}()
	}

	a.Run(ctx)
	log.Info("agent stopped")
	return nil
}

func metricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux}
}
