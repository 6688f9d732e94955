package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"irrigation_node/internal/config"
	"irrigation_node/internal/handlers"
	"irrigation_node/internal/hardware"
	"irrigation_node/internal/logger"
	"irrigation_node/internal/repository"
	"irrigation_node/internal/repository/db"
	"irrigation_node/internal/server"
	"irrigation_node/internal/service"
	"irrigation_node/internal/transport"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const httpShutdownTimeout = 10 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the node until SIGINT or SIGTERM",
	Long: `Open the serial link, the sensors and the outputs, then run the telemetry,
command, heartbeat and checkpoint loops. The pump is always switched off before
the process exits.

Examples:
  irrigation-node run
  irrigation-node run --port /dev/ttyUSB1 --sim
  IRRIGATION_HTTP_ENABLED=false irrigation-node run`,
	Args: cobra.NoArgs,
	RunE: runNode,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("port", "p", "", "Serial port of the companion module")
	_ = viper.BindPFlag("serial.port", runCmd.Flags().Lookup("port"))
	runCmd.Flags().IntP("baud", "b", 0, "Baud rate of the companion link")
	_ = viper.BindPFlag("serial.baud", runCmd.Flags().Lookup("baud"))
	runCmd.Flags().String("http-port", "", "Diagnostics API port")
	_ = viper.BindPFlag("http.port", runCmd.Flags().Lookup("http-port"))
	runCmd.Flags().Bool("sim", false, "Use the simulated plant instead of real sensors and outputs")
}

func runNode(cmd *cobra.Command, _ []string) error {
	if sim, _ := cmd.Flags().GetBool("sim"); sim {
		viper.Set("sensors.driver", config.DriverSim)
		viper.Set("actuators.driver", config.DriverSim)
	}
	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}

	log := logger.Get(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	link, err := transport.Open(cfg.Serial.Port, cfg.Serial.Baud)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := link.Close(); cerr != nil {
			log.Warnw("serial_close_failed", "err", cerr)
		}
	}()

	hw, err := hardware.Open(cfg.Sensors, cfg.Actuators, log.Named("hardware"))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := hw.Close(); cerr != nil {
			log.Warnw("hardware_close_failed", "err", cerr)
		}
	}()

	database, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to init sqlite: %w", err)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Warnw("sqlite_close_failed", "err", cerr)
		}
	}()

	repos := repository.NewRepository(database)
	node := service.NewNode(service.NodeConfig{
		TelemetryPeriod: cfg.Node.TelemetryPeriod,
		CommandPeriod:   cfg.Node.CommandPeriod,
		HeartbeatPeriod: cfg.Node.HeartbeatPeriod,
		StatusPeriod:    cfg.Node.StatusPeriod,
		LineCapacity:    cfg.Node.LineCapacity,
		CommandQueue:    cfg.Node.CommandQueue,
	}, hw.Sensors, hw.Outputs, link, repos.EventRepo, repos.SessionRepo, service.SystemClock, log.Named("node"))

	log.Infow("node_configured",
		"serial_port", cfg.Serial.Port,
		"baud", cfg.Serial.Baud,
		"sensors", cfg.Sensors.Driver,
		"actuators", cfg.Actuators.Driver,
		"db", cfg.DB.Path,
	)

	if cfg.HTTP.Enabled {
		services := service.NewService(node, repos, service.AuthConfig{
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
		})
		srv := &server.Server{}
		apiHandler := handlers.NewHandler(services, log.Named("http"))
		go func() {
			log.Infow("http_listening", "port", cfg.HTTP.Port)
			if err := srv.Run(cfg.HTTP.Port, apiHandler.InitRoutes()); err != nil {
				// the node keeps running without its diagnostics API
				log.Errorw("http_server_failed", "err", err)
			}
		}()
		defer shutdownHTTP(srv, log)
	}

	if err := node.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func shutdownHTTP(srv *server.Server, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warnw("http_shutdown_failed", "err", err)
	}
}
