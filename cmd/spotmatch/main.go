package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/spotmatch/internal/profile"
	"github.com/hrygo/spotmatch/server"
	"github.com/hrygo/spotmatch/store"
	"github.com/hrygo/spotmatch/store/db"
)

const greetingBanner = `spotmatch - find a partner, pick a time, show up.`

var rootCmd = &cobra.Command{
	Use:   "spotmatch",
	Short: "An availability matching and session negotiation service for workout partners",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		instanceProfile, err := profile.GetProfile()
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			return fmt.Errorf("create db driver: %w", err)
		}
		storeInstance := store.New(dbDriver, instanceProfile)

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			return fmt.Errorf("create server: %w", err)
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			slog.Info("received signal, shutting down", slog.String("signal", sig.String()))
			cancel()
		}()

		fmt.Println(greetingBanner)
		fmt.Printf("version %s, mode %s, driver %s\n",
			instanceProfile.Version, instanceProfile.Mode, instanceProfile.Driver)

		return s.Start(ctx)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("failed to run command", slog.Any("error", err))
		os.Exit(1)
	}
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8230)
	viper.SetDefault("data", "")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of the server, can be "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8230, "port of the server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database connection string")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("spotmatch")
	viper.AutomaticEnv()
}
