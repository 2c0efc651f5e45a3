package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	logger "github.com/sirupsen/logrus"

	"git.thinkinpower.net/cardbin/bdata"
	"git.thinkinpower.net/cardbin/config"
	"git.thinkinpower.net/cardbin/data"
	"git.thinkinpower.net/cardbin/middleware"
	"git.thinkinpower.net/cardbin/route"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the BIN data HTTP service",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "-p 8080")
	serveCmd.Flags().StringP("mode", "m", "", "-m [dev|test|release]")
	serveCmd.Flags().StringP("data", "d", "", "-d /home/testuser/bindata")
	serveCmd.Flags().String("database", "", "[memory|redis]")
}

func setMode(mode string) {
	switch mode {
	case data.RunModeDev:
		gin.SetMode(gin.DebugMode)
	case data.RunModeTest:
		gin.SetMode(gin.TestMode)
	case data.RunModeRelease:
		gin.SetMode(gin.ReleaseMode)
	}
}

// applyServeFlags lets explicit flags win over the loaded configuration.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("mode") {
		cfg.Server.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("data") {
		cfg.Server.DataDir, _ = flags.GetString("data")
	}
	if flags.Changed("database") {
		cfg.Server.Database, _ = flags.GetString("database")
	}
}

func newEngine(mode string) *gin.Engine {
	setMode(mode)
	r := gin.New()
	r.Use(middleware.Log())
	r.Use(middleware.Recovery())
	route.Register(r)
	return r
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg)

	if err = bdata.SetBinDatabaseMode(cfg.Server.Database, cfg.ToBinData()); err != nil {
		return errors.Wrap(err, "prepare bin database")
	}
	defer bdata.Close()

	//启动http服务
	logger.Info("启动http服务...")
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        newEngine(cfg.Server.Mode),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	go func() {
		logger.Infof("启动http服务成功, port: %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("listen: %s", err.Error())
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down Server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server shutdown")
	}
	logger.Info("Server exit.")
	return nil
}
