// @title Mock Interview 后端 API
// @version 1.0
// @description AI 模拟面试服务：出题、语音作答采集、自动评分与反馈汇总。

// @contact.name API支持
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"mock_interview_backend/internal/app"
	"mock_interview_backend/internal/config"
	"mock_interview_backend/internal/util"

	"github.com/spf13/cobra"
)

func main() {
	var configDir string

	loadConfig := func() *config.Config {
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		return cfg
	}

	rootCmd := &cobra.Command{
		Use:   "mock-interview",
		Short: "AI mock interview backend",
	}
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "configs", "directory containing config.yaml")

	var forceMigrate bool
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket server",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			// 启动时强制执行数据库迁移（即使是 release 模式）
			cfg.ForceMigrate = forceMigrate
			app.NewApp(cfg).Run()
		},
	}
	serveCmd.Flags().BoolVar(&forceMigrate, "migrate", false, "run database migrations on startup even in release mode")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if err := app.Migrate(cfg); err != nil {
				return err
			}
			log.Println("数据库迁移完成，退出程序")
			return nil
		},
	}

	var email, name string
	var ttl time.Duration
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed JWT for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if cfg.JWT.Secret == "" {
				return fmt.Errorf("jwt.secret is not configured")
			}
			if ttl <= 0 {
				ttl = cfg.JWT.ExpireTime
			}
			token, err := util.GenerateJWT(email, name, cfg.JWT.Secret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&email, "email", "", "user email carried in the token")
	tokenCmd.Flags().StringVar(&name, "name", "", "display name")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, defaults to jwt.expire_hours")
	_ = tokenCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
