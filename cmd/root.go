package cmd

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "career-boost"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "career-boost reviews your resume with AI, rewrites it for ATS and runs mock interviews",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

var envBindings = map[string]string{
	"ai.gemini.api-key-file":    "GEMINI_API_KEY_FILE",
	"ai.anthropic.api-key-file": "ANTHROPIC_API_KEY_FILE",
	"ai.openai.api-key-file":    "OPENAI_API_KEY_FILE",
	"ai.provider":               "CAREER_BOOST_AI_PROVIDER",
	"metrics.listen":            "CAREER_BOOST_METRICS_LISTEN",
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is career-boost.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command. Other commands work without it.
	if runCmd.CalledAs() == "" {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Defaults are enough to run with an API key from the environment, so a
	// missing default config file is fine. An explicit or broken one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}
