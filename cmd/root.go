package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/xlsxcalendar/xlsxcalendar/internal/utils"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/config"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "xlsxcalendar",
	Short: "Generate a spreadsheet calendar with weekends, holidays and imported attendance.",
	Long: `xlsxcalendar writes a day-per-column calendar into an .xlsx workbook, with merged
year, month and ISO week bands, marked weekends and holidays, and optional attendance
imported from ESS exports.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.xlsxcalendar.yaml)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(utils.ExpandPath(cfgFile))
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".xlsxcalendar")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	if err := utils.SetLogLevel(levelString); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := filepath.Join(home, ".xlsxcalendar.yaml")
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				utils.Log.Warnf("Error creating config file: %s", err)
			} else {
				utils.Log.Infof("Created %s, set start_date and end_date there", configPath)
			}
			return
		}
		fmt.Printf("Error reading config file: %s\n", err)
		os.Exit(1)
	}
	utils.Log.Debugf("Using config file %s", viper.ConfigFileUsed())
}
