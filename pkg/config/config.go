package config

import "github.com/spf13/viper"

type Config struct {
	Port           string `mapstructure:"PORT"`
	GoogleClientId string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleSecretId string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	RedirectURL    string `mapstructure:"REDIRECT_URL"`
	UsersFile      string `mapstructure:"USERS_FILE"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBName         string `mapstructure:"DB_NAME"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
}

var envs = []string{
	"PORT", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "REDIRECT_URL", "USERS_FILE",
	"DB_HOST", "DB_NAME", "DB_USER", "DB_PORT", "DB_PASSWORD",
}

func LoadConfig() (Config, error) {
	var config Config
	viper.AddConfigPath("./")
	viper.SetConfigFile(".env")
	viper.ReadInConfig()
	for _, env := range envs {
		if err := viper.BindEnv(env); err != nil {
			return config, err
		}
	}
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}
	if config.Port == "" {
		config.Port = "8000"
	}
	if config.UsersFile == "" {
		config.UsersFile = "users.json"
	}
	return config, nil
}
