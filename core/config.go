package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *Config

type (
	Config struct {
		Env      string
		Debug    bool
		TestMode bool
		AppName  string
		// SecretKey signs local session tokens. Must be overridden outside DEV.
		SecretKey        string
		WorkDir          string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Firebase FirebaseConfig
	}

	ServerConfig struct {
		Host string
		Port string
		// SessionTTL bounds how long an issued session token stays valid.
		SessionTTL time.Duration
		// AccessDeniedRedirectDelay is how long the access-denied notice stays
		// on screen before redirecting back to the dashboard.
		AccessDeniedRedirectDelay time.Duration
	}

	FirebaseConfig struct {
		ProjectID       string
		CredentialsFile string
		// WebAPIKey is the Identity Toolkit browser key used for password
		// sign-in; the Admin SDK does not expose that call.
		WebAPIKey string
	}
)

func (c ServerConfig) Address() string { return c.Host + ":" + c.Port }

func init() {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appname", "Kazi")
	v.SetDefault("secretkey", "w3r)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("frontendbaseurl", "http://localhost:8000")
	v.SetDefault("defaultfromemail.name", "Kazi")
	v.SetDefault("defaultfromemail.address", "noreply@localhost")
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.sessionttl", 7*24*time.Hour)
	v.SetDefault("server.accessdeniedredirectdelay", 2000*time.Millisecond)
	v.SetDefault("firebase.projectid", "")
	v.SetDefault("firebase.credentialsfile", "")
	v.SetDefault("firebase.webapikey", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testmode", true)
	}
	v.SetDefault("env", env)
	v.SetEnvPrefix(env)

	wd := Getwd()
	v.SetDefault("workdir", wd)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	Conf = new(Config)
	if err := v.Unmarshal(Conf); err != nil {
		log.Fatalf("config.Unmarshal: %v", err)
	}
}
