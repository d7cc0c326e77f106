package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory to store the internal state of
	// the daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// PartnerApiUrlKey is the base url of the exchange partner's sell API
	PartnerApiUrlKey = "PARTNER_API_URL"
	// PartnerApiKeyKey is the credential attached to every partner API request
	PartnerApiKeyKey = "PARTNER_API_KEY"
	// ServiceNameKey is the display name of the exchange partner, shown in
	// transaction notes and published events
	ServiceNameKey = "SERVICE_NAME"
	// PriorityFeeChainsKey lists the chains whose payments are broadcasted
	// with priority fee level to avoid expired orders due to slow confirmation
	PriorityFeeChainsKey = "PRIORITY_FEE_CHAINS"
	// RequoteWindowKey is the payment window synthesized when the partner
	// reports no valid quote expiry
	RequoteWindowKey = "REQUOTE_WINDOW"
	// WalletAddrKey is the address for connecting to the wallet sidecar
	WalletAddrKey = "WALLET_ADDR"
	// NoPersistenceKey is used to start the daemon with a volatile in-memory
	// storage, for development only
	NoPersistenceKey = "NO_PERSISTENCE"

	DbLocation = "db"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("offrampd", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("OFFRAMP")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(ServiceNameKey, "moonpay")
	vip.SetDefault(PriorityFeeChainsKey, []string{"btc", "eth", "matic"})
	vip.SetDefault(RequoteWindowKey, 3*time.Minute)
	vip.SetDefault(NoPersistenceKey, false)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetStringSlice(key string) []string {
	return vip.GetStringSlice(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if !vip.IsSet(PartnerApiUrlKey) {
		return fmt.Errorf("missing partner api url")
	}
	if !vip.IsSet(PartnerApiKeyKey) {
		return fmt.Errorf("missing partner api key")
	}
	if !vip.IsSet(WalletAddrKey) {
		return fmt.Errorf("missing wallet address")
	}

	if window := GetDuration(RequoteWindowKey); window <= 0 {
		return fmt.Errorf("%s must be a positive duration", RequoteWindowKey)
	}

	return nil
}

func initDatadir() error {
	if GetBool(NoPersistenceKey) {
		return nil
	}
	return makeDirectoryIfNotExists(filepath.Join(GetDatadir(), DbLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
