package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
	"github.com/zkramp/ramp-daemon/internal/core/application"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/infrastructure/processor/emailproof"
)

const (
	// ListeningPortKey is the port where the HTTP interface will listen on
	ListeningPortKey = "LISTENING_PORT"
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// OwnerAddressKey is the address allowed to call the admin endpoints
	OwnerAddressKey = "OWNER_ADDRESS"
	// EscrowAddressKey is the address holding the deposited tokens
	EscrowAddressKey = "ESCROW_ADDRESS"
	// JWTSecretKey is the shared secret used to verify the bearer tokens
	JWTSecretKey = "JWT_SECRET"
	// NatsURLKey is the url of the NATS server the events are published to.
	// Events are not published over NATS if empty.
	NatsURLKey = "NATS_URL"
	// NatsSubjectPrefixKey is the prefix of the NATS subjects of the events
	NatsSubjectPrefixKey = "NATS_SUBJECT_PREFIX"
	// EnableWebhooksKey enables the webhook subscriptions to the events
	EnableWebhooksKey = "ENABLE_WEBHOOKS"
	// EnableEventStreamKey enables the websocket stream of the events
	EnableEventStreamKey = "ENABLE_EVENT_STREAM"

	// IntentExpirationPeriodKey is the lifetime in seconds of an intent
	IntentExpirationPeriodKey = "INTENT_EXPIRATION_PERIOD"
	// CooldownPeriodKey is the time in seconds a taker must wait between two
	// settlements on the same rail
	CooldownPeriodKey = "COOLDOWN_PERIOD"
	// MinDepositAmountKey is the minimum amount of a new deposit, in token units
	MinDepositAmountKey = "MIN_DEPOSIT_AMOUNT"
	// MinIntentAmountKey is the minimum amount of an intent, in token units
	MinIntentAmountKey = "MIN_INTENT_AMOUNT"
	// MaxIntentAmountKey is the maximum amount of an intent. Zero means no limit
	MaxIntentAmountKey = "MAX_INTENT_AMOUNT"
	// MaxIntentsPerDepositKey caps the open intents of a deposit. Zero means no limit
	MaxIntentsPerDepositKey = "MAX_INTENTS_PER_DEPOSIT"
	// MaxDepositsPerAccountKey caps the active deposits of an account. Zero means no limit
	MaxDepositsPerAccountKey = "MAX_DEPOSITS_PER_ACCOUNT"
	// SustainabilityFeeKey is the protocol fee in basis points
	SustainabilityFeeKey = "SUSTAINABILITY_FEE"
	// FeeRecipientKey is the address collecting the protocol fees
	FeeRecipientKey = "FEE_RECIPIENT"

	// RailsKey is the comma separated list of the enabled payment rails
	RailsKey = "RAILS"

	// PrunerIntervalKey is the interval in seconds between two sweeps of the
	// expired intents. Zero disables the pruner
	PrunerIntervalKey = "PRUNER_INTERVAL"
	// PrunerRateKey is the max number of intents pruned per second
	PrunerRateKey = "PRUNER_RATE"

	// EnableProfilerKey enables profiler that can be used to investigate performance issues
	EnableProfilerKey = "ENABLE_PROFILER"
	// StatsIntervalKey defines interval for printing basic statistics
	StatsIntervalKey = "STATS_INTERVAL"

	// Per rail keys, formatted with the upper case rail name.
	railKeyHashesKey                 = "RAIL_%s_KEY_HASHES"
	railSenderKey                    = "RAIL_%s_SENDER"
	railTimestampBufferKey           = "RAIL_%s_TIMESTAMP_BUFFER"
	railSendVKKey                    = "RAIL_%s_SEND_VK"
	railSendBodyHashVKKey            = "RAIL_%s_SEND_BODY_HASH_VK"
	railRegistrationVKKey            = "RAIL_%s_REGISTRATION_VK"
	railRegistrationBodyHashVKKey    = "RAIL_%s_REGISTRATION_BODY_HASH_VK"
	defaultTimestampBuffer           = 30
	defaultIntentExpirationPeriod    = 24 * 60 * 60
	defaultMinDepositAmount          = 10_000_000
	defaultMinIntentAmount           = 1_000_000
	defaultMaxIntentAmount           = 1_000_000_000
	defaultMaxIntentsPerDeposit      = 100
	defaultSustainabilityFee         = 0
	defaultPrunerInterval            = 60
	defaultPrunerRate                = 10
	defaultNatsSubjectPrefix         = "ramp.events"
	defaultListeningPort             = 9945
	defaultStatsInterval             = 600
	defaultLogLevel                  = 4
	defaultCircuitsLocation          = "circuits"
	defaultVerifyingKeyFileExtension = ".vk"

	ConfigFileName   = "rampd"
	DbLocation       = "db"
	WebhookLocation  = "webhooks"
	ProfilerLocation = "stats"
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("ramp-daemon", false)
)

// RailSettings are the settings of an enabled rail. The verifying keys are
// paths to gnark serialized groth16 keys.
type RailSettings struct {
	Name                   string
	KeyHashes              []string
	SenderAddress          string
	TimestampBuffer        int64
	SendVK                 string
	SendBodyHashVK         string
	RegistrationVK         string
	RegistrationBodyHashVK string
}

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("RAMP")
	vip.AutomaticEnv()

	vip.SetDefault(ListeningPortKey, defaultListeningPort)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, defaultLogLevel)
	vip.SetDefault(DBTypeKey, application.DBBadger)
	vip.SetDefault(NatsSubjectPrefixKey, defaultNatsSubjectPrefix)
	vip.SetDefault(EnableWebhooksKey, false)
	vip.SetDefault(EnableEventStreamKey, true)
	vip.SetDefault(IntentExpirationPeriodKey, defaultIntentExpirationPeriod)
	vip.SetDefault(CooldownPeriodKey, 0)
	vip.SetDefault(MinDepositAmountKey, defaultMinDepositAmount)
	vip.SetDefault(MinIntentAmountKey, defaultMinIntentAmount)
	vip.SetDefault(MaxIntentAmountKey, defaultMaxIntentAmount)
	vip.SetDefault(MaxIntentsPerDepositKey, defaultMaxIntentsPerDeposit)
	vip.SetDefault(MaxDepositsPerAccountKey, 0)
	vip.SetDefault(SustainabilityFeeKey, defaultSustainabilityFee)
	vip.SetDefault(RailsKey, strings.Join(emailproof.SupportedRails(), ","))
	vip.SetDefault(PrunerIntervalKey, defaultPrunerInterval)
	vip.SetDefault(PrunerRateKey, defaultPrunerRate)
	vip.SetDefault(EnableProfilerKey, false)
	vip.SetDefault(StatsIntervalKey, defaultStatsInterval)

	if err := readConfigFile(); err != nil {
		return fmt.Errorf("error while reading config file: %s", err)
	}

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

func GetInt64(key string) int64 {
	return vip.GetInt64(key)
}

func GetUint64(key string) uint64 {
	return vip.GetUint64(key)
}

// GetStringSlice accepts both comma separated strings, as given through
// the environment, and lists from the config file.
func GetStringSlice(key string) []string {
	if s, ok := vip.Get(key).(string); ok {
		return splitList(s)
	}
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

// Set a value for the given key
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

// GetParams returns the escrow params.
func GetParams() domain.Params {
	return domain.Params{
		IntentExpirationPeriod: GetInt64(IntentExpirationPeriodKey),
		CooldownPeriod:         GetInt64(CooldownPeriodKey),
		MinDepositAmount:       GetUint64(MinDepositAmountKey),
		MinIntentAmount:        GetUint64(MinIntentAmountKey),
		MaxIntentAmount:        GetUint64(MaxIntentAmountKey),
		MaxIntentsPerDeposit:   GetInt(MaxIntentsPerDepositKey),
		MaxDepositsPerAccount:  GetInt(MaxDepositsPerAccountKey),
		SustainabilityFee:      vip.GetUint32(SustainabilityFeeKey),
		FeeRecipient:           GetString(FeeRecipientKey),
	}
}

// GetPrunerInterval returns the interval between two sweeps of the pruner.
func GetPrunerInterval() time.Duration {
	return time.Duration(GetInt64(PrunerIntervalKey)) * time.Second
}

// GetStatsInterval returns the interval between two prints of the stats.
func GetStatsInterval() time.Duration {
	return time.Duration(GetInt64(StatsIntervalKey)) * time.Second
}

// GetRails returns the settings of the enabled rails. Verifying keys
// default to <datadir>/circuits/<rail>_<circuit>.vk.
func GetRails() ([]RailSettings, error) {
	names := GetStringSlice(RailsKey)
	list := make([]RailSettings, 0, len(names))
	for _, name := range names {
		rail, err := emailproof.RailByName(name)
		if err != nil {
			return nil, err
		}
		buffer := int64(defaultTimestampBuffer)
		if key := railKey(railTimestampBufferKey, name); vip.IsSet(key) {
			buffer = GetInt64(key)
		}
		list = append(list, RailSettings{
			Name:            name,
			KeyHashes:       GetStringSlice(railKey(railKeyHashesKey, name)),
			SenderAddress:   GetString(railKey(railSenderKey, name)),
			TimestampBuffer: buffer,
			SendVK:          railVK(railSendVKKey, name, "send"),
			SendBodyHashVK: optionalRailVK(
				rail.Send.HasBodyHashProof(), railSendBodyHashVKKey, name,
				"send_body_hash",
			),
			RegistrationVK: railVK(railRegistrationVKKey, name, "registration"),
			RegistrationBodyHashVK: optionalRailVK(
				rail.Registration.HasBodyHashProof(), railRegistrationBodyHashVKKey,
				name, "registration_body_hash",
			),
		})
	}
	return list, nil
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if _, ok := application.SupportedDBType[GetString(DBTypeKey)]; !ok {
		return fmt.Errorf("unsupported db type %s", GetString(DBTypeKey))
	}

	if !domain.IsValidAddress(GetString(OwnerAddressKey)) {
		return fmt.Errorf("missing or invalid owner address")
	}
	if !domain.IsValidAddress(GetString(EscrowAddressKey)) {
		return fmt.Errorf("missing or invalid escrow address")
	}
	if len(GetString(JWTSecretKey)) < 16 {
		return fmt.Errorf("jwt secret must be at least 16 characters long")
	}

	if natsURL := GetString(NatsURLKey); natsURL != "" {
		if _, err := url.Parse(natsURL); err != nil {
			return fmt.Errorf("nats url is not a valid url: %s", err)
		}
	}

	if err := GetParams().Validate(); err != nil {
		return err
	}

	if GetInt64(PrunerIntervalKey) < 0 {
		return fmt.Errorf("pruner interval must not be negative")
	}
	if GetInt(PrunerRateKey) <= 0 {
		return fmt.Errorf("pruner rate must be positive")
	}

	if _, err := GetRails(); err != nil {
		return err
	}
	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
		return err
	}

	if GetBool(EnableWebhooksKey) {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, WebhookLocation)); err != nil {
			return err
		}
	}

	profilerEnabled := GetBool(EnableProfilerKey)
	if profilerEnabled {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, ProfilerLocation)); err != nil {
			return err
		}
	}
	return nil
}

// readConfigFile loads the optional rampd.{yaml,json,toml} file of the
// datadir. Environment variables take precedence over the file.
func readConfigFile() error {
	vip.SetConfigName(ConfigFileName)
	vip.AddConfigPath(GetDatadir())
	if err := vip.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

func railKey(format, rail string) string {
	return fmt.Sprintf(format, strings.ToUpper(rail))
}

func railVK(format, rail, circuit string) string {
	if path := GetString(railKey(format, rail)); path != "" {
		return path
	}
	return filepath.Join(
		GetDatadir(), defaultCircuitsLocation,
		fmt.Sprintf("%s_%s%s", rail, circuit, defaultVerifyingKeyFileExtension),
	)
}

func optionalRailVK(required bool, format, rail, circuit string) string {
	if !required {
		return ""
	}
	return railVK(format, rail, circuit)
}

func splitList(s string) []string {
	list := make([]string, 0)
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
