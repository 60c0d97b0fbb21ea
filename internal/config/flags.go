package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-e deployment environment (test|production)
//	-l log level (debug|info|warn|error)
//	-d database DSN
//	-db-driver database driver (postgres|sqlite)
//	-blob-backend blob store backend (redis|file|memory)
//	-redis-address redis server address in format [host]:[port]
//	-blob-dir blob file directory
//	-c/-config json file path with configs
//	-token-issuer token issuer name
//	-token-ttl token lifetime (e.g., "24h")
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-internal-api-key internal credit grant key
//	-base-url server base URL for the client
//	-token session token for the client
//	-device-id client device identifier
//	-app application identifier the client syncs under
//	-state-file client state file path
//	-watch-interval client watch poll interval (e.g., "30s")
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var environment string
	var logLevel string
	var databaseDSN string
	var databaseDriver string
	var blobBackend string
	var redisAddress string
	var blobDir string
	var jsonConfigPath string
	var tokenIssuer string
	var tokenTTL time.Duration
	var requestTimeout time.Duration
	var internalAPIKey string
	var baseURL string
	var sessionToken string
	var deviceID string
	var clientApp string
	var stateFile string
	var watchInterval time.Duration

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&environment, "e", "", "Deployment environment (test|production)")
	flag.StringVar(&logLevel, "l", "", "Log level")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&databaseDriver, "db-driver", "", "Database driver (postgres|sqlite)")
	flag.StringVar(&blobBackend, "blob-backend", "", "Blob store backend (redis|file|memory)")
	flag.StringVar(&redisAddress, "redis-address", "", "Redis server address host:port")
	flag.StringVar(&blobDir, "blob-dir", "", "Blob file directory")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	flag.DurationVar(&tokenTTL, "token-ttl", 0, "Token lifetime (e.g., 24h)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.StringVar(&internalAPIKey, "internal-api-key", "", "Internal credit grant key")
	flag.StringVar(&baseURL, "base-url", "", "Server base URL for the client")
	flag.StringVar(&sessionToken, "token", "", "Session token for the client")
	flag.StringVar(&deviceID, "device-id", "", "Client device identifier")
	flag.StringVar(&clientApp, "app", "", "Application identifier the client syncs under")
	flag.StringVar(&stateFile, "state-file", "", "Client state file path")
	flag.DurationVar(&watchInterval, "watch-interval", 0, "Client watch poll interval (e.g., 30s)")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			Environment:    environment,
			LogLevel:       logLevel,
			InternalAPIKey: internalAPIKey,
		},
		Auth: Auth{
			TokenIssuer: tokenIssuer,
			TokenTTL:    tokenTTL,
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			DB: DB{
				Driver: databaseDriver,
				DSN:    databaseDSN,
			},
			Blob: Blob{
				Backend:      blobBackend,
				RedisAddress: redisAddress,
				Dir:          blobDir,
			},
		},
		Adapter: Adapter{
			BaseURL:      baseURL,
			SessionToken: sessionToken,
			DeviceID:     deviceID,
			App:          clientApp,
			StateFile:    stateFile,
		},
		Workers: Workers{
			WatchInterval: watchInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns the empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
