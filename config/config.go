package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// a type with service configuration parameters
type serviceConfig struct {
	// Port on which the service listens.
	Port int `json:"port" yaml:"port"`
	// Maximum number of allowed incoming connections.
	MaxConnections int `json:"max_connections" yaml:"max_connections"`
	// Directory holding the service's database files.
	DataDirectory string `json:"data_dir" yaml:"data_dir"`
}

// a type with document store configuration parameters
type storeConfig struct {
	// File stem for the store's database.
	Database string `json:"database" yaml:"database"`
	// Names of the per-category collections.
	SamplesCollection    string `json:"samples_collection" yaml:"samples_collection"`
	PhenotypesCollection string `json:"phenotypes_collection" yaml:"phenotypes_collection"`
	GenotypesCollection  string `json:"genotypes_collection" yaml:"genotypes_collection"`
	FilesCollection      string `json:"files_collection" yaml:"files_collection"`
	// Root URI that imported files are downloadable from (optional).
	FilesHost string `json:"files_host" yaml:"files_host"`
	// Number of days imported data stays embargoed.
	StageTime int `json:"stage_time" yaml:"stage_time"`
}

// a type describing a single geocoding provider
type geocoderConfig struct {
	// Base URI for the provider's geocoding endpoint, including any API key.
	URI string `json:"uri" yaml:"uri"`
}

// a type with geocoding configuration parameters
type geocodersConfig struct {
	// Name of the provider used for lookups ("" disables geocoding).
	Default string `json:"default" yaml:"default"`
	// The available providers, by name.
	Providers map[string]geocoderConfig `json:"providers" yaml:"providers"`
}

// a type with preview authorization parameters
type previewConfig struct {
	// Base64-encoded fernet key preview tokens are signed with (optional).
	Key string `json:"key" yaml:"key"`
}

// global config variables
var Service serviceConfig
var Store storeConfig
var Geocoders geocodersConfig
var Preview previewConfig

// This struct performs the unmarshalling from the YAML config file and then
// copies its fields to the globals above.
type configFile struct {
	Service   serviceConfig   `yaml:"service"`
	Store     storeConfig     `yaml:"store"`
	Geocoders geocodersConfig `yaml:"geocoders"`
	Preview   previewConfig   `yaml:"preview"`
}

// This helper reads configuration data, returning an error indicating
// success or failure. All environment variables of the form ${ENV_VAR} are
// expanded.
func readConfig(bytes []byte) error {
	// Before we do anything else, expand any provided environment variables.
	bytes = []byte(os.ExpandEnv(string(bytes)))

	var conf configFile
	conf.Service.Port = 8080
	conf.Service.MaxConnections = 100
	conf.Service.DataDirectory = "."
	conf.Store.StageTime = 30
	err := yaml.Unmarshal(bytes, &conf)
	if err != nil {
		log.Printf("Couldn't parse configuration data: %s\n", err)
		return err
	}

	// copy the config data into place
	Service = conf.Service
	Store = conf.Store
	Geocoders = conf.Geocoders
	Preview = conf.Preview

	return err
}

// This helper validates the given service parameters, returning an
// error indicating success or failure.
func validateServiceParameters(params serviceConfig) error {
	if params.Port < 0 || params.Port > 65535 {
		return fmt.Errorf("Invalid port: %d (must be 0-65535)", params.Port)
	}
	if params.MaxConnections <= 0 {
		return fmt.Errorf("Invalid max_connections: %d (must be positive)",
			params.MaxConnections)
	}
	return nil
}

// This helper validates the given config file, returning an error that
// indicates success or failure.
func validateConfig() error {
	err := validateServiceParameters(Service)
	if err != nil {
		return err
	}

	if Store.Database == "" {
		return fmt.Errorf("No store database was provided!")
	}
	for name, collection := range map[string]string{
		"samples_collection":    Store.SamplesCollection,
		"phenotypes_collection": Store.PhenotypesCollection,
		"genotypes_collection":  Store.GenotypesCollection,
		"files_collection":      Store.FilesCollection,
	} {
		if collection == "" {
			return fmt.Errorf("No %s was provided!", name)
		}
	}
	if Store.StageTime <= 0 {
		return fmt.Errorf("Invalid stage_time: %d (must be positive)", Store.StageTime)
	}

	// a default geocoder must be one of the configured providers
	if Geocoders.Default != "" {
		if _, found := Geocoders.Providers[Geocoders.Default]; !found {
			return fmt.Errorf("Unknown default geocoder: %s", Geocoders.Default)
		}
	}
	return nil
}

// Initializes the surveillance service configuration using the given YAML
// byte data.
func Init(yamlData []byte) error {

	// Read the configuration from our YAML file.
	err := readConfig(yamlData)
	if err != nil {
		return err
	}

	// Validate the configuration.
	err = validateConfig()
	return err
}
