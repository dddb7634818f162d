package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// API layout.
const (
	// APIVersion is the path segment every request is rooted at.
	APIVersion = "v2"

	// KeysPath is the keyspace root, relative to APIVersion.
	KeysPath = "keys"

	// MachinesPath lists the cluster peers, relative to APIVersion.
	MachinesPath = "machines"
)

// HTTP settings.
const (
	// DefaultUserAgent is sent unless overridden by configuration.
	DefaultUserAgent = "etcdv2-client/1.0"

	// FormContentType is the content type of PUT and POST bodies.
	FormContentType = "application/x-www-form-urlencoded"

	// TracerName identifies spans started by the dispatcher.
	TracerName = "github.com/fivetwenty-io/etcdv2-client"
)

// Retry defaults, used only once retries are switched on.
const (
	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 30 * time.Second
)

// Query argument names and values used by the directory helpers.
const (
	// QueryValue carries the value of a write.
	QueryValue = "value"

	// QueryDir marks a directory operation.
	QueryDir = "dir"

	// QueryRecursive requests recursive listing or deletion.
	QueryRecursive = "recursive"

	// BoolTrue is the wire form of true.
	BoolTrue = "true"
)

// Event publishing.
const (
	// DefaultSubjectPrefix prefixes the NATS subject of mutation events.
	DefaultSubjectPrefix = "etcdv2.events"

	// DefaultPublishTimeout bounds a flush after publishing.
	DefaultPublishTimeout = 2 * time.Second
)

// CLI settings.
const (
	// ConfigDirName is the configuration directory below the user's home.
	ConfigDirName = ".etcdv2"

	// ConfigFileName is the configuration file name without extension.
	ConfigFileName = "config"

	// EnvPrefix prefixes environment variables read by the CLI.
	EnvPrefix = "ETCDV2"

	// DefaultContextName names the built-in endpoint used when no context is selected.
	DefaultContextName = "default"

	// JSONIndentSize is the indentation of JSON and YAML output.
	JSONIndentSize = 2
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatPlain = "plain"
)
