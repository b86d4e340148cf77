package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as the authorize call.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// LowRetryMax is the default maximum number of retries.
	LowRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// ExtendedRetryWaitMax is the maximum wait time between retries.
	ExtendedRetryWaitMax = 30 * time.Second
)

// Token handling.
const (
	// TokenExpiryBuffer is subtracted from a token's expiry when checking validity.
	TokenExpiryBuffer = 30 * time.Second
)

// Authorization flow defaults.
const (
	// AuthorizePath is the server path of the authorization endpoint.
	AuthorizePath = "oauth2/authorize"

	// DefaultClientID is the client identifier sent to the authorization endpoint.
	DefaultClientID = "sansara"

	// DefaultScope is the scope requested from the authorization endpoint.
	DefaultScope = "openid profile email"

	// ResponseTypeIDToken asks the server for an identity token.
	ResponseTypeIDToken = "id_token"

	// IDTokenParam is the redirect parameter that carries the identity token.
	IDTokenParam = "id_token"
)

// Search parameter names understood by the server.
const (
	// ParamCount is the page size parameter.
	ParamCount = "_count"

	// ParamPage is the page number parameter.
	ParamPage = "_page"

	// ParamSort is the sort keys parameter.
	ParamSort = "_sort"

	// ParamTotalMethod selects how the server computes the bundle total.
	ParamTotalMethod = "_totalMethod"

	// TotalMethodCount asks the server for an exact count.
	TotalMethodCount = "count"
)

// Resource payload keys, after field-name normalisation.
const (
	// FieldID is the identifying field every resource type carries.
	FieldID = "id"

	// FieldMeta is the opaque metadata block excluded from schema validation.
	FieldMeta = "meta"

	// FieldResourceType names the resource type inside a payload.
	FieldResourceType = "resource_type"

	// FieldEntry is the bundle entry list.
	FieldEntry = "entry"

	// FieldResource is the resource held by a bundle entry.
	FieldResource = "resource"

	// FieldTotal is the bundle total.
	FieldTotal = "total"

	// FieldPath is the attribute path of an Attribute resource.
	FieldPath = "path"

	// AttributeResourceType is the collection holding attribute definitions.
	AttributeResourceType = "Attribute"

	// AttributeEntityParam filters attribute definitions by resource type.
	AttributeEntityParam = "entity"
)

// Cache defaults.
const (
	// DefaultCacheSize is the default cache size limit.
	DefaultCacheSize = 1000

	// SchemaCacheKeyPrefix prefixes schema entries in shared cache backends.
	SchemaCacheKeyPrefix = "schema."

	// DefaultNATSBucket is the JetStream key-value bucket used for schemas.
	DefaultNATSBucket = "aidbox_schemas"
)

// Output formats.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// Command line.
const (
	// MinimumArgumentCount is the argument count of TYPE ID commands.
	MinimumArgumentCount = 2

	// DefaultHomeConfigDir is the configuration directory under the user's home.
	DefaultHomeConfigDir = ".aidbox"

	// DefaultConfigName is the configuration file name without extension.
	DefaultConfigName = "config"

	// EnvPrefix prefixes environment variables read by the CLI.
	EnvPrefix = "AIDBOX"

	// NotAvailable is printed for empty table cells.
	NotAvailable = "N/A"
)
