package config

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port              int      `yaml:"port" validate:"gt=0,lte=65535"`
	Environment       string   `yaml:"environment" validate:"oneof=development production test"`
	LogLevel          string   `yaml:"logLevel"`
	LogFormat         string   `yaml:"logFormat" validate:"oneof=json text"`
	RequestTimeoutMS  int      `yaml:"requestTimeoutMS" validate:"gt=0"`
	ShutdownTimeoutMS int      `yaml:"shutdownTimeoutMS" validate:"gte=0"`
	CORSOrigins       []string `yaml:"corsOrigins"`
}

// GraphConfig locates the transit graph snapshot. Location may be a path, an
// http(s) URL or s3://bucket/key; a .sz suffix marks a snappy-compressed file.
type GraphConfig struct {
	Location  string `yaml:"location" validate:"required"`
	CachePath string `yaml:"cachePath"`
	S3Region  string `yaml:"s3Region"`
}

// GTFSConfig contains GTFS static feed configuration
type GTFSConfig struct {
	StaticPath string `yaml:"staticPath"`
	CachePath  string `yaml:"cachePath"`
	Timezone   string `yaml:"timezone" validate:"omitempty,timezone"`
}

// GTFSRTConfig contains GTFS-Realtime feed configuration
type GTFSRTConfig struct {
	TripUpdatesURL string `yaml:"tripUpdatesURL" validate:"omitempty,url"`
	APIKey         string `yaml:"apiKey"`
	ReadIntervalMS int    `yaml:"readIntervalMS" validate:"gte=0"`
	TimeoutMS      int    `yaml:"timeoutMS" validate:"gte=0"`
}

// RealtimeConfig tunes the cached departure source.
type RealtimeConfig struct {
	Enabled         bool `yaml:"enabled"`
	CacheTTLSeconds int  `yaml:"cacheTTLSeconds" validate:"gte=0"`
	CacheSize       int  `yaml:"cacheSize" validate:"gte=0"`
	CallTimeoutMS   int  `yaml:"callTimeoutMS" validate:"gte=0"`
	Retries         int  `yaml:"retries" validate:"gte=0,lte=3"`
	DeparturesLimit int  `yaml:"departuresLimit" validate:"gt=0"`
}

// RoutingConfig contains search limits and timing constants. Category
// durations are keyed by light_rail, heavy_rail, commuter_rail, bus, ferry.
type RoutingConfig struct {
	MaxTransfers             int                `yaml:"maxTransfers" validate:"gte=0"`
	MaxPops                  int                `yaml:"maxPops" validate:"gt=0"`
	LabelCap                 int                `yaml:"labelCap" validate:"gt=0"`
	TransferBufferSeconds    int                `yaml:"transferBufferSeconds" validate:"gte=0"`
	LineChangePenaltySeconds float64            `yaml:"lineChangePenaltySeconds" validate:"gte=0"`
	HeuristicSpeedMPS        float64            `yaml:"heuristicSpeedMPS" validate:"gt=0"`
	DirectWalkSeconds        float64            `yaml:"directWalkSeconds" validate:"gte=0"`
	WalkCapSeconds           float64            `yaml:"walkCapSeconds" validate:"gt=0"`
	RidingWalkCapSeconds     float64            `yaml:"ridingWalkCapSeconds" validate:"gt=0"`
	RidingWalkCapMeters      float64            `yaml:"ridingWalkCapMeters" validate:"gt=0"`
	StrategicWalkCapSeconds  float64            `yaml:"strategicWalkCapSeconds" validate:"gt=0"`
	DetourMeters             float64            `yaml:"detourMeters" validate:"gte=0"`
	CategoryDurations        map[string]float64 `yaml:"categoryDurations" validate:"dive,keys,oneof=light_rail heavy_rail commuter_rail bus ferry,endkeys,gt=0"`
	DefaultDurationSeconds   float64            `yaml:"defaultDurationSeconds" validate:"gt=0"`
	RequestTimeoutMS         int                `yaml:"requestTimeoutMS" validate:"gt=0"`
	LineFamilies             map[string]string  `yaml:"lineFamilies"`
}

// LinePairConfig is a buffer adjustment applied in both directions.
type LinePairConfig struct {
	From    string `yaml:"from" validate:"required"`
	To      string `yaml:"to" validate:"required"`
	Seconds int    `yaml:"seconds"`
}

// TransfersConfig contains the transfer buffer tables.
type TransfersConfig struct {
	DefaultBufferSeconds int              `yaml:"defaultBufferSeconds" validate:"gte=0"`
	StationBuffers       map[string]int   `yaml:"stationBuffers" validate:"dive,gte=0"`
	LinePairs            []LinePairConfig `yaml:"linePairs" validate:"dive"`
	FixedFraction        float64          `yaml:"fixedFraction" validate:"gte=0,lte=1"`
	BaselineSpeedKmh     float64          `yaml:"baselineSpeedKmh" validate:"gt=0"`
	MinBufferSeconds     int              `yaml:"minBufferSeconds" validate:"gte=0"`
}

// AlternativesConfig contains alternative-route generation settings.
type AlternativesConfig struct {
	OffsetsMinutes []int `yaml:"offsetsMinutes" validate:"dive,gt=0"`
	Concurrency    int   `yaml:"concurrency" validate:"gt=0"`
	DefaultCount   int   `yaml:"defaultCount" validate:"gte=0"`
}

// EventConfig raises congestion at a set of stations.
type EventConfig struct {
	Name       string   `yaml:"name" validate:"required"`
	Stations   []string `yaml:"stations" validate:"min=1"`
	Multiplier float64  `yaml:"multiplier" validate:"gte=1"`
}

// AdjustmentsConfig contains walking-time adjustment settings.
type AdjustmentsConfig struct {
	Timezone string             `yaml:"timezone" validate:"omitempty,timezone"`
	Hubs     map[string]float64 `yaml:"hubs" validate:"dive,gte=1"`
	Events   []EventConfig      `yaml:"events" validate:"dive"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server       ServerConfig       `yaml:"server"`
	Graph        GraphConfig        `yaml:"graph"`
	GTFS         GTFSConfig         `yaml:"gtfs"`
	GTFSRT       GTFSRTConfig       `yaml:"gtfsrt"`
	Realtime     RealtimeConfig     `yaml:"realtime"`
	Routing      RoutingConfig      `yaml:"routing"`
	Transfers    TransfersConfig    `yaml:"transfers"`
	Alternatives AlternativesConfig `yaml:"alternatives"`
	Adjustments  AdjustmentsConfig  `yaml:"adjustments"`
}
