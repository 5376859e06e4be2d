package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagIndexWidth  = flag.Int("index-width", 0, "Index buffer width in bits (8, 16, 32)")
	flagTexCoordDim = flag.Int("texcoord-dim", -1, "Texcoord components (0 disables)")
	flagNoNormals   = flag.Bool("no-normals", false, "Do not produce a normal buffer")
	flagOut         = flag.String("out", "", "Output directory for converted meshes")
	flagWorkers     = flag.Int("workers", 0, "Concurrent conversions")
	flagStrict      = flag.Bool("strict", false, "Fail on load warnings")
	flagNormalize   = flag.Bool("normalize", false, "Center and scale positions")
	flagFlipV       = flag.Bool("flip-v", false, "Flip the v texture coordinate")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagIndexWidth > 0 {
		cfg.Mesh.IndexWidth = *flagIndexWidth
	}
	if *flagTexCoordDim >= 0 {
		cfg.Mesh.TexCoordDim = *flagTexCoordDim
	}
	if *flagNoNormals {
		cfg.Mesh.Normals = false
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagWorkers > 0 {
		cfg.Output.Workers = *flagWorkers
	}
	if *flagStrict {
		cfg.Mesh.Strict = true
	}
	if *flagNormalize {
		cfg.Mesh.Normalize = true
	}
	if *flagFlipV {
		cfg.Mesh.FlipV = true
	}
}
