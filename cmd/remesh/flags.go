package main

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to YAML run file")
	flagOutput     = flag.String("o", "", "Output STL path (default <input>_remesh.stl)")
	flagASCII      = flag.Bool("ascii", false, "Write ASCII STL")
	flagDump       = flag.String("dump-config", "", "Write the effective configuration to this path and exit")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagMode       = flag.String("mode", "", "Pass: triangles, vertices, edge_length, max_error, planar or fast")
	flagCount      = flag.Int("n", 0, "Target triangle or vertex count")
	flagRatio      = flag.Float64("ratio", 0, "Target count as a fraction of the input")
	flagValue      = flag.Float64("value", 0, "Edge length, maximum error or planar angle in degrees")
	flagNormals    = flag.Bool("normals", false, "Use the normal preserving quadric")
	flagProject    = flag.Bool("project", false, "Project the result onto the input surface")
	flagFreeBounds = flag.Bool("free-boundaries", false, "Do not constrain open boundaries")
)

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagMode != "" {
		cfg.Run.Mode = *flagMode
	}
	if *flagCount > 0 {
		cfg.Run.Count = *flagCount
	}
	if *flagRatio > 0 {
		cfg.Run.Ratio = *flagRatio
		cfg.Run.Count = 0
	}
	if *flagValue > 0 {
		cfg.Run.Value = *flagValue
	}
	if *flagNormals {
		cfg.Run.NormalAware = true
	}
	if *flagProject {
		cfg.Constraints.ProjectToInput = true
	}
	if *flagFreeBounds {
		cfg.Constraints.Boundaries = false
	}
}
