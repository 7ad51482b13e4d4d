package build

// HashFormat says which output classes carry a content hash in their file name.
type HashFormat struct {
	Chunk   bool `yaml:"chunk"`   // lazy-loaded and named chunks
	Extract bool `yaml:"extract"` // extracted stylesheets
	File    bool `yaml:"file"`    // media copied by loaders
	Script  bool `yaml:"script"`  // concatenated global scripts
}

// HashFormatFor maps a hashing mode to the output classes it affects.
// Unknown and empty modes hash nothing.
func HashFormatFor(mode HashingMode) HashFormat {
	switch mode {
	case HashingMedia:
		return HashFormat{File: true}
	case HashingBundles:
		return HashFormat{Chunk: true, Extract: true, Script: true}
	case HashingAll:
		return HashFormat{Chunk: true, Extract: true, File: true, Script: true}
	default:
		return HashFormat{}
	}
}
