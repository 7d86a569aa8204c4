package cli

import (
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ytget/ydownloader/internal/config"
	"github.com/ytget/ydownloader/internal/ui"
)

// Options holds command-line values. Only flags present on the command line
// override configuration; see apply.
type Options struct {
	URL         string
	SavePath    string
	Quality     string
	AudioOnly   bool
	Retries     int
	Engine      string
	ConfigPath  string
	Language    string
	StrictExit  bool
	Verbose     bool
	ShowVersion bool

	set map[string]bool
}

// flag names; short aliases share the destination of their long form
const (
	flagURL        = "url"
	flagSavePath   = "save-path"
	flagQuality    = "quality"
	flagAudioOnly  = "audio-only"
	flagRetries    = "retries"
	flagEngine     = "engine"
	flagConfig     = "config"
	flagLanguage   = "lang"
	flagStrictExit = "strict-exit"
	flagVerbose    = "verbose"
	flagVersion    = "version"
)

var shortFlags = map[string]string{
	"u":  flagURL,
	"sp": flagSavePath,
	"q":  flagQuality,
	"a":  flagAudioOnly,
	"r":  flagRetries,
	"e":  flagEngine,
	"c":  flagConfig,
	"v":  flagVerbose,
}

func newFlagSet(o *Options, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.SetOutput(output)

	stringVar := func(p *string, name, short, value, usage string) {
		fs.StringVar(p, name, value, usage)
		if short != "" {
			fs.StringVar(p, short, value, "shorthand for --"+name)
		}
	}
	boolVar := func(p *bool, name, short string, usage string) {
		fs.BoolVar(p, name, false, usage)
		if short != "" {
			fs.BoolVar(p, short, false, "shorthand for --"+name)
		}
	}

	stringVar(&o.URL, flagURL, "u", "", "URL of the video (required)")
	stringVar(&o.SavePath, flagSavePath, "sp", config.DefaultSavePath, "directory to save the file in")
	stringVar(&o.Quality, flagQuality, "q", config.DefaultQuality, `video quality: "best" or a maximum height such as 720`)
	boolVar(&o.AudioOnly, flagAudioOnly, "a", "download audio only")
	fs.IntVar(&o.Retries, flagRetries, config.DefaultRetries, "maximum number of download attempts")
	fs.IntVar(&o.Retries, "r", config.DefaultRetries, "shorthand for --"+flagRetries)
	stringVar(&o.Engine, flagEngine, "e", config.DefaultEngine, "download engine: yt-dlp, ytget or kkdai")
	stringVar(&o.ConfigPath, flagConfig, "c", "", "path to a YAML config file")
	stringVar(&o.Language, flagLanguage, "", config.DefaultLanguage, languageUsage())
	boolVar(&o.StrictExit, flagStrictExit, "", "exit non-zero when the download fails")
	boolVar(&o.Verbose, flagVerbose, "v", "enable debug logging")
	boolVar(&o.ShowVersion, flagVersion, "", "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: %s --url URL [flags]\n\nFlags:\n", AppName)
		fs.PrintDefaults()
	}
	return fs
}

// languageUsage lists the message languages the console text is translated into
func languageUsage() string {
	available := ui.NewLocalization().GetAvailableLanguages()
	codes := make([]string, 0, len(available))
	for code := range available {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	choices := []string{ui.LanguageSystem}
	for _, code := range codes {
		choices = append(choices, fmt.Sprintf("%s (%s)", code, available[code]))
	}
	return "message language: " + strings.Join(choices, ", ")
}

// parseFlags parses args and records which flags were given explicitly
func parseFlags(args []string, output io.Writer) (*Options, *flag.FlagSet, error) {
	o := &Options{}
	fs := newFlagSet(o, output)
	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	if fs.NArg() > 0 {
		err := fmt.Errorf("unexpected arguments: %v", fs.Args())
		fmt.Fprintln(output, err)
		fs.Usage()
		return nil, fs, err
	}

	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if long, ok := shortFlags[name]; ok {
			name = long
		}
		o.set[name] = true
	})
	return o, fs, nil
}

// IsSet reports whether the long flag name was given on the command line
func (o *Options) IsSet(name string) bool {
	return o.set[name]
}

// apply overlays explicitly given flags on top of file and environment settings
func (o *Options) apply(s *config.Settings) {
	if o.IsSet(flagSavePath) {
		s.SavePath = o.SavePath
	}
	if o.IsSet(flagQuality) {
		s.Quality = o.Quality
	}
	if o.IsSet(flagAudioOnly) {
		s.AudioOnly = o.AudioOnly
	}
	if o.IsSet(flagRetries) {
		s.Retries = o.Retries
	}
	if o.IsSet(flagEngine) {
		s.Engine = o.Engine
	}
	if o.IsSet(flagLanguage) {
		s.Language = o.Language
	}
	if o.IsSet(flagStrictExit) {
		s.StrictExit = o.StrictExit
	}
	if o.IsSet(flagVerbose) && o.Verbose {
		s.LogLevel = "debug"
	}
}
