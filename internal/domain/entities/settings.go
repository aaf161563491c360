package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	ModeSingle = "single"
	ModeMulti  = "multi"

	envPrefix = "MONOREPO"
)

// Settings is the immutable configuration built once at startup from defaults, the config file,
// MONOREPO_* environment variables and CLI flags (in increasing precedence). Every command
// receives it by pointer and never mutates it.
type Settings struct {
	Root        string            `mapstructure:"root"`
	Mode        string            `mapstructure:"mode"`
	Packages    []string          `mapstructure:"packages"`
	Manifests   []string          `mapstructure:"manifests"`
	Concurrency int               `mapstructure:"concurrency"`
	Commands    map[string]string `mapstructure:"commands"`
	Clean       CleanSettings     `mapstructure:"clean"`
	Link        LinkSettings      `mapstructure:"link"`
	Release     ReleaseSettings   `mapstructure:"release"`
	GitHub      GitHubSettings    `mapstructure:"github"`
}

// CleanSettings lists the per-project paths removed by the clean operation.
type CleanSettings struct {
	Paths []string `mapstructure:"paths"`
}

// LinkSettings configures where bootstrap links sibling projects.
type LinkSettings struct {
	Dir string `mapstructure:"dir"`
}

// ReleaseSettings holds the release flags and defaults.
type ReleaseSettings struct {
	Bump          string         `mapstructure:"bump"`
	Preid         string         `mapstructure:"preid"`
	DoClean       bool           `mapstructure:"do_clean"`
	DoBuild       bool           `mapstructure:"do_build"`
	DoTest        bool           `mapstructure:"do_test"`
	DoGit         bool           `mapstructure:"do_git"`
	DoPush        bool           `mapstructure:"do_push"`
	DoPublish     bool           `mapstructure:"do_publish"`
	DistTag       string         `mapstructure:"dist_tag"`
	Remote        string         `mapstructure:"remote"`
	Registry      string         `mapstructure:"registry"`
	RegistryURL   string         `mapstructure:"registry_url"`
	Message       string         `mapstructure:"message"`
	AllowBranches []string       `mapstructure:"allow_branches"`
	LockFile      string         `mapstructure:"lock_file"`
	ReportFile    string         `mapstructure:"report_file"`
	Author        AuthorSettings `mapstructure:"author"`
}

// AuthorSettings overrides the commit and tag author; empty values fall back to git config.
type AuthorSettings struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
}

// GitHubSettings configures the GitHub releases registry.
type GitHubSettings struct {
	Owner string `mapstructure:"owner"`
	Repo  string `mapstructure:"repo"`
	Token string `mapstructure:"token"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewSettings loads the settings. configPath may be empty, in which case only defaults,
// environment variables and overrides apply. Override keys use the dotted viper form
// (e.g. "release.dist_tag").
func NewSettings(configPath string, overrides map[string]any) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, NewConfigurationError(fmt.Sprintf("failed to read config file %q", configPath), err)
		}
	}
	for key, value := range overrides {
		v.Set(key, value)
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, NewConfigurationError("failed to parse settings", err)
	}

	root, err := filepath.Abs(settings.Root)
	if err != nil {
		return nil, NewConfigurationError("invalid root", err)
	}
	settings.Root = root
	// Pushing follows do_git unless it was set on its own.
	settings.Release.DoPush = settings.Release.DoGit
	if v.IsSet("release.do_push") {
		settings.Release.DoPush = v.GetBool("release.do_push")
	}
	settings.GitHub.Token = ResolveToken(settings.GitHub.Token)

	if validateErr := settings.validate(); validateErr != nil {
		return nil, validateErr
	}
	return &settings, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("root", ".")
	v.SetDefault("mode", ModeMulti)
	v.SetDefault("packages", []string{"packages"})
	v.SetDefault("manifests", []string{"package.json", "pyproject.toml", "project.hcl"})
	v.SetDefault("concurrency", 0)
	v.SetDefault("commands", map[string]string{
		string(OperationBootstrap): "npm install",
		string(OperationBuild):     "npm run build --if-present",
		string(OperationLint):      "npm run lint --if-present",
		string(OperationTest):      "npm test --if-present",
		string(OperationRun):       "npm run {script}",
	})
	v.SetDefault("clean.paths", []string{"dist", "coverage"})
	v.SetDefault("link.dir", "node_modules")

	v.SetDefault("release.bump", string(BumpPatch))
	v.SetDefault("release.preid", defaultPreid)
	v.SetDefault("release.do_clean", false)
	v.SetDefault("release.do_build", true)
	v.SetDefault("release.do_test", false)
	v.SetDefault("release.do_git", true)
	v.SetDefault("release.do_publish", true)
	v.SetDefault("release.dist_tag", "latest")
	v.SetDefault("release.remote", "origin")
	v.SetDefault("release.registry", "npm")
	v.SetDefault("release.registry_url", "")
	v.SetDefault("release.message", "chore(release): publish")
	v.SetDefault("release.allow_branches", []string{"main", "master"})
	v.SetDefault("release.lock_file", ".monorepo.lock")
	v.SetDefault("release.report_file", "")
	v.SetDefault("release.author.name", "")
	v.SetDefault("release.author.email", "")

	v.SetDefault("github.owner", "")
	v.SetDefault("github.repo", "")
	v.SetDefault("github.token", "${GITHUB_TOKEN}")
}

// EffectiveConcurrency returns the configured concurrency, defaulting to the number of CPUs.
func (s *Settings) EffectiveConcurrency() int {
	if s.Concurrency > 0 {
		return s.Concurrency
	}
	return runtime.NumCPU()
}

// Command returns the shell command configured for an operation, or "" when nothing runs.
func (s *Settings) Command(op Operation) string {
	return strings.TrimSpace(s.Commands[string(op)])
}

// ReleaseFlags converts the release settings into plan flags.
func (s *Settings) ReleaseFlags() ReleaseFlags {
	return ReleaseFlags{
		DoClean:   s.Release.DoClean,
		DoBuild:   s.Release.DoBuild,
		DoTest:    s.Release.DoTest,
		DoGit:     s.Release.DoGit,
		DoPush:    s.Release.DoPush,
		DoPublish: s.Release.DoPublish,
		DistTag:   s.Release.DistTag,
		Remote:    s.Release.Remote,
		Message:   s.Release.Message,
	}
}

// LockPath returns the absolute path of the release lock file.
func (s *Settings) LockPath() string {
	if filepath.IsAbs(s.Release.LockFile) {
		return s.Release.LockFile
	}
	return filepath.Join(s.Root, s.Release.LockFile)
}

func (s *Settings) validate() error {
	if s.Mode != ModeSingle && s.Mode != ModeMulti {
		return NewConfigurationError(fmt.Sprintf("mode must be %q or %q, got %q", ModeSingle, ModeMulti, s.Mode), nil)
	}
	if s.Mode == ModeMulti && len(s.Packages) == 0 {
		return NewConfigurationError("at least one packages directory must be configured", nil)
	}
	if len(s.Manifests) == 0 {
		return NewConfigurationError("at least one manifest file name must be configured", nil)
	}
	if s.Concurrency < 0 {
		return NewConfigurationError(fmt.Sprintf("concurrency must be >= 0, got %d", s.Concurrency), nil)
	}
	for key := range s.Commands {
		if _, err := ParseOperation(key); err != nil {
			return err
		}
	}
	if s.Release.DoPush && !s.Release.DoGit {
		return NewConfigurationError("release.do_push requires release.do_git", nil)
	}
	return nil
}

// FindConfigFile searches for a configuration file in standard locations under root.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile(root string) (string, error) {
	locations := []string{
		".",
		".config",
		"configs",
	}
	patterns := []string{
		".monorepo.yaml",
		".monorepo.yml",
		"monorepo.yaml",
		"monorepo.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(root, loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}
	return "", errors.New("config file not found in default locations")
}

// ResolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func ResolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Debugf("Environment variable %q is not set", varName)
		return ""
	})

	if resolved == "" {
		return resolved
	}
	if info, statErr := os.Stat(resolved); statErr == nil && !info.IsDir() {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		return strings.TrimSpace(string(data))
	}
	return resolved
}
